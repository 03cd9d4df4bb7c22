package registry

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/dmallory/curio/internal/cachemanager"
	"github.com/dmallory/curio/internal/log"
)

// DetailFetcher resolves the enrichment record for one artifact.
type DetailFetcher func(ctx context.Context, id string, artifactType ArtifactType) (ArtifactDetails, error)

// DetailCache memoizes ArtifactDetails by artifact id for the life of
// the session. Resolved entries never expire and are never evicted;
// in-flight fetches are coalesced so that concurrent requesters for
// the same id share one underlying fetch. A failed fetch leaves no
// entry behind, so a later call may retry.
//
// The cache is owned by the browse controller and injected into
// whatever needs it; it is never ambient state.
type DetailCache struct {
	resolved cachemanager.CacheManager[string, ArtifactDetails]
	group    singleflight.Group
}

// NewDetailCache creates an empty detail cache.
func NewDetailCache() *DetailCache {
	return &DetailCache{
		resolved: cachemanager.NewInMemoryCacheManager[string, ArtifactDetails]("artifact-details"),
	}
}

// Get returns the resolved record for id, if present.
func (c *DetailCache) Get(id string) (ArtifactDetails, bool) {
	return c.resolved.Get(context.Background(), id)
}

// GetOrFetch returns the cached record for id, joins an in-flight
// fetch for it, or starts one via fetch. At most one fetch per id is
// ever in flight; every concurrent caller observes the same outcome.
func (c *DetailCache) GetOrFetch(ctx context.Context, id string, artifactType ArtifactType, fetch DetailFetcher) (ArtifactDetails, error) {
	if details, ok := c.resolved.Get(ctx, id); ok {
		return details, nil
	}

	value, err, shared := c.group.Do(id, func() (any, error) {
		// A previous flight may have resolved while this caller was
		// queued behind the singleflight lock.
		if details, ok := c.resolved.Get(ctx, id); ok {
			return details, nil
		}

		details, err := fetch(ctx, id, artifactType)
		if err != nil {
			// Nothing stored: the next GetOrFetch retries.
			return ArtifactDetails{}, err
		}
		c.resolved.Set(ctx, id, details, cachemanager.NoExpiration)
		return details, nil
	})
	if err != nil {
		return ArtifactDetails{}, err
	}
	if shared {
		log.Debug(log.CatCache, "coalesced detail fetch", "id", id)
	}
	return value.(ArtifactDetails), nil
}

// Flush drops every resolved entry. Used when the catalog itself is
// known to have changed (delete, update, reset).
func (c *DetailCache) Flush() {
	_ = c.resolved.Flush(context.Background())
}
