package registry

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dmallory/curio/internal/log"
)

// Enricher resolves the display details for one artifact by fanning
// out the rating and cost sub-requests concurrently and joining on
// both. Enrichment never fails: any sub-request error, undecodable
// body, or missing field degrades the whole record to NotAvailable
// fields. Partial records are deliberately not modeled: the two
// sub-fetches are one atomic enrichment step from the caller's side.
type Enricher struct {
	client *Client

	// sem bounds concurrent enrichments across artifacts when
	// non-nil. The two sub-requests of a single enrichment always run
	// concurrently regardless of the bound.
	sem chan struct{}
}

// NewEnricher creates an Enricher over the given client.
// maxConcurrent bounds simultaneous enrichments; 0 disables the bound.
func NewEnricher(client *Client, maxConcurrent int) *Enricher {
	e := &Enricher{client: client}
	if maxConcurrent > 0 {
		e.sem = make(chan struct{}, maxConcurrent)
	}
	return e
}

// Details fetches and merges the rating and cost for one artifact.
// The error result is always nil; it exists so Details can serve as a
// DetailFetcher. Degraded records carry NotAvailable fields instead.
func (e *Enricher) Details(ctx context.Context, id string, artifactType ArtifactType) (ArtifactDetails, error) {
	if e.sem != nil {
		select {
		case e.sem <- struct{}{}:
			defer func() { <-e.sem }()
		case <-ctx.Done():
			return ArtifactDetails{Rating: NotAvailable, Cost: NotAvailable}, nil
		}
	}

	var (
		rate  RateResult
		costs map[string]CostEntry
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		rate, err = e.client.Rate(groupCtx, id)
		return err
	})
	group.Go(func() error {
		var err error
		costs, err = e.client.Cost(groupCtx, artifactType, id)
		return err
	})

	if err := group.Wait(); err != nil {
		log.Debug(log.CatCache, "enrichment degraded", "id", id, "error", err)
		return ArtifactDetails{Rating: NotAvailable, Cost: NotAvailable}, nil
	}

	details := ArtifactDetails{Rating: NotAvailable, Cost: NotAvailable}
	if rate.NetScore != nil {
		details.Rating = FormatRating(*rate.NetScore)
	}
	if entry, ok := firstCostEntry(costs, id); ok {
		details.Cost = FormatCost(entry.TotalCost)
	}
	return details, nil
}

// firstCostEntry picks the cost entry for id when present, otherwise
// any entry of the payload.
func firstCostEntry(costs map[string]CostEntry, id string) (CostEntry, bool) {
	if entry, ok := costs[id]; ok {
		return entry, true
	}
	for _, entry := range costs {
		return entry, true
	}
	return CostEntry{}, false
}
