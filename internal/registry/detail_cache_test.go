package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDetailCache_GetMissesWhenEmpty(t *testing.T) {
	cache := NewDetailCache()

	_, ok := cache.Get("m1")
	assert.False(t, ok)
}

func TestDetailCache_GetOrFetch_StoresAndReturns(t *testing.T) {
	cache := NewDetailCache()
	want := ArtifactDetails{Rating: "0.82", Cost: "120 MB"}

	got, err := cache.GetOrFetch(context.Background(), "m1", TypeModel,
		func(context.Context, string, ArtifactType) (ArtifactDetails, error) {
			return want, nil
		})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	cached, ok := cache.Get("m1")
	require.True(t, ok)
	assert.Equal(t, want, cached)
}

func TestDetailCache_GetOrFetch_SecondCallSkipsFetch(t *testing.T) {
	cache := NewDetailCache()
	var fetches atomic.Int32

	fetch := func(context.Context, string, ArtifactType) (ArtifactDetails, error) {
		fetches.Add(1)
		return ArtifactDetails{Rating: "0.5", Cost: "10 MB"}, nil
	}

	for i := 0; i < 3; i++ {
		_, err := cache.GetOrFetch(context.Background(), "m1", TypeModel, fetch)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), fetches.Load())
}

func TestDetailCache_GetOrFetch_FailureLeavesNoEntry(t *testing.T) {
	cache := NewDetailCache()

	_, err := cache.GetOrFetch(context.Background(), "m1", TypeModel,
		func(context.Context, string, ArtifactType) (ArtifactDetails, error) {
			return ArtifactDetails{}, errors.New("boom")
		})
	require.Error(t, err)

	_, ok := cache.Get("m1")
	assert.False(t, ok)

	// The next call retries and can succeed
	got, err := cache.GetOrFetch(context.Background(), "m1", TypeModel,
		func(context.Context, string, ArtifactType) (ArtifactDetails, error) {
			return ArtifactDetails{Rating: NotAvailable, Cost: "3 MB"}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, "3 MB", got.Cost)
}

func TestDetailCache_Flush(t *testing.T) {
	cache := NewDetailCache()

	_, err := cache.GetOrFetch(context.Background(), "m1", TypeModel,
		func(context.Context, string, ArtifactType) (ArtifactDetails, error) {
			return ArtifactDetails{Rating: "1", Cost: "1 MB"}, nil
		})
	require.NoError(t, err)

	cache.Flush()

	_, ok := cache.Get("m1")
	assert.False(t, ok)
}

// Concurrent callers for the same id share one fetch, and every caller
// observes the same record.
func TestDetailCache_GetOrFetch_CoalescesConcurrentCallers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		callers := rapid.IntRange(2, 16).Draw(t, "callers")
		ids := rapid.IntRange(1, 3).Draw(t, "ids")

		cache := NewDetailCache()
		var fetches atomic.Int32
		gate := make(chan struct{})

		fetch := func(_ context.Context, id string, _ ArtifactType) (ArtifactDetails, error) {
			fetches.Add(1)
			<-gate // Hold every first flight open until all callers queued
			return ArtifactDetails{Rating: "0.9", Cost: id + " MB"}, nil
		}

		var wg sync.WaitGroup
		results := make([]ArtifactDetails, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("m%d", i%ids)
				results[i], errs[i] = cache.GetOrFetch(context.Background(), id, TypeModel, fetch)
			}(i)
		}

		close(gate)
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}

		// At most one fetch per distinct id ever ran
		assert.LessOrEqual(t, int(fetches.Load()), ids)
		for i, details := range results {
			assert.Equal(t, fmt.Sprintf("m%d MB", i%ids), details.Cost)
		}
	})
}
