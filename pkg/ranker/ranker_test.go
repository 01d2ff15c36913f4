package ranker

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-eventplanner-be/internal/pkg/logger"
)

// memoryStore ranks by cosine distance over an in-memory vector table,
// mirroring how the real store orders results.
type memoryStore struct {
	vectors map[string][]float32
	err     error
}

func (s *memoryStore) SearchNearest(ctx context.Context, vector []float32, limit int, allowIDs []string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	type scored struct {
		id       string
		distance float64
	}
	var results []scored
	for _, id := range allowIDs {
		v, ok := s.vectors[id]
		if !ok {
			continue
		}
		results = append(results, scored{id: id, distance: cosineDistance(vector, v)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].distance < results[j].distance })
	if len(results) > limit {
		results = results[:limit]
	}
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.id
	}
	return ids, nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func TestRankOrdersByAscendingDistance(t *testing.T) {
	store := &memoryStore{vectors: map[string][]float32{
		"far":     {0, 1},
		"near":    {1, 0.1},
		"nearest": {1, 0},
	}}
	r := NewRanker(store, logger.NewNopLogger())

	ranked, err := r.Rank(context.Background(), []float32{1, 0}, map[string][]string{
		"venue": {"far", "near", "nearest"},
	}, 3)

	assert.NoError(t, err)
	assert.Equal(t, []string{"nearest", "near", "far"}, ranked["venue"])
}

func TestRankRespectsLimitAndAllowList(t *testing.T) {
	store := &memoryStore{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0.9, 0.1},
		"c": {0, 1},
		"d": {1, 0.01},
	}}
	r := NewRanker(store, logger.NewNopLogger())

	ranked, err := r.Rank(context.Background(), []float32{1, 0}, map[string][]string{
		"venue": {"a", "b", "c"}, // d excluded by allow-list
	}, 2)

	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ranked["venue"])
}

func TestRankEmptyCategoryYieldsEmptyList(t *testing.T) {
	r := NewRanker(&memoryStore{}, logger.NewNopLogger())

	ranked, err := r.Rank(context.Background(), []float32{1, 0}, map[string][]string{
		"venue": {},
	}, 2)

	assert.NoError(t, err)
	assert.NotNil(t, ranked["venue"])
	assert.Empty(t, ranked["venue"])
}

func TestRankStoreErrorIsolatedPerCategory(t *testing.T) {
	good := &memoryStore{vectors: map[string][]float32{"a": {1, 0}}}
	bad := &memoryStore{err: errors.New("db down")}

	// switchingStore fails for one category's ids only.
	r := NewRanker(storeFunc(func(ctx context.Context, vector []float32, limit int, allowIDs []string) ([]string, error) {
		if allowIDs[0] == "broken" {
			return bad.SearchNearest(ctx, vector, limit, allowIDs)
		}
		return good.SearchNearest(ctx, vector, limit, allowIDs)
	}), logger.NewNopLogger())

	ranked, err := r.Rank(context.Background(), []float32{1, 0}, map[string][]string{
		"venue":    {"a"},
		"catering": {"broken"},
	}, 2)

	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, ranked["venue"])
	assert.Empty(t, ranked["catering"])
}

type storeFunc func(ctx context.Context, vector []float32, limit int, allowIDs []string) ([]string, error)

func (f storeFunc) SearchNearest(ctx context.Context, vector []float32, limit int, allowIDs []string) ([]string, error) {
	return f(ctx, vector, limit, allowIDs)
}
