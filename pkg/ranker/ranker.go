// Package ranker orders candidate places by embedding similarity to the
// query vector, one ranking per category.
package ranker

import (
	"context"

	"ai-eventplanner-be/internal/pkg/logger"
)

// Store answers nearest-neighbor queries restricted to an id allow-list.
// Results come back closest-first; ties resolve in store order.
type Store interface {
	SearchNearest(ctx context.Context, vector []float32, limit int, allowIDs []string) ([]string, error)
}

type Ranker struct {
	store  Store
	logger logger.ILogger
}

func NewRanker(store Store, log logger.ILogger) *Ranker {
	return &Ranker{
		store:  store,
		logger: log,
	}
}

// Rank runs one allow-listed nearest-neighbor query per category. Every
// input category appears in the output: empty candidate lists and store
// failures both map to an empty ranking, so one bad category never sinks
// the rest.
func (r *Ranker) Rank(ctx context.Context, queryVector []float32, candidatesByCategory map[string][]string, limit int) (map[string][]string, error) {
	ranked := make(map[string][]string, len(candidatesByCategory))
	for category, allowIDs := range candidatesByCategory {
		if len(allowIDs) == 0 {
			ranked[category] = []string{}
			continue
		}

		ids, err := r.store.SearchNearest(ctx, queryVector, limit, allowIDs)
		if err != nil {
			r.logger.Warn("ranker", "similarity search failed for category", map[string]interface{}{
				"category": category,
				"error":    err.Error(),
			})
			ranked[category] = []string{}
			continue
		}
		ranked[category] = ids
	}
	return ranked, nil
}
