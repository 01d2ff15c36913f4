// Package pipeline wires the planner, collector, embedding generator and
// ranker into the end-to-end vendor matching flow.
package pipeline

import (
	"context"
	"fmt"

	"ai-eventplanner-be/internal/pkg/logger"
	"ai-eventplanner-be/pkg/embedding"
	"ai-eventplanner-be/pkg/embedding/batch"
	"ai-eventplanner-be/pkg/keypool"
	"ai-eventplanner-be/pkg/vendor"
)

// Planner produces the category queries for an event description.
type Planner interface {
	PlanCategories(ctx context.Context, description string) ([]vendor.CategoryQuery, error)
}

// Collector gathers candidate places for the planned queries.
type Collector interface {
	Collect(ctx context.Context, queries []vendor.CategoryQuery, location string) ([]vendor.Candidate, error)
}

// Ranker orders candidates per category by similarity to the query vector.
type Ranker interface {
	Rank(ctx context.Context, queryVector []float32, candidatesByCategory map[string][]string, limit int) (map[string][]string, error)
}

// QueryVectorCache is an optional cross-request cache for query
// embeddings. A nil cache disables caching entirely.
type QueryVectorCache interface {
	Get(ctx context.Context, text string) ([]float32, bool)
	Set(ctx context.Context, text string, vector []float32)
}

// Result carries the per-category rankings plus the collected candidate
// details so callers can render recommendations without refetching.
type Result struct {
	Queries    []vendor.CategoryQuery
	Ranked     map[string][]string
	Candidates map[string]vendor.Candidate
}

type Pipeline struct {
	planner    Planner
	collector  Collector
	ranker     Ranker
	provider   embedding.Provider
	store      batch.Store
	queryCache QueryVectorCache
	logger     logger.ILogger

	keys         *keypool.Pool
	dimension    int
	embedWorkers int
}

type Config struct {
	// Keys is the process-wide credential pool holding the default and
	// operator-provisioned keys. Its window state is shared by every
	// request, so per-credential RPM holds across concurrent matches.
	Keys         *keypool.Pool
	Dimension    int
	EmbedWorkers int
}

func New(planner Planner, collector Collector, ranker Ranker, provider embedding.Provider, store batch.Store, queryCache QueryVectorCache, log logger.ILogger, cfg Config) *Pipeline {
	return &Pipeline{
		planner:      planner,
		collector:    collector,
		ranker:       ranker,
		provider:     provider,
		store:        store,
		queryCache:   queryCache,
		logger:       log,
		keys:         cfg.Keys,
		dimension:    cfg.Dimension,
		embedWorkers: cfg.EmbedWorkers,
	}
}

// Match runs the full flow: plan categories, collect candidates, embed
// them, embed the description, rank per category. Extra API keys widen
// the rate budget for this request only, while per-credential window
// state remains shared across all requests.
//
// Planner, geocode and key-exhaustion failures abort the match. Failures
// scoped to one category or one candidate only shrink the result, so a
// successful return always carries a ranking for every planned category.
func (p *Pipeline) Match(ctx context.Context, description, location string, extraKeys []string, limit int) (*Result, error) {
	queries, err := p.planner.PlanCategories(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("failed to plan categories: %w", err)
	}

	candidates, err := p.collector.Collect(ctx, queries, location)
	if err != nil {
		return nil, fmt.Errorf("failed to collect candidates: %w", err)
	}

	// Caller keys widen this request only; the underlying window state
	// stays shared with every other request on the process-wide pool.
	pool := p.keys.Derive(extraKeys)
	generator := batch.NewGenerator(p.provider, pool, p.store, p.logger, p.dimension, p.embedWorkers)

	vectors, err := generator.EmbedCandidates(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to embed candidates: %w", err)
	}

	queryVector, err := p.embedQuery(ctx, generator, description)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// Allow-lists only contain candidates that actually have a vector;
	// every planned category keeps an entry even when it collected nothing.
	byCategory := make(map[string][]string, len(queries))
	for _, q := range queries {
		byCategory[q.Category] = []string{}
	}
	for _, c := range candidates {
		if _, ok := vectors[c.PlaceID]; ok {
			byCategory[c.Category] = append(byCategory[c.Category], c.PlaceID)
		}
	}

	ranked, err := p.ranker.Rank(ctx, queryVector, byCategory, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank candidates: %w", err)
	}

	details := make(map[string]vendor.Candidate, len(candidates))
	for _, c := range candidates {
		if _, ok := details[c.PlaceID]; !ok {
			details[c.PlaceID] = c
		}
	}

	p.logger.Info("pipeline", "match finished", map[string]interface{}{
		"categories": len(queries),
		"candidates": len(candidates),
		"embedded":   len(vectors),
	})
	return &Result{
		Queries:    queries,
		Ranked:     ranked,
		Candidates: details,
	}, nil
}

func (p *Pipeline) embedQuery(ctx context.Context, generator *batch.Generator, text string) ([]float32, error) {
	if p.queryCache != nil {
		if vec, ok := p.queryCache.Get(ctx, text); ok {
			return vec, nil
		}
	}

	vec, err := generator.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	if p.queryCache != nil {
		p.queryCache.Set(ctx, text, vec)
	}
	return vec, nil
}
