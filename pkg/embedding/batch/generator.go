// Package batch turns candidate places into stored embedding vectors,
// reusing cached vectors and generating only the misses.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ai-eventplanner-be/internal/pkg/logger"
	"ai-eventplanner-be/pkg/embedding"
	"ai-eventplanner-be/pkg/keypool"
	"ai-eventplanner-be/pkg/vendor"
)

// maxAttempts bounds generation retries per candidate. Each retry goes
// back through the key pool, so a quota-limited key is rotated out
// before the next attempt.
const maxAttempts = 3

// Store is the persistence surface the generator needs: a bulk lookup of
// existing vectors and a bulk writeback of new ones. UpsertMany reports
// per-record failures as a count instead of an error so one bad row never
// discards the rest of the batch.
type Store interface {
	GetMany(ctx context.Context, placeIDs []string) (map[string][]float32, error)
	UpsertMany(ctx context.Context, records []vendor.Record) (stored int, failed int)
}

type Generator struct {
	provider  embedding.Provider
	pool      *keypool.Pool
	store     Store
	logger    logger.ILogger
	dimension int
	workers   int
}

func NewGenerator(provider embedding.Provider, pool *keypool.Pool, store Store, log logger.ILogger, dimension, workers int) *Generator {
	if workers <= 0 {
		workers = 5
	}
	return &Generator{
		provider:  provider,
		pool:      pool,
		store:     store,
		logger:    log,
		dimension: dimension,
		workers:   workers,
	}
}

// EmbedCandidates returns a vector for every candidate that has one, cached
// or freshly generated. Candidates whose document is empty are excluded
// entirely; candidates that fail generation are logged and omitted. The
// returned map is keyed by place id.
func (g *Generator) EmbedCandidates(ctx context.Context, candidates []vendor.Candidate) (map[string][]float32, error) {
	documents := make(map[string]string)
	var ids []string
	for _, c := range candidates {
		if _, ok := documents[c.PlaceID]; ok {
			continue
		}
		doc := c.Document()
		if doc == "" {
			g.logger.Warn("batch", "skipping candidate with empty document", map[string]interface{}{
				"place_id": c.PlaceID,
			})
			continue
		}
		documents[c.PlaceID] = doc
		ids = append(ids, c.PlaceID)
	}
	if len(ids) == 0 {
		return map[string][]float32{}, nil
	}

	cached, err := g.store.GetMany(ctx, ids)
	if err != nil {
		// A cache read failure degrades to a full miss; generation still runs.
		g.logger.Warn("batch", "embedding lookup failed, regenerating all", map[string]interface{}{
			"error": err.Error(),
			"count": len(ids),
		})
		cached = map[string][]float32{}
	}

	var misses []string
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			misses = append(misses, id)
		}
	}

	g.logger.Info("batch", "embedding batch partitioned", map[string]interface{}{
		"total":  len(ids),
		"cached": len(cached),
		"misses": len(misses),
	})

	result := make(map[string][]float32, len(ids))
	for id, vec := range cached {
		result[id] = vec
	}
	if len(misses) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	var records []vendor.Record
	sem := make(chan struct{}, g.workers)
	var wg sync.WaitGroup

	for _, id := range misses {
		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			vec, err := g.generateOne(ctx, documents[placeID])
			if err != nil {
				g.logger.Warn("batch", "embedding generation failed", map[string]interface{}{
					"place_id": placeID,
					"error":    err.Error(),
				})
				return
			}

			mu.Lock()
			records = append(records, vendor.Record{PlaceID: placeID, Vector: vec})
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	if len(records) > 0 {
		stored, failed := g.store.UpsertMany(ctx, records)
		if failed > 0 {
			g.logger.Warn("batch", "some embeddings failed to persist", map[string]interface{}{
				"stored": stored,
				"failed": failed,
			})
		}
		// Freshly generated vectors serve this request even if persistence
		// partially failed.
		for _, r := range records {
			result[r.PlaceID] = r.Vector
		}
	}

	return result, nil
}

// EmbedQuery generates a normalized vector for ad-hoc query text, using
// the same retry and key-rotation budget as candidate generation. Query
// vectors are request-scoped and never stored here.
func (g *Generator) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return g.generateOne(ctx, text)
}

// generateOne runs the acquire-generate-classify loop for a single
// document. Quota failures mark the credential exhausted and retry with
// another; malformed responses are not retried.
func (g *Generator) generateOne(ctx context.Context, document string) ([]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		apiKey, err := g.pool.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire api key: %w", err)
		}

		vec, err := g.provider.Generate(ctx, apiKey, document, g.dimension)
		if err == nil {
			return embedding.Normalize(vec), nil
		}
		lastErr = err

		if errors.Is(err, embedding.ErrQuotaExhausted) {
			g.pool.ReportLimited(apiKey)
			continue
		}
		if errors.Is(err, embedding.ErrMalformedResponse) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", maxAttempts, lastErr)
}
