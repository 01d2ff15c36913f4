// Package collector gathers candidate places for a set of category
// queries inside a geographic area.
package collector

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"ai-eventplanner-be/internal/pkg/logger"
	"ai-eventplanner-be/pkg/geocode"
	"ai-eventplanner-be/pkg/places"
	"ai-eventplanner-be/pkg/vendor"
)

type Collector struct {
	resolver      geocode.Resolver
	client        places.Client
	logger        logger.ILogger
	searchWorkers int
	detailWorkers int
}

func NewCollector(resolver geocode.Resolver, client places.Client, log logger.ILogger, searchWorkers, detailWorkers int) *Collector {
	if searchWorkers <= 0 {
		searchWorkers = 3
	}
	if detailWorkers <= 0 {
		detailWorkers = 5
	}
	return &Collector{
		resolver:      resolver,
		client:        client,
		logger:        log,
		searchWorkers: searchWorkers,
		detailWorkers: detailWorkers,
	}
}

// hit is one search result awaiting its detail fetch, still tagged with
// the category and query that produced it.
type hit struct {
	placeID  string
	category string
	query    string
}

// Collect geocodes the location once, runs every category query against
// the search provider, and fetches details for each result. A failed
// geocode fails the whole collection; a failed category search or detail
// fetch only shrinks the result. A place found by several categories
// yields one candidate per category.
func (c *Collector) Collect(ctx context.Context, queries []vendor.CategoryQuery, location string) ([]vendor.Candidate, error) {
	rect, err := c.resolver.Resolve(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve search area: %w", err)
	}

	var mu sync.Mutex
	var hits []hit

	searchGroup, searchCtx := errgroup.WithContext(ctx)
	searchGroup.SetLimit(c.searchWorkers)
	for _, q := range queries {
		query := q
		searchGroup.Go(func() error {
			ids, err := c.client.SearchText(searchCtx, query.Query, rect)
			if err != nil {
				c.logger.Warn("collector", "category search failed", map[string]interface{}{
					"category": query.Category,
					"query":    query.Query,
					"error":    err.Error(),
				})
				return nil
			}
			mu.Lock()
			for _, id := range ids {
				hits = append(hits, hit{placeID: id, category: query.Category, query: query.Query})
			}
			mu.Unlock()
			return nil
		})
	}
	searchGroup.Wait()

	// One detail fetch per unique place; the result is shared between every
	// category that surfaced it.
	uniqueIDs := make(map[string]bool)
	var order []string
	for _, h := range hits {
		if !uniqueIDs[h.placeID] {
			uniqueIDs[h.placeID] = true
			order = append(order, h.placeID)
		}
	}

	details := make(map[string]*places.Detail)
	detailGroup, detailCtx := errgroup.WithContext(ctx)
	detailGroup.SetLimit(c.detailWorkers)
	for _, id := range order {
		placeID := id
		detailGroup.Go(func() error {
			detail, err := c.client.GetDetails(detailCtx, placeID)
			if err != nil {
				c.logger.Warn("collector", "detail fetch failed, dropping candidate", map[string]interface{}{
					"place_id": placeID,
					"error":    err.Error(),
				})
				return nil
			}
			mu.Lock()
			details[placeID] = detail
			mu.Unlock()
			return nil
		})
	}
	detailGroup.Wait()

	candidates := make([]vendor.Candidate, 0, len(hits))
	seen := make(map[string]bool) // placeID+category
	for _, h := range hits {
		detail, ok := details[h.placeID]
		if !ok {
			continue
		}
		dedupKey := h.placeID + "\x00" + h.category
		if seen[dedupKey] {
			continue
		}
		seen[dedupKey] = true
		candidates = append(candidates, vendor.Candidate{
			PlaceID:     detail.PlaceID,
			Category:    h.category,
			Query:       h.query,
			Name:        detail.Name,
			PrimaryType: detail.PrimaryType,
			Types:       detail.Types,
			Address:     detail.Address,
			Phone:       detail.Phone,
			Website:     detail.Website,
			Rating:      detail.Rating,
			RatingCount: detail.RatingCount,
			Reviews:     detail.Reviews,
		})
	}

	c.logger.Info("collector", "candidate collection finished", map[string]interface{}{
		"categories": len(queries),
		"places":     len(order),
		"candidates": len(candidates),
	})
	return candidates, nil
}
