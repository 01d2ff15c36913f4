package contract

import (
	"context"

	"ai-eventplanner-be/internal/entity"
	"ai-eventplanner-be/internal/repository/specification"
	"ai-eventplanner-be/pkg/vendor"
)

type PlaceEmbeddingRepository interface {
	// GetMany returns the stored vectors for the requested ids; missing ids
	// are simply absent from the map.
	GetMany(ctx context.Context, placeIDs []string) (map[string][]float32, error)

	// UpsertMany writes vectors by place id with per-record isolation: one
	// failed row never discards the rest of the batch. Within a batch the
	// last write for an id wins.
	UpsertMany(ctx context.Context, records []vendor.Record) (stored int, failed int)

	// SearchNearest returns up to limit place ids ordered by ascending
	// cosine distance to the query vector, restricted to allowIDs when the
	// list is non-empty.
	SearchNearest(ctx context.Context, vector []float32, limit int, allowIDs []string) ([]string, error)

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PlaceEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
