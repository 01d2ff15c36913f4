package contract

import (
	"context"

	"ai-eventplanner-be/internal/entity"
	"ai-eventplanner-be/internal/repository/specification"
)

type PlaceRepository interface {
	// UpsertMany inserts or refreshes collected place details by place id.
	UpsertMany(ctx context.Context, places []*entity.Place) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Place, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Place, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
