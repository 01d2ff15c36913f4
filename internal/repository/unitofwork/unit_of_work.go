package unitofwork

import (
	"context"

	"ai-eventplanner-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PlaceRepository() contract.PlaceRepository
	PlaceEmbeddingRepository() contract.PlaceEmbeddingRepository
}
