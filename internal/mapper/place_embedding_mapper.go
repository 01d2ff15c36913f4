package mapper

import (
	"github.com/pgvector/pgvector-go"

	"ai-eventplanner-be/internal/entity"
	"ai-eventplanner-be/internal/model"
)

type PlaceEmbeddingMapper struct{}

func NewPlaceEmbeddingMapper() *PlaceEmbeddingMapper {
	return &PlaceEmbeddingMapper{}
}

func (m *PlaceEmbeddingMapper) ToModel(e *entity.PlaceEmbedding) *model.PlaceEmbedding {
	return &model.PlaceEmbedding{
		PlaceID:   e.PlaceID,
		Embedding: pgvector.NewVector(e.Embedding),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (m *PlaceEmbeddingMapper) ToEntity(mod *model.PlaceEmbedding) *entity.PlaceEmbedding {
	return &entity.PlaceEmbedding{
		PlaceID:   mod.PlaceID,
		Embedding: mod.Embedding.Slice(),
		CreatedAt: mod.CreatedAt,
		UpdatedAt: mod.UpdatedAt,
	}
}
