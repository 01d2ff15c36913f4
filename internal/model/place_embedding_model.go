package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type PlaceEmbedding struct {
	PlaceID   string          `gorm:"type:varchar(255);primaryKey"`
	Embedding pgvector.Vector `gorm:"type:vector(1536)"` // gemini-embedding-001 at 1536 dimensions
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (PlaceEmbedding) TableName() string {
	return "place_embeddings"
}
