package entity

import "time"

// PlaceEmbedding is the stored vector for one place document.
type PlaceEmbedding struct {
	PlaceID   string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}
