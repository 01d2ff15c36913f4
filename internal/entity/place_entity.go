package entity

import "time"

// Place is a collected vendor place with the details shown in plans.
type Place struct {
	PlaceID     string
	Name        string
	PrimaryType string
	Types       []string
	Address     string
	Phone       string
	Website     string
	Rating      float64
	RatingCount int
	Reviews     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
