package specification

import (
	"fmt"

	"gorm.io/gorm"
)

// ByPlaceID filters by place id
type ByPlaceID struct {
	PlaceID string
}

func (s ByPlaceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("place_id = ?", s.PlaceID)
}

// ByPlaceIDs filters by a list of place ids
type ByPlaceIDs struct {
	PlaceIDs []string
}

func (s ByPlaceIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("place_id IN ?", s.PlaceIDs)
}

// ByPrimaryType filters places by their primary type tag
type ByPrimaryType struct {
	PrimaryType string
}

func (s ByPrimaryType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("primary_type = ?", s.PrimaryType)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// FilterBy Generic Filter
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s = ?", s.Field)
	return db.Where(query, s.Value)
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}
