package model

import (
	"time"

	"gorm.io/datatypes"
)

type Place struct {
	PlaceID     string         `gorm:"type:varchar(255);primaryKey"`
	Name        string         `gorm:"type:varchar(512);not null"`
	PrimaryType string         `gorm:"type:varchar(128);index"`
	Attributes  datatypes.JSON `gorm:"type:jsonb"` // types, reviews, contact info, rating
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (Place) TableName() string {
	return "places"
}
