package mapper

import (
	"encoding/json"

	"ai-eventplanner-be/internal/entity"
	"ai-eventplanner-be/internal/model"
)

// placeAttributes is the shape of the JSON attributes column.
type placeAttributes struct {
	Types       []string `json:"types,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Website     string   `json:"website,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	RatingCount int      `json:"rating_count,omitempty"`
	Reviews     []string `json:"reviews,omitempty"`
}

type PlaceMapper struct{}

func NewPlaceMapper() *PlaceMapper {
	return &PlaceMapper{}
}

func (m *PlaceMapper) ToModel(e *entity.Place) *model.Place {
	attrs, _ := json.Marshal(placeAttributes{
		Types:       e.Types,
		Address:     e.Address,
		Phone:       e.Phone,
		Website:     e.Website,
		Rating:      e.Rating,
		RatingCount: e.RatingCount,
		Reviews:     e.Reviews,
	})
	return &model.Place{
		PlaceID:     e.PlaceID,
		Name:        e.Name,
		PrimaryType: e.PrimaryType,
		Attributes:  attrs,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (m *PlaceMapper) ToEntity(mod *model.Place) *entity.Place {
	var attrs placeAttributes
	if len(mod.Attributes) > 0 {
		_ = json.Unmarshal(mod.Attributes, &attrs)
	}
	return &entity.Place{
		PlaceID:     mod.PlaceID,
		Name:        mod.Name,
		PrimaryType: mod.PrimaryType,
		Types:       attrs.Types,
		Address:     attrs.Address,
		Phone:       attrs.Phone,
		Website:     attrs.Website,
		Rating:      attrs.Rating,
		RatingCount: attrs.RatingCount,
		Reviews:     attrs.Reviews,
		CreatedAt:   mod.CreatedAt,
		UpdatedAt:   mod.UpdatedAt,
	}
}
