package implementation

import (
	"context"
	"errors"

	"ai-eventplanner-be/internal/entity"
	"ai-eventplanner-be/internal/mapper"
	"ai-eventplanner-be/internal/model"
	"ai-eventplanner-be/internal/repository/contract"
	"ai-eventplanner-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlaceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PlaceMapper
}

func NewPlaceRepository(db *gorm.DB) contract.PlaceRepository {
	return &PlaceRepositoryImpl{
		db:     db,
		mapper: mapper.NewPlaceMapper(),
	}
}

func (r *PlaceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PlaceRepositoryImpl) UpsertMany(ctx context.Context, places []*entity.Place) error {
	if len(places) == 0 {
		return nil
	}
	models := make([]*model.Place, len(places))
	for i, p := range places {
		models[i] = r.mapper.ToModel(p)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "place_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "primary_type", "attributes", "updated_at"}),
		}).
		Create(models).Error
}

func (r *PlaceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Place, error) {
	var m model.Place
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PlaceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Place, error) {
	var models []*model.Place
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Place, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PlaceRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Place{}).Count(&count).Error
	return count, err
}
