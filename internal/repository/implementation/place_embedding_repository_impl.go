package implementation

import (
	"context"
	"errors"

	"ai-eventplanner-be/internal/entity"
	"ai-eventplanner-be/internal/mapper"
	"ai-eventplanner-be/internal/model"
	"ai-eventplanner-be/internal/repository/contract"
	"ai-eventplanner-be/internal/repository/specification"
	"ai-eventplanner-be/pkg/vendor"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlaceEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PlaceEmbeddingMapper
}

func NewPlaceEmbeddingRepository(db *gorm.DB) contract.PlaceEmbeddingRepository {
	return &PlaceEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewPlaceEmbeddingMapper(),
	}
}

func (r *PlaceEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PlaceEmbeddingRepositoryImpl) GetMany(ctx context.Context, placeIDs []string) (map[string][]float32, error) {
	found := make(map[string][]float32, len(placeIDs))
	if len(placeIDs) == 0 {
		return found, nil
	}

	var models []*model.PlaceEmbedding
	err := r.db.WithContext(ctx).
		Where("place_id IN ?", placeIDs).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	for _, m := range models {
		found[m.PlaceID] = m.Embedding.Slice()
	}
	return found, nil
}

func (r *PlaceEmbeddingRepositoryImpl) UpsertMany(ctx context.Context, records []vendor.Record) (int, int) {
	stored, failed := 0, 0
	// One statement per record keeps a single bad row from poisoning the
	// batch; callers tolerate partial writes.
	for _, rec := range records {
		m := &model.PlaceEmbedding{
			PlaceID:   rec.PlaceID,
			Embedding: pgvector.NewVector(rec.Vector),
		}
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "place_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"embedding", "updated_at"}),
			}).
			Create(m).Error
		if err != nil {
			failed++
			continue
		}
		stored++
	}
	return stored, failed
}

func (r *PlaceEmbeddingRepositoryImpl) SearchNearest(ctx context.Context, vector []float32, limit int, allowIDs []string) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	query := r.db.WithContext(ctx).Model(&model.PlaceEmbedding{})
	if len(allowIDs) > 0 {
		query = query.Where("place_id IN ?", allowIDs)
	}

	// pgvector cosine distance, closest first.
	var ids []string
	err := query.
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(vector))).
		Limit(limit).
		Pluck("place_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PlaceEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PlaceEmbedding, error) {
	var m model.PlaceEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PlaceEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.PlaceEmbedding{}).Count(&count).Error
	return count, err
}
