package repository

import (
	"context"

	"wholesale/internal/domain/model"

	"gorm.io/gorm"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

func (r *ReviewGormRepository) Create(ctx context.Context, review model.Review) error {
	return r.db.WithContext(ctx).Create(&review).Error
}

func (r *ReviewGormRepository) ListByProductID(ctx context.Context, productID string, limit int) ([]model.Review, error) {
	var items []model.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.Review{}, err
	}
	return items, nil
}

func (r *ReviewGormRepository) Summary(ctx context.Context, productID string) (model.RatingSummary, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return model.RatingSummary{}, err
	}
	return model.RatingSummary{Average: row.Average, Count: row.Count}, nil
}
