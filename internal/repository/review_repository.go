package repository

import (
	"context"

	"wholesale/internal/domain/model"
)

type ReviewRepository interface {
	Create(ctx context.Context, review model.Review) error

	// 商品ごと・新しい順
	ListByProductID(ctx context.Context, productID string, limit int) ([]model.Review, error)

	// 平均評価と件数
	Summary(ctx context.Context, productID string) (model.RatingSummary, error)
}
