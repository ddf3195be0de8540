package repository

import (
	"context"
	"time"

	"wholesale/internal/domain/model"
)

// 管理者用の注文一覧の条件
type OrderListFilter struct {
	Status        string
	PaymentMethod string
	Limit         int
}

type OrderRepository interface {
	Save(ctx context.Context, order model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)

	// 新しい順
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)

	// ステータス更新して更新後を返す
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, at time.Time) (model.Order, error)
}
