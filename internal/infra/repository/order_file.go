package repository

import (
	"context"
	"time"

	"wholesale/internal/domain/model"
	repo "wholesale/internal/repository"
)

// data/orders.json（新しい注文が先頭）
type OrderFileRepository struct {
	file *jsonFile[model.Order]
}

func NewOrderFileRepository(dataDir string) *OrderFileRepository {
	return &OrderFileRepository{file: newJSONFile[model.Order](dataDir, "orders.json")}
}

func (r *OrderFileRepository) Save(ctx context.Context, order model.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.file.update(func(orders []model.Order) ([]model.Order, error) {
		return append([]model.Order{order}, orders...), nil
	})
}

func (r *OrderFileRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	if err := ctx.Err(); err != nil {
		return model.Order{}, err
	}
	orders, err := r.file.read()
	if err != nil {
		return model.Order{}, err
	}
	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r *OrderFileRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	if err := ctx.Err(); err != nil {
		return []model.Order{}, err
	}
	orders, err := r.file.read()
	if err != nil {
		return []model.Order{}, err
	}

	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.PaymentMethod != "" && string(o.PaymentMethod) != f.PaymentMethod {
			continue
		}
		out = append(out, o)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (r *OrderFileRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, at time.Time) (model.Order, error) {
	if err := ctx.Err(); err != nil {
		return model.Order{}, err
	}

	var updated model.Order
	err := r.file.update(func(orders []model.Order) ([]model.Order, error) {
		for i := range orders {
			if orders[i].ID != orderID {
				continue
			}
			ts := at
			orders[i].Status = status
			orders[i].UpdatedAt = &ts
			updated = orders[i]
			return orders, nil
		}
		return nil, repo.ErrNotFound
	})
	if err != nil {
		return model.Order{}, err
	}
	return updated, nil
}
