package repository

import (
	"context"

	"wholesale/internal/domain/model"
)

// 在庫の永続化の約束（Ledgerが使う最小限）
type InventoryStore interface {
	// 全件取得
	ReadAll(ctx context.Context) ([]model.InventoryRecord, error)

	// idで一括upsert
	BulkUpsert(ctx context.Context, records []model.InventoryRecord) error

	// 1件取得（なければErrNotFound）
	FindByID(ctx context.Context, id string) (model.InventoryRecord, error)
}

// カタログ同期用（削除あり）
type InventoryCatalogStore interface {
	InventoryStore

	// ids以外を削除して、削除件数を返す
	DeleteExcept(ctx context.Context, ids []string) (int64, error)
}
