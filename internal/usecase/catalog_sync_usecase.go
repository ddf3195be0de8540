package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wholesale/internal/domain/model"
	repo "wholesale/internal/repository"

	"go.uber.org/zap"
)

var ErrEmptyCatalog = errors.New("catalog is empty")

type CatalogSyncResult struct {
	Parsed   int
	Inserted int
	Updated  int
	Deleted  int64
}

// CatalogSyncUsecaseは在庫をカタログに合わせる。
// Ledgerと同じロックの中で動く。
type CatalogSyncUsecase struct {
	store  repo.InventoryCatalogStore
	locker Locker
	clock  Clock
	logger *zap.Logger

	lockedTimeout time.Duration
}

func NewCatalogSyncUsecase(store repo.InventoryCatalogStore, locker Locker, clock Clock, logger *zap.Logger) *CatalogSyncUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogSyncUsecase{store: store, locker: locker, clock: clock, logger: logger, lockedTimeout: DefaultLockedTimeout}
}

// ロック中の処理時間の上限を変える（0以下なら上限なし）
func (u *CatalogSyncUsecase) SetLockedTimeout(d time.Duration) {
	u.lockedTimeout = d
}

// Syncは新しいidを追加し、既存は名前を更新、カタログにないidは削除する。
// 既存の在庫数は変えない（負の値だけ0に直す）。
func (u *CatalogSyncUsecase) Sync(ctx context.Context, products []model.InventoryRecord) (CatalogSyncResult, error) {
	if len(products) == 0 {
		return CatalogSyncResult{}, ErrEmptyCatalog
	}

	unlock, err := u.locker.Lock(ctx, LedgerLockKey)
	if err != nil {
		return CatalogSyncResult{}, fmt.Errorf("acquire inventory lock: %w", err)
	}
	defer unlock()

	ctx, cancel := lockedContext(ctx, u.lockedTimeout)
	defer cancel()

	existing, err := u.store.ReadAll(ctx)
	if err != nil {
		return CatalogSyncResult{}, fmt.Errorf("read inventory: %w", err)
	}
	byID := make(map[string]model.InventoryRecord, len(existing))
	for _, r := range existing {
		byID[r.ID] = r
	}

	now := u.clock.Now()
	res := CatalogSyncResult{Parsed: len(products)}
	ids := make([]string, 0, len(products))
	writes := make([]model.InventoryRecord, 0, len(products))

	for _, p := range products {
		ids = append(ids, p.ID)
		cur, ok := byID[p.ID]
		if !ok {
			rec := p.Normalized()
			rec.UpdatedAt = now
			writes = append(writes, rec)
			res.Inserted++
			continue
		}

		next := cur.Normalized()
		if next.Name == p.Name && next.StockQuantity == cur.StockQuantity {
			continue
		}
		next.Name = p.Name
		next.UpdatedAt = now
		writes = append(writes, next)
		res.Updated++
	}

	if len(writes) > 0 {
		if err := u.store.BulkUpsert(ctx, writes); err != nil {
			return CatalogSyncResult{}, fmt.Errorf("write inventory: %w", err)
		}
	}

	deleted, err := u.store.DeleteExcept(ctx, ids)
	if err != nil {
		return CatalogSyncResult{}, fmt.Errorf("prune inventory: %w", err)
	}
	res.Deleted = deleted

	u.logger.Info("catalog synced",
		zap.Int("parsed", res.Parsed),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int64("deleted", res.Deleted))
	return res, nil
}
