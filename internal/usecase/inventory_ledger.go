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

// 在庫を書き換える処理はこのキーで1つずつ
const LedgerLockKey = "inventory:ledger"

// ロック中の読み書きはこの時間で打ち切る（ロックのTTLより短くする）
const DefaultLockedTimeout = 5 * time.Second

const (
	reservationOK      = "ok"
	reservationSoldOut = "sold_out"
	reservationError   = "error"
)

// InventoryLedgerは商品ごとの在庫数を管理する。
// 在庫を減らすのはReserveだけ。
type InventoryLedger struct {
	store   repo.InventoryStore
	locker  Locker
	clock   Clock
	seed    []model.InventoryRecord
	metrics LedgerMetrics
	logger  *zap.Logger

	lockedTimeout time.Duration
}

type LedgerOption func(*InventoryLedger)

// 空のストアに最初に書き込む在庫
func WithSeed(records []model.InventoryRecord) LedgerOption {
	return func(l *InventoryLedger) {
		l.seed = append([]model.InventoryRecord(nil), records...)
	}
}

func WithLedgerClock(c Clock) LedgerOption {
	return func(l *InventoryLedger) { l.clock = c }
}

func WithLedgerMetrics(m LedgerMetrics) LedgerOption {
	return func(l *InventoryLedger) { l.metrics = m }
}

func WithLedgerLogger(lg *zap.Logger) LedgerOption {
	return func(l *InventoryLedger) { l.logger = lg }
}

func WithLockedTimeout(d time.Duration) LedgerOption {
	return func(l *InventoryLedger) { l.lockedTimeout = d }
}

func NewInventoryLedger(store repo.InventoryStore, locker Locker, opts ...LedgerOption) *InventoryLedger {
	l := &InventoryLedger{
		store:   store,
		locker:  locker,
		clock:   systemClock{},
		metrics: nopLedgerMetrics{},
		logger:  zap.NewNop(),

		lockedTimeout: DefaultLockedTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Availabilityは全商品の在庫状態を返す。
// inStockは保存値を使わずstockQuantityから作り直す。
func (l *InventoryLedger) Availability(ctx context.Context) (model.AvailabilityView, error) {
	records, err := l.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	if len(records) > 0 || len(l.seed) == 0 {
		return model.NewAvailabilityView(records), nil
	}

	//空なら初期在庫を入れる（ロック内で再確認）
	unlock, err := l.locker.Lock(ctx, LedgerLockKey)
	if err != nil {
		return nil, fmt.Errorf("acquire inventory lock: %w", err)
	}
	defer unlock()

	lctx, cancel := lockedContext(ctx, l.lockedTimeout)
	defer cancel()
	records, err = l.loadLocked(lctx)
	if err != nil {
		return nil, err
	}
	return model.NewAvailabilityView(records), nil
}

// Reserveは明細の数量ぶん在庫を減らす。
// 1つでも足りなければ何も書かずにSoldOutErrorを返す。
func (l *InventoryLedger) Reserve(ctx context.Context, lines []model.OrderLine) (model.AvailabilityView, error) {
	start := time.Now()
	outcome := reservationError
	defer func() {
		l.metrics.ObserveReservation(outcome, time.Since(start))
	}()

	unlock, err := l.locker.Lock(ctx, LedgerLockKey)
	if err != nil {
		return nil, fmt.Errorf("acquire inventory lock: %w", err)
	}
	lctx, cancel := lockedContext(ctx, l.lockedTimeout)
	changed, err := l.reserveLocked(lctx, lines)
	cancel()
	unlock()
	if err != nil {
		if errors.Is(err, ErrSoldOut) {
			outcome = reservationSoldOut
			l.logger.Info("reservation rejected", zap.Error(err))
		}
		return nil, err
	}
	outcome = reservationOK
	l.logger.Debug("reservation applied", zap.Int("records", len(changed)))

	records, err := l.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	return model.NewAvailabilityView(records), nil
}

// ロックを持った状態で呼ぶ
func (l *InventoryLedger) reserveLocked(ctx context.Context, lines []model.OrderLine) ([]model.InventoryRecord, error) {
	records, err := l.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	working := make(map[string]model.InventoryRecord, len(records))
	for _, r := range records {
		working[r.ID] = r.Normalized()
	}

	demand := make(map[string]int64)
	touched := make([]string, 0, len(lines))
	var unavailable []string

	for _, line := range lines {
		id := line.Product.ID
		if id == "" || line.Quantity <= 0 {
			continue
		}

		rec, ok := working[id]
		if !ok {
			rec = seedFromSnapshot(line, now)
			working[id] = rec
		}

		//同じ商品が複数行ある場合は残りで判定
		available := rec.Normalized().StockQuantity - demand[id]
		if available < line.Quantity {
			unavailable = append(unavailable, line.DisplayName())
			continue
		}
		if _, seen := demand[id]; !seen {
			touched = append(touched, id)
		}
		demand[id] += line.Quantity
	}

	if len(unavailable) > 0 {
		return nil, &SoldOutError{Items: unavailable}
	}
	if len(touched) == 0 {
		return nil, nil
	}

	changed := make([]model.InventoryRecord, 0, len(touched))
	for _, id := range touched {
		rec := working[id]
		next := rec.StockQuantity - demand[id]
		if next < 0 {
			next = 0
		}
		rec.StockQuantity = next
		rec.UpdatedAt = now
		changed = append(changed, rec)
	}

	if err := l.store.BulkUpsert(ctx, changed); err != nil {
		return nil, fmt.Errorf("write inventory: %w", err)
	}
	return changed, nil
}

// ロックを持った状態で呼ぶ。空なら初期在庫を書き込む。
func (l *InventoryLedger) loadLocked(ctx context.Context) ([]model.InventoryRecord, error) {
	records, err := l.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	if len(records) > 0 || len(l.seed) == 0 {
		return records, nil
	}

	now := l.clock.Now()
	seeded := make([]model.InventoryRecord, 0, len(l.seed))
	for _, s := range l.seed {
		r := s.Normalized()
		r.UpdatedAt = now
		seeded = append(seeded, r)
	}
	if err := l.store.BulkUpsert(ctx, seeded); err != nil {
		return nil, fmt.Errorf("seed inventory: %w", err)
	}
	l.logger.Info("inventory seeded", zap.Int("records", len(seeded)))
	return seeded, nil
}

// ロックが期限切れになる前に処理を止める
func lockedContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// 在庫にない商品は注文時の商品情報から作る
func seedFromSnapshot(line model.OrderLine, now time.Time) model.InventoryRecord {
	return model.InventoryRecord{
		ID:            line.Product.ID,
		Name:          line.DisplayName(),
		StockQuantity: model.ParseStock(line.Product.StockQuantity),
		UpdatedAt:     now,
	}
}
