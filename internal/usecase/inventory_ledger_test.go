package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wholesale/internal/domain/model"
	"wholesale/internal/infra/lock"
	"wholesale/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLedger(store *memInventoryStore, opts ...usecase.LedgerOption) *usecase.InventoryLedger {
	opts = append([]usecase.LedgerOption{usecase.WithLedgerClock(fixedClock{t: testNow})}, opts...)
	return usecase.NewInventoryLedger(store, lock.NewLocalLocker(), opts...)
}

// =====================
// Availability
// =====================

func TestInventoryLedger_Availability_DerivesInStock(t *testing.T) {
	store := newMemInventoryStore(rec("A", 5), rec("B", 0), rec("C", -4))
	ledger := newLedger(store)

	view, err := ledger.Availability(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.Availability{InStock: true, StockQuantity: 5}, view["A"])
	assert.Equal(t, model.Availability{InStock: false, StockQuantity: 0}, view["B"])
	assert.Equal(t, model.Availability{InStock: false, StockQuantity: 0}, view["C"])
	assert.Equal(t, 0, store.upsertCount())
}

func TestInventoryLedger_Availability_EmptyWithoutSeed(t *testing.T) {
	store := newMemInventoryStore()
	ledger := newLedger(store)

	view, err := ledger.Availability(context.Background())
	require.NoError(t, err)
	assert.Empty(t, view)
	assert.Equal(t, 0, store.upsertCount())
}

func TestInventoryLedger_Availability_SeedsEmptyStoreOnce(t *testing.T) {
	store := newMemInventoryStore()
	ledger := newLedger(store, usecase.WithSeed([]model.InventoryRecord{
		{ID: "j1", Name: "Necklace", StockQuantity: 50},
		{ID: "j2", Name: "Bracelet", StockQuantity: -1},
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, err := ledger.Availability(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, int64(50), view["j1"].StockQuantity)
			assert.False(t, view["j2"].InStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.upsertCount())
	assert.Equal(t, int64(50), store.stock(t, "j1"))
	assert.Equal(t, int64(0), store.stock(t, "j2"))
}

func TestInventoryLedger_Availability_StoreError(t *testing.T) {
	boom := errors.New("disk gone")
	store := newMemInventoryStore()
	store.readErr = boom
	ledger := newLedger(store)

	_, err := ledger.Availability(context.Background())
	assert.ErrorIs(t, err, boom)
}

// =====================
// Reserve
// =====================

func TestInventoryLedger_Reserve_Success(t *testing.T) {
	store := newMemInventoryStore(rec("A", 5), rec("B", 7))
	ledger := newLedger(store)

	view, err := ledger.Reserve(context.Background(), []model.OrderLine{line("A", "Alpha", 3)})
	require.NoError(t, err)

	assert.Equal(t, model.Availability{InStock: true, StockQuantity: 2}, view["A"])
	assert.Equal(t, model.Availability{InStock: true, StockQuantity: 7}, view["B"])

	got, err := store.FindByID(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.StockQuantity)
	assert.Equal(t, testNow, got.UpdatedAt)

	untouched, err := store.FindByID(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(-time.Hour), untouched.UpdatedAt)
}

func TestInventoryLedger_Reserve_SoldOutChangesNothing(t *testing.T) {
	store := newMemInventoryStore(rec("A", 2), rec("B", 10))
	ledger := newLedger(store)

	_, err := ledger.Reserve(context.Background(), []model.OrderLine{
		line("A", "Alpha", 3),
		line("B", "Beta", 1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, usecase.ErrSoldOut)
	assert.Equal(t, "Some items are sold out: Alpha", err.Error())

	var soldOut *usecase.SoldOutError
	require.True(t, errors.As(err, &soldOut))
	assert.Equal(t, []string{"Alpha"}, soldOut.Items)

	assert.Equal(t, int64(2), store.stock(t, "A"))
	assert.Equal(t, int64(10), store.stock(t, "B"))
	assert.Equal(t, 0, store.upsertCount())
}

func TestInventoryLedger_Reserve_SoldOutListsEveryLine(t *testing.T) {
	store := newMemInventoryStore(rec("A", 0), rec("B", 1), rec("C", 9))
	ledger := newLedger(store)

	_, err := ledger.Reserve(context.Background(), []model.OrderLine{
		line("A", "Alpha", 1),
		line("C", "Gamma", 1),
		line("B", "", 2),
	})
	assert.EqualError(t, err, "Some items are sold out: Alpha, B")
	assert.Equal(t, int64(9), store.stock(t, "C"))
}

func TestInventoryLedger_Reserve_SeedsUnknownFromSnapshot(t *testing.T) {
	store := newMemInventoryStore(rec("A", 5))
	ledger := newLedger(store)

	l := line("Z", "Zeta", 1)
	l.Product.StockQuantity = 4

	view, err := ledger.Reserve(context.Background(), []model.OrderLine{l})
	require.NoError(t, err)
	assert.Equal(t, model.Availability{InStock: true, StockQuantity: 3}, view["Z"])

	got, err := store.FindByID(context.Background(), "Z")
	require.NoError(t, err)
	assert.Equal(t, "Zeta", got.Name)
	assert.Equal(t, int64(3), got.StockQuantity)
}

func TestInventoryLedger_Reserve_UnknownWithoutStockIsSoldOut(t *testing.T) {
	store := newMemInventoryStore()
	ledger := newLedger(store)

	l := line("Z", "", 1)
	l.Product.StockQuantity = "not a number"

	_, err := ledger.Reserve(context.Background(), []model.OrderLine{l})
	assert.EqualError(t, err, "Some items are sold out: Z")

	_, err = store.FindByID(context.Background(), "Z")
	assert.Error(t, err)
}

func TestInventoryLedger_Reserve_LastUnitFlipsInStock(t *testing.T) {
	store := newMemInventoryStore(rec("A", 1))
	ledger := newLedger(store)

	view, err := ledger.Reserve(context.Background(), []model.OrderLine{line("A", "Alpha", 1)})
	require.NoError(t, err)
	assert.Equal(t, model.Availability{InStock: false, StockQuantity: 0}, view["A"])
}

func TestInventoryLedger_Reserve_TwiceDecrementsTwice(t *testing.T) {
	store := newMemInventoryStore(rec("A", 5))
	ledger := newLedger(store)
	lines := []model.OrderLine{line("A", "Alpha", 2)}

	_, err := ledger.Reserve(context.Background(), lines)
	require.NoError(t, err)
	_, err = ledger.Reserve(context.Background(), lines)
	require.NoError(t, err)

	assert.Equal(t, int64(1), store.stock(t, "A"))
}

func TestInventoryLedger_Reserve_SkipsEmptyAndNonPositiveLines(t *testing.T) {
	store := newMemInventoryStore(rec("A", 5))
	ledger := newLedger(store)

	view, err := ledger.Reserve(context.Background(), []model.OrderLine{
		line("", "Nameless", 3),
		line("A", "Alpha", 0),
		line("A", "Alpha", -2),
		line("Q", "Unknown", 0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), view["A"].StockQuantity)
	assert.NotContains(t, view, "Q")
	assert.Equal(t, 0, store.upsertCount())
}

func TestInventoryLedger_Reserve_RepeatedLinesUseRemainder(t *testing.T) {
	store := newMemInventoryStore(rec("A", 5))
	ledger := newLedger(store)

	_, err := ledger.Reserve(context.Background(), []model.OrderLine{
		line("A", "Alpha", 3),
		line("A", "Alpha", 3),
	})
	assert.ErrorIs(t, err, usecase.ErrSoldOut)
	assert.Equal(t, int64(5), store.stock(t, "A"))

	view, err := ledger.Reserve(context.Background(), []model.OrderLine{
		line("A", "Alpha", 2),
		line("A", "Alpha", 3),
	})
	require.NoError(t, err)
	assert.Equal(t, model.Availability{InStock: false, StockQuantity: 0}, view["A"])
}

func TestInventoryLedger_Reserve_NegativeStoredStockIsZero(t *testing.T) {
	store := newMemInventoryStore(rec("A", -3))
	ledger := newLedger(store)

	_, err := ledger.Reserve(context.Background(), []model.OrderLine{line("A", "Alpha", 1)})
	assert.ErrorIs(t, err, usecase.ErrSoldOut)
}

func TestInventoryLedger_Reserve_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("read", func(t *testing.T) {
		store := newMemInventoryStore(rec("A", 5))
		store.readErr = boom
		_, err := newLedger(store).Reserve(context.Background(), []model.OrderLine{line("A", "Alpha", 1)})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, usecase.ErrSoldOut)
	})

	t.Run("write", func(t *testing.T) {
		store := newMemInventoryStore(rec("A", 5))
		store.upsertErr = boom
		_, err := newLedger(store).Reserve(context.Background(), []model.OrderLine{line("A", "Alpha", 1)})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int64(5), store.stock(t, "A"))
	})
}

func TestInventoryLedger_Reserve_ConcurrentOnlyOneWins(t *testing.T) {
	store := newMemInventoryStore(rec("A", 5))
	ledger := newLedger(store)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		soldOut int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Reserve(context.Background(), []model.OrderLine{line("A", "Alpha", 3)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, usecase.ErrSoldOut):
				soldOut++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, soldOut)
	assert.Equal(t, int64(2), store.stock(t, "A"))
}

func TestInventoryLedger_Reserve_LockHonoursContext(t *testing.T) {
	store := newMemInventoryStore(rec("A", 5))
	locker := lock.NewLocalLocker()
	ledger := usecase.NewInventoryLedger(store, locker)

	unlock, err := locker.Lock(context.Background(), usecase.LedgerLockKey)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = ledger.Reserve(ctx, []model.OrderLine{line("A", "Alpha", 1)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(5), store.stock(t, "A"))
}

func TestInventoryLedger_Reserve_LockedWorkIsBounded(t *testing.T) {
	store := newMemInventoryStore(rec("A", 5))
	locker := lock.NewLocalLocker()
	ledger := usecase.NewInventoryLedger(stallingInventoryStore{store}, locker,
		usecase.WithLockedTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := ledger.Reserve(context.Background(), []model.OrderLine{line("A", "Alpha", 1)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, usecase.ErrSoldOut)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int64(5), store.stock(t, "A"))

	//ロックは解放されている
	unlock, err := locker.Lock(context.Background(), usecase.LedgerLockKey)
	require.NoError(t, err)
	unlock()
}

func TestInventoryLedger_Availability_SeedingIsBounded(t *testing.T) {
	store := newMemInventoryStore()
	ledger := usecase.NewInventoryLedger(stallingInventoryStore{store}, lock.NewLocalLocker(),
		usecase.WithSeed([]model.InventoryRecord{rec("j1", 3)}),
		usecase.WithLockedTimeout(20*time.Millisecond))

	_, err := ledger.Availability(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, store.upsertCount())
}

func TestInventoryLedger_Reserve_RecordsOutcome(t *testing.T) {
	store := newMemInventoryStore(rec("A", 1))
	m := new(LedgerMetricsMock)
	m.On("ObserveReservation", "ok", mock.AnythingOfType("time.Duration")).Once()
	m.On("ObserveReservation", "sold_out", mock.AnythingOfType("time.Duration")).Once()
	ledger := newLedger(store, usecase.WithLedgerMetrics(m))

	_, err := ledger.Reserve(context.Background(), []model.OrderLine{line("A", "Alpha", 1)})
	require.NoError(t, err)
	_, err = ledger.Reserve(context.Background(), []model.OrderLine{line("A", "Alpha", 1)})
	require.Error(t, err)

	m.AssertExpectations(t)
}
