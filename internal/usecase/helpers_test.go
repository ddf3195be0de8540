package usecase_test

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"wholesale/internal/domain/model"
	repo "wholesale/internal/repository"
	"wholesale/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// メモリ上の在庫ストア
// =====================

type memInventoryStore struct {
	mu      sync.Mutex
	records map[string]model.InventoryRecord
	upserts int

	readErr   error
	upsertErr error
	deleteErr error
}

// 書き込みがctxの期限まで返らないストア
type stallingInventoryStore struct{ *memInventoryStore }

func (s stallingInventoryStore) BulkUpsert(ctx context.Context, records []model.InventoryRecord) error {
	<-ctx.Done()
	return ctx.Err()
}

func newMemInventoryStore(records ...model.InventoryRecord) *memInventoryStore {
	s := &memInventoryStore{records: make(map[string]model.InventoryRecord)}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *memInventoryStore) ReadAll(ctx context.Context) ([]model.InventoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := make([]model.InventoryRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memInventoryStore) BulkUpsert(ctx context.Context, records []model.InventoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts++
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

func (s *memInventoryStore) FindByID(ctx context.Context, id string) (model.InventoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return model.InventoryRecord{}, repo.ErrNotFound
	}
	return r, nil
}

func (s *memInventoryStore) DeleteExcept(ctx context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	var n int64
	for id := range s.records {
		if _, ok := keep[id]; !ok {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

func (s *memInventoryStore) stock(t *testing.T, id string) int64 {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	assert.True(t, ok, "record %s not found", id)
	return r.StockQuantity
}

func (s *memInventoryStore) upsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

// =====================
// 時計・ID
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "id-" + strconv.Itoa(g.n)
}

// =====================
// Mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Save(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, at time.Time) (model.Order, error) {
	args := m.Called(ctx, orderID, status, at)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

type ReserverMock struct{ mock.Mock }

func (m *ReserverMock) Reserve(ctx context.Context, lines []model.OrderLine) (model.AvailabilityView, error) {
	args := m.Called(ctx, lines)
	v, _ := args.Get(0).(model.AvailabilityView)
	return v, args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, eventType string, key string, payload interface{}) error {
	args := m.Called(ctx, eventType, key, payload)
	return args.Error(0)
}

type ReviewRepoMock struct{ mock.Mock }

func (m *ReviewRepoMock) Create(ctx context.Context, review model.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *ReviewRepoMock) ListByProductID(ctx context.Context, productID string, limit int) ([]model.Review, error) {
	args := m.Called(ctx, productID, limit)
	items, _ := args.Get(0).([]model.Review)
	return items, args.Error(1)
}

func (m *ReviewRepoMock) Summary(ctx context.Context, productID string) (model.RatingSummary, error) {
	args := m.Called(ctx, productID)
	s, _ := args.Get(0).(model.RatingSummary)
	return s, args.Error(1)
}

type LedgerMetricsMock struct{ mock.Mock }

func (m *LedgerMetricsMock) ObserveReservation(outcome string, d time.Duration) {
	m.Called(outcome, d)
}

type OrderMetricsMock struct{ mock.Mock }

func (m *OrderMetricsMock) OrderPlaced(paymentMethod string) {
	m.Called(paymentMethod)
}

// HTTPErrorのステータスとメッセージを確認
func assertHTTPError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if !assert.True(t, ok, "expected HTTPError, got %v", err) {
		return
	}
	assert.Equal(t, status, he.Status)
	if msg != "" {
		assert.Equal(t, msg, he.Message)
	}
}

func line(id, name string, qty int64) model.OrderLine {
	return model.OrderLine{
		Product:  model.ProductSnapshot{ID: id, Name: name, Price: 10},
		Quantity: qty,
	}
}

func rec(id string, stock int64) model.InventoryRecord {
	return model.InventoryRecord{ID: id, Name: id, StockQuantity: stock, UpdatedAt: testNow.Add(-time.Hour)}
}
