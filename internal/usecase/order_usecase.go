package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"wholesale/internal/domain/model"
	repo "wholesale/internal/repository"

	"go.uber.org/zap"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

const (
	defaultOrderListLimit = 100
	maxOrderListLimit     = 500

	// 注文の応答をブローカー待ちで止めない
	eventPublishTimeout = 3 * time.Second
)

// 注文時に在庫を確保するもの（InventoryLedger）
type StockReserver interface {
	Reserve(ctx context.Context, lines []model.OrderLine) (model.AvailabilityView, error)
}

type OrderUsecase struct {
	ledger  StockReserver
	orders  repo.OrderRepository
	events  EventPublisher
	ids     IDGenerator
	clock   Clock
	metrics OrderMetrics
	logger  *zap.Logger
}

func NewOrderUsecase(
	ledger StockReserver,
	orders repo.OrderRepository,
	events EventPublisher,
	ids IDGenerator,
	clock Clock,
	metrics OrderMetrics,
	logger *zap.Logger,
) *OrderUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	if metrics == nil {
		metrics = nopOrderMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderUsecase{
		ledger:  ledger,
		orders:  orders,
		events:  events,
		ids:     ids,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

type PlaceOfflineOrderInput struct {
	Items         []model.OrderLine
	Customer      model.Customer
	PaymentMethod string
}

type ListOrdersInput struct {
	Status        string
	PaymentMethod string
	Limit         int
}

// メール送信などの購読側に渡す内容
type OrderPlacedEvent struct {
	OrderID       string              `json:"orderId"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Customer      model.Customer      `json:"customer"`
	Items         []model.OrderLine   `json:"items"`
	Total         float64             `json:"total"`
	Status        model.OrderStatus   `json:"status"`
}

type OrderStatusChangedEvent struct {
	OrderID  string            `json:"orderId"`
	Status   model.OrderStatus `json:"status"`
	Label    string            `json:"label"`
	Customer model.Customer    `json:"customer"`
}

// PlaceOfflineOrderは代引き・送金の注文を受け付ける。
// 在庫確保に成功したときだけ注文を保存する。
func (u *OrderUsecase) PlaceOfflineOrder(ctx context.Context, in PlaceOfflineOrderInput) (string, error) {
	if len(in.Items) == 0 {
		return "", NewHTTPError(http.StatusBadRequest, "Order items are required.")
	}
	if !customerComplete(in.Customer) {
		return "", NewHTTPError(http.StatusBadRequest, "Customer details are incomplete.")
	}
	method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if !method.Offline() {
		return "", NewHTTPError(http.StatusBadRequest, "Invalid payment method.")
	}

	if _, err := u.ledger.Reserve(ctx, in.Items); err != nil {
		if errors.Is(err, ErrSoldOut) {
			return "", NewHTTPError(http.StatusConflict, err.Error())
		}
		u.logger.Error("reserve stock failed", zap.Error(err))
		return "", NewHTTPError(http.StatusInternalServerError, "Failed to process order.")
	}

	order := model.Order{
		ID:            "ORD-" + u.ids.NewID(),
		PaymentMethod: method,
		Customer:      in.Customer,
		Items:         in.Items,
		Total:         model.CalcTotal(in.Items),
		Status:        model.OrderStatusPending,
		CreatedAt:     u.clock.Now(),
	}
	if err := u.orders.Save(ctx, order); err != nil {
		//在庫は減っている
		u.logger.Error("save order failed after stock reserved",
			zap.String("order_id", order.ID), zap.Error(err))
		return "", NewHTTPError(http.StatusInternalServerError, "Failed to process order.")
	}

	u.metrics.OrderPlaced(string(method))
	u.publish(ctx, EventOrderPlaced, order.ID, OrderPlacedEvent{
		OrderID:       order.ID,
		PaymentMethod: order.PaymentMethod,
		Customer:      order.Customer,
		Items:         order.Items,
		Total:         order.Total,
		Status:        order.Status,
	})
	u.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("payment_method", string(method)),
		zap.Float64("total", order.Total))

	return order.ID, nil
}

// ListOrdersは新しい順に注文を返す（管理者用）
func (u *OrderUsecase) ListOrders(ctx context.Context, in ListOrdersInput) ([]model.Order, error) {
	limit := in.Limit
	if limit == 0 {
		limit = defaultOrderListLimit
	}
	if limit < 0 || limit > maxOrderListLimit {
		return nil, NewHTTPError(http.StatusBadRequest, "Invalid limit.")
	}

	status := strings.TrimSpace(in.Status)
	if status != "" && !model.OrderStatus(status).Valid() {
		return nil, NewHTTPError(http.StatusBadRequest, "Invalid order status.")
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method != "" && !validPaymentMethod(model.PaymentMethod(method)) {
		return nil, NewHTTPError(http.StatusBadRequest, "Invalid payment method.")
	}

	orders, err := u.orders.List(ctx, repo.OrderListFilter{
		Status:        status,
		PaymentMethod: method,
		Limit:         limit,
	})
	if err != nil {
		u.logger.Error("list orders failed", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "Failed to load orders.")
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// UpdateOrderStatusはステータスを変える。キャンセルでも在庫は戻さない。
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, orderID string, status string) (model.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "Invalid order id.")
	}
	next := model.OrderStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "Invalid order status.")
	}

	order, err := u.orders.UpdateStatus(ctx, orderID, next, u.clock.Now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Order{}, NewHTTPError(http.StatusNotFound, "Order not found.")
		}
		u.logger.Error("update order status failed", zap.String("order_id", orderID), zap.Error(err))
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "Failed to update order status.")
	}

	if next != model.OrderStatusPending {
		u.publish(ctx, EventOrderStatusChanged, order.ID, OrderStatusChangedEvent{
			OrderID:  order.ID,
			Status:   next,
			Label:    StatusLabel(next),
			Customer: order.Customer,
		})
	}
	return order, nil
}

// "awaiting_payment" -> "AWAITING PAYMENT"
func StatusLabel(s model.OrderStatus) string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

// イベント送信の失敗で注文は失敗させない。
// 注文は保存済みなので、クライアントが切断してもイベントは送る。
func (u *OrderUsecase) publish(ctx context.Context, eventType, key string, payload interface{}) {
	if u.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()
	if err := u.events.Publish(pctx, eventType, key, payload); err != nil {
		u.logger.Warn("publish order event failed",
			zap.String("event_type", eventType),
			zap.String("order_id", key),
			zap.Error(err))
	}
}

func customerComplete(c model.Customer) bool {
	for _, v := range []string{c.FullName, c.Email, c.Phone, c.Address, c.ZipCode} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func validPaymentMethod(m model.PaymentMethod) bool {
	return m.Offline() || m == model.PaymentMethodCard
}
