package usecase

import (
	"context"
	"time"
)

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

// 在庫の書き込みを1つずつにするためのロック
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// 注文イベントの送信先
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, payload interface{}) error
}

type LedgerMetrics interface {
	ObserveReservation(outcome string, d time.Duration)
}

type OrderMetrics interface {
	OrderPlaced(paymentMethod string)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type nopLedgerMetrics struct{}

func (nopLedgerMetrics) ObserveReservation(string, time.Duration) {}

type nopOrderMetrics struct{}

func (nopOrderMetrics) OrderPlaced(string) {}
