package model

import "time"

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusShipping        OrderStatus = "shipping"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// 管理画面から設定できるステータス
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAwaitingPayment,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipping,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCOD       PaymentMethod = "cod"
	PaymentMethodJazzCash  PaymentMethod = "jazzcash"
	PaymentMethodEasypaisa PaymentMethod = "easypaisa"
	PaymentMethodCard      PaymentMethod = "card"
)

// 後払い・送金系（カード以外）
func (m PaymentMethod) Offline() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodJazzCash, PaymentMethodEasypaisa:
		return true
	}
	return false
}

type Customer struct {
	FullName string `json:"fullName" bson:"fullName"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone" bson:"phone"`
	Address  string `json:"address" bson:"address"`
	ZipCode  string `json:"zipCode" bson:"zipCode"`
}

type Order struct {
	ID            string        `gorm:"primaryKey;type:varchar(64)" json:"id" bson:"id"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null;index" json:"paymentMethod" bson:"paymentMethod"`
	Customer      Customer      `gorm:"serializer:json;type:jsonb;not null" json:"customer" bson:"customer"`
	Items         []OrderLine   `gorm:"serializer:json;type:jsonb;not null" json:"items" bson:"items"`
	Total         float64       `gorm:"not null" json:"total" bson:"total"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status" bson:"status"`
	CreatedAt     time.Time     `gorm:"not null;index" json:"createdAt" bson:"createdAt"`
	UpdatedAt     *time.Time    `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// 明細の合計金額
func CalcTotal(items []OrderLine) float64 {
	var total float64
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}
