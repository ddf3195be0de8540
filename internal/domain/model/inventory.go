package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// 商品ごとの在庫（productIDで一意）
// inStockは保存しない。StockQuantityから毎回計算する。
type InventoryRecord struct {
	ID            string    `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	StockQuantity int64     `gorm:"not null" json:"stockQuantity"`
	UpdatedAt     time.Time `gorm:"not null" json:"updatedAt"`
}

func (InventoryRecord) TableName() string { return "inventory" }

// 在庫があるか（stockQuantity > 0）
func (r InventoryRecord) InStock() bool {
	return r.StockQuantity > 0
}

// 負の値は0に丸める
func (r InventoryRecord) Normalized() InventoryRecord {
	if r.StockQuantity < 0 {
		r.StockQuantity = 0
	}
	return r
}

// MarshalJSONはinStockを導出値として書き出す。
func (r InventoryRecord) MarshalJSON() ([]byte, error) {
	type doc struct {
		ID            string    `json:"id"`
		Name          string    `json:"name"`
		StockQuantity int64     `json:"stockQuantity"`
		InStock       bool      `json:"inStock"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}
	n := r.Normalized()
	return json.Marshal(doc{
		ID:            n.ID,
		Name:          n.Name,
		StockQuantity: n.StockQuantity,
		InStock:       n.InStock(),
		UpdatedAt:     n.UpdatedAt,
	})
}

// 公開用の在庫状態
type Availability struct {
	InStock       bool  `json:"inStock"`
	StockQuantity int64 `json:"stockQuantity"`
}

// productID -> 在庫状態
type AvailabilityView map[string]Availability

// 在庫一覧から公開用ビューを作る
func NewAvailabilityView(records []InventoryRecord) AvailabilityView {
	view := make(AvailabilityView, len(records))
	for _, r := range records {
		n := r.Normalized()
		view[n.ID] = Availability{
			InStock:       n.InStock(),
			StockQuantity: n.StockQuantity,
		}
	}
	return view
}

// ParseStockは保存値を在庫数に変換する。
// 数値でないもの・負の値・NaNは0として扱う。
func ParseStock(v interface{}) int64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		if t < 0 {
			return 0
		}
		return t
	case float32:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			f = float64(i)
			break
		}
		x, err := t.Float64()
		if err != nil {
			return 0
		}
		f = x
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = x
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}
