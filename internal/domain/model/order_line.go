package model

import "encoding/json"

// 注文時点の商品情報（クライアントが送ってきたもの）
// 在庫に存在しない商品を登録するときの初期値にも使う。
type ProductSnapshot struct {
	ID            string      `json:"id" bson:"id"`
	Name          string      `json:"name" bson:"name"`
	Price         float64     `json:"price" bson:"price"`
	Image         string      `json:"image,omitempty" bson:"image,omitempty"`
	StockQuantity interface{} `json:"stockQuantity,omitempty" bson:"stockQuantity,omitempty"`
}

type OrderLine struct {
	Product  ProductSnapshot `json:"product" bson:"product"`
	Quantity int64           `json:"quantity" bson:"quantity"`
}

// quantityは "2" や 1.5 も受け付ける（整数に切り捨て、数値でなければ0）
func (l *OrderLine) UnmarshalJSON(b []byte) error {
	var raw struct {
		Product  ProductSnapshot `json:"product"`
		Quantity interface{}     `json:"quantity"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	l.Product = raw.Product
	l.Quantity = ParseStock(raw.Quantity)
	return nil
}

// 表示名（nameが空ならid）
func (l OrderLine) DisplayName() string {
	if l.Product.Name != "" {
		return l.Product.Name
	}
	return l.Product.ID
}
