package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"wholesale/internal/domain/model"

	"gopkg.in/yaml.v3"
)

var ErrEmptyCatalog = errors.New("catalog has no products")

// カタログファイルの1商品
type Product struct {
	ID            string      `yaml:"id"`
	Name          string      `yaml:"name"`
	StockQuantity interface{} `yaml:"stockQuantity"`
}

// Parseは商品リストのYAMLを在庫レコードにする。
// idかnameがない行は飛ばし、同じidは最初の行を使う。
func Parse(r io.Reader) ([]model.InventoryRecord, error) {
	var products []Product
	if err := yaml.NewDecoder(r).Decode(&products); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(products))
	out := make([]model.InventoryRecord, 0, len(products))
	for _, p := range products {
		id := strings.TrimSpace(p.ID)
		name := strings.TrimSpace(p.Name)
		if id == "" || name == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, model.InventoryRecord{
			ID:            id,
			Name:          name,
			StockQuantity: model.ParseStock(p.StockQuantity),
		})
	}
	if len(out) == 0 {
		return nil, ErrEmptyCatalog
	}
	return out, nil
}

func Load(path string) ([]model.InventoryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// 空のストアに入れる初期在庫
func Default() []model.InventoryRecord {
	return []model.InventoryRecord{
		{ID: "j1", Name: "Diamond Teardrop Necklace", StockQuantity: 50},
		{ID: "j2", Name: "Golden Infinity Bracelet", StockQuantity: 75},
		{ID: "j3", Name: "Emerald & Sapphire Earrings", StockQuantity: 40},
		{ID: "j4", Name: "Diamond Halo Ring", StockQuantity: 30},
		{ID: "j5", Name: "Charm Anklet Collection", StockQuantity: 100},
		{ID: "j6", Name: "Pearl & Gemstone Brooch", StockQuantity: 60},
		{ID: "j7", Name: "Cuban Link Chain", StockQuantity: 25},
		{ID: "c1", Name: "Gold Embroidered Evening Gown", StockQuantity: 35},
		{ID: "c2", Name: "Gold Button Blazer", StockQuantity: 80},
		{ID: "c3", Name: "Gold Embroidered Silk Blouse", StockQuantity: 100},
		{ID: "c4", Name: "Gold & Black Evening Clutch", StockQuantity: 120},
	}
}
