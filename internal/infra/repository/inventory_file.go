package repository

import (
	"context"
	"time"

	"wholesale/internal/domain/model"
	repo "wholesale/internal/repository"
)

// ファイル上の形。手で編集されることがあるので型はゆるく読む。
type inventoryFileDoc struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	StockQuantity interface{} `json:"stockQuantity"`
	InStock       interface{} `json:"inStock"`
	UpdatedAt     interface{} `json:"updatedAt,omitempty"`
}

func (d inventoryFileDoc) toModel() model.InventoryRecord {
	name := d.Name
	if name == "" {
		name = d.ID
	}
	return model.InventoryRecord{
		ID:            d.ID,
		Name:          name,
		StockQuantity: model.ParseStock(d.StockQuantity),
		UpdatedAt:     parseDocTime(d.UpdatedAt),
	}
}

func toInventoryFileDoc(r model.InventoryRecord) inventoryFileDoc {
	n := r.Normalized()
	doc := inventoryFileDoc{
		ID:            n.ID,
		Name:          n.Name,
		StockQuantity: n.StockQuantity,
		InStock:       n.InStock(),
	}
	if !n.UpdatedAt.IsZero() {
		doc.UpdatedAt = n.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return doc
}

// data/inventory.json を使う在庫ストア
type InventoryFileRepository struct {
	file *jsonFile[inventoryFileDoc]
}

func NewInventoryFileRepository(dataDir string) *InventoryFileRepository {
	return &InventoryFileRepository{file: newJSONFile[inventoryFileDoc](dataDir, "inventory.json")}
}

func (r *InventoryFileRepository) ReadAll(ctx context.Context) ([]model.InventoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return []model.InventoryRecord{}, err
	}

	docs, err := r.file.read()
	if err != nil {
		return []model.InventoryRecord{}, err
	}

	records := make([]model.InventoryRecord, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			continue
		}
		records = append(records, d.toModel())
	}
	return records, nil
}

// 既存の順番は保ったまま、新しいidは末尾に追加
func (r *InventoryFileRepository) BulkUpsert(ctx context.Context, records []model.InventoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	return r.file.update(func(docs []inventoryFileDoc) ([]inventoryFileDoc, error) {
		index := make(map[string]int, len(docs))
		for i, d := range docs {
			index[d.ID] = i
		}

		for _, rec := range records {
			doc := toInventoryFileDoc(rec)
			if i, ok := index[doc.ID]; ok {
				docs[i] = doc
				continue
			}
			index[doc.ID] = len(docs)
			docs = append(docs, doc)
		}
		return docs, nil
	})
}

func (r *InventoryFileRepository) FindByID(ctx context.Context, id string) (model.InventoryRecord, error) {
	records, err := r.ReadAll(ctx)
	if err != nil {
		return model.InventoryRecord{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return model.InventoryRecord{}, repo.ErrNotFound
}

func (r *InventoryFileRepository) DeleteExcept(ctx context.Context, ids []string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	var deleted int64
	err := r.file.update(func(docs []inventoryFileDoc) ([]inventoryFileDoc, error) {
		kept := make([]inventoryFileDoc, 0, len(docs))
		for _, d := range docs {
			if _, ok := keep[d.ID]; ok {
				kept = append(kept, d)
				continue
			}
			deleted++
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
