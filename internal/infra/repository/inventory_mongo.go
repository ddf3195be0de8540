package repository

import (
	"context"
	"errors"
	"time"

	"wholesale/internal/domain/model"
	repo "wholesale/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 古いドキュメントはstockQuantityが文字列、updatedAtがISO文字列のことがある
type inventoryDoc struct {
	ID            string      `bson:"id"`
	Name          string      `bson:"name"`
	StockQuantity interface{} `bson:"stockQuantity"`
	UpdatedAt     interface{} `bson:"updatedAt"`
}

func (d inventoryDoc) toModel() model.InventoryRecord {
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

func parseDocTime(v interface{}) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case string:
		if tm, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return tm.UTC()
		}
	}
	return time.Time{}
}

type InventoryMongoRepository struct {
	collection *mongo.Collection
}

func NewInventoryMongoRepository(db *mongo.Database) *InventoryMongoRepository {
	return &InventoryMongoRepository{collection: db.Collection("inventory")}
}

func (r *InventoryMongoRepository) ReadAll(ctx context.Context) ([]model.InventoryRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return []model.InventoryRecord{}, err
	}

	var docs []inventoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
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

// inStockは外部の読み手のために導出値を書いておく
func (r *InventoryMongoRepository) BulkUpsert(ctx context.Context, records []model.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		n := rec.Normalized()
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": n.ID}).
			SetUpdate(bson.M{"$set": bson.M{
				"id":            n.ID,
				"name":          n.Name,
				"stockQuantity": n.StockQuantity,
				"inStock":       n.InStock(),
				"updatedAt":     n.UpdatedAt,
			}}).
			SetUpsert(true))
	}

	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *InventoryMongoRepository) FindByID(ctx context.Context, id string) (model.InventoryRecord, error) {
	var d inventoryDoc
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.InventoryRecord{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryRecord{}, err
	}
	return d.toModel(), nil
}

func (r *InventoryMongoRepository) DeleteExcept(ctx context.Context, ids []string) (int64, error) {
	if ids == nil {
		ids = []string{}
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"id": bson.M{"$nin": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
