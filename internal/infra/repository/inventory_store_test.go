package repository

import (
	"context"
	"testing"
	"time"

	"wholesale/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// =====================
// Mongo: 古いドキュメントの読み込み
// =====================

func decodeInventoryDoc(t *testing.T, doc bson.D) model.InventoryRecord {
	t.Helper()
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var d inventoryDoc
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d.toModel()
}

func TestInventoryDoc_ToModel(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	cases := []struct {
		name      string
		doc       bson.D
		wantStock int64
		wantName  string
		wantAt    time.Time
	}{
		{
			name:      "current",
			doc:       bson.D{{Key: "id", Value: "a"}, {Key: "name", Value: "Alpha"}, {Key: "stockQuantity", Value: int64(5)}, {Key: "updatedAt", Value: primitive.NewDateTimeFromTime(at)}},
			wantStock: 5, wantName: "Alpha", wantAt: at,
		},
		{
			name:      "int32 stock",
			doc:       bson.D{{Key: "id", Value: "a"}, {Key: "name", Value: "Alpha"}, {Key: "stockQuantity", Value: int32(9)}},
			wantStock: 9, wantName: "Alpha",
		},
		{
			name:      "string stock and ISO time",
			doc:       bson.D{{Key: "id", Value: "a"}, {Key: "name", Value: "Alpha"}, {Key: "stockQuantity", Value: "12"}, {Key: "updatedAt", Value: "2026-03-04T05:06:07Z"}},
			wantStock: 12, wantName: "Alpha", wantAt: at,
		},
		{
			name:      "non-numeric string",
			doc:       bson.D{{Key: "id", Value: "a"}, {Key: "name", Value: "Alpha"}, {Key: "stockQuantity", Value: "lots"}},
			wantStock: 0, wantName: "Alpha",
		},
		{
			name:      "negative",
			doc:       bson.D{{Key: "id", Value: "a"}, {Key: "name", Value: "Alpha"}, {Key: "stockQuantity", Value: int64(-3)}},
			wantStock: 0, wantName: "Alpha",
		},
		{
			name:      "fractional",
			doc:       bson.D{{Key: "id", Value: "a"}, {Key: "name", Value: "Alpha"}, {Key: "stockQuantity", Value: 2.7}},
			wantStock: 2, wantName: "Alpha",
		},
		{
			name:      "missing stock and name",
			doc:       bson.D{{Key: "id", Value: "a"}, {Key: "updatedAt", Value: "not a time"}},
			wantStock: 0, wantName: "a",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := decodeInventoryDoc(t, tc.doc)
			assert.Equal(t, "a", got.ID)
			assert.Equal(t, tc.wantName, got.Name)
			assert.Equal(t, tc.wantStock, got.StockQuantity)
			assert.True(t, tc.wantAt.Equal(got.UpdatedAt), "updatedAt %v", got.UpdatedAt)
		})
	}
}

func TestInventoryDoc_StoredInStockIsIgnored(t *testing.T) {
	got := decodeInventoryDoc(t, bson.D{
		{Key: "id", Value: "a"},
		{Key: "stockQuantity", Value: int64(0)},
		{Key: "inStock", Value: true},
	})
	assert.False(t, got.InStock())
}

// =====================
// Postgres: upsertのSQL
// =====================

func dryRunPostgres(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var statements []string
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capture_sql", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}))
	return db, &statements
}

func TestInventoryGormRepository_BulkUpsert_OnConflict(t *testing.T) {
	db, statements := dryRunPostgres(t)
	r := NewInventoryGormRepository(db)

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	err := r.BulkUpsert(context.Background(), []model.InventoryRecord{
		{ID: "a", Name: "Alpha", StockQuantity: 3, UpdatedAt: at},
		{ID: "b", Name: "Beta", StockQuantity: 0, UpdatedAt: at},
	})
	require.NoError(t, err)

	require.Len(t, *statements, 1)
	sql := (*statements)[0]
	assert.Contains(t, sql, `INSERT INTO "inventory"`)
	assert.Contains(t, sql, `ON CONFLICT ("id") DO UPDATE SET`)
	assert.Contains(t, sql, `"name"="excluded"."name"`)
	assert.Contains(t, sql, `"stock_quantity"="excluded"."stock_quantity"`)
	assert.Contains(t, sql, `"updated_at"="excluded"."updated_at"`)
}

func TestInventoryGormRepository_BulkUpsert_Empty(t *testing.T) {
	db, statements := dryRunPostgres(t)
	r := NewInventoryGormRepository(db)

	require.NoError(t, r.BulkUpsert(context.Background(), nil))
	assert.Empty(t, *statements)
}
