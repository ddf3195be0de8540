package repository

import (
	"context"
	"errors"

	"wholesale/internal/domain/model"
	repo "wholesale/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫を全件取得
func (r *InventoryGormRepository) ReadAll(ctx context.Context) ([]model.InventoryRecord, error) {
	var records []model.InventoryRecord
	if err := r.db.WithContext(ctx).Order("id asc").Find(&records).Error; err != nil {
		return []model.InventoryRecord{}, err
	}
	return records, nil
}

// idが衝突したらname/stock/updated_atを上書き
func (r *InventoryGormRepository) BulkUpsert(ctx context.Context, records []model.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "stock_quantity", "updated_at"}),
		}).
		Create(&records).Error
}

func (r *InventoryGormRepository) FindByID(ctx context.Context, id string) (model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryRecord{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryRecord{}, err
	}
	return rec, nil
}

// カタログにないidを削除
func (r *InventoryGormRepository) DeleteExcept(ctx context.Context, ids []string) (int64, error) {
	tx := r.db.WithContext(ctx)

	var res *gorm.DB
	if len(ids) == 0 {
		res = tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.InventoryRecord{})
	} else {
		res = tx.Where("id NOT IN ?", ids).Delete(&model.InventoryRecord{})
	}
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
