package gormstore

import (
	"context"
	"errors"

	"workshop/domain/material"
	"workshop/infrastructure/persistence/gormstore/po"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaterialRepository is the inventory ledger on GORM.
type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Save inserts new materials and updates type and price of existing ones.
// The balance column is only written on insert.
func (r *MaterialRepository) Save(ctx context.Context, m *material.Material) error {
	db := getDB(ctx, r.db)
	p := po.FromMaterialDomain(m)

	var count int64
	if err := db.Model(&po.MaterialPO{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return db.Create(p).Error
	}
	return db.Model(&po.MaterialPO{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{"type": p.Type, "price": p.Price}).Error
}

func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*material.Material, error) {
	var p po.MaterialPO
	if err := getDB(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, material.NewMaterialNotFoundError(id)
		}
		return nil, err
	}
	return p.ToDomain(), nil
}

func (r *MaterialRepository) FindAll(ctx context.Context) ([]*material.Material, error) {
	var pos []po.MaterialPO
	if err := getDB(ctx, r.db).Order("type ASC").Order("id ASC").Find(&pos).Error; err != nil {
		return nil, err
	}
	out := make([]*material.Material, len(pos))
	for i := range pos {
		out[i] = pos[i].ToDomain()
	}
	return out, nil
}

// AdjustBalance issues
//
//	UPDATE materials SET balance = balance + ? WHERE id = ? AND balance + ? >= 0
//
// and re-reads the row. When no row matched, the re-read tells a missing
// material from a shortage.
func (r *MaterialRepository) AdjustBalance(ctx context.Context, id string, delta int) (*material.Material, error) {
	db := getDB(ctx, r.db)

	// MySQL reports zero affected rows for a no-op update.
	if delta == 0 {
		return r.FindByID(ctx, id)
	}

	result := db.Model(&po.MaterialPO{}).
		Where("id = ? AND balance + ? >= 0", id, delta).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected > 0 {
		return r.FindByID(ctx, id)
	}

	// A plain read may come from a snapshot older than the update that just
	// lost the race; the locking read sees the committed balance.
	var p po.MaterialPO
	err := db.Clauses(clause.Locking{Strength: "SHARE"}).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, material.NewMaterialNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	return nil, material.NewInsufficientBalanceError(id, -delta, p.Balance)
}

// Remove deletes the material and its provider links. A line added after the
// caller's usage check trips the mat_on_order foreign key, reported as in use.
func (r *MaterialRepository) Remove(ctx context.Context, id string) error {
	db := getDB(ctx, r.db)
	if err := db.Where("material_id = ?", id).Delete(&po.MatProviderPO{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ?", id).Delete(&po.MaterialPO{})
	if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
		return material.NewMaterialInUseError(id)
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return material.NewMaterialNotFoundError(id)
	}
	return nil
}

var _ material.Repository = (*MaterialRepository)(nil)
