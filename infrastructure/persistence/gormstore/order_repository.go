package gormstore

import (
	"context"
	"errors"

	"workshop/domain/order"
	"workshop/domain/shared"
	"workshop/infrastructure/persistence"
	"workshop/infrastructure/persistence/gormstore/po"
	"workshop/infrastructure/persistence/specification"

	"gorm.io/gorm"
)

// OrderRepository stores orders and their lines without GORM associations.
type OrderRepository struct {
	db         *gorm.DB
	translator *specification.OrderTranslator
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db, translator: specification.NewOrderTranslator()}
}

// Save writes the header with an optimistic version check and then applies
// the tracked line changes. Every save bumps the version, so two transactions
// that both resized lines of the same order cannot both commit.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, o)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, o)
	})
}

func (r *OrderRepository) saveWithTx(tx *gorm.DB, o *order.Order) error {
	header := po.FromOrderDomain(o)

	if o.IsNew() {
		if err := tx.Create(header).Error; err != nil {
			return err
		}
		if lines := o.Lines(); len(lines) > 0 {
			linePOs := make([]po.MatOnOrderPO, len(lines))
			for i, l := range lines {
				linePOs[i] = po.FromLineDomain(l)
			}
			if err := tx.Create(&linePOs).Error; err != nil {
				return mapLineError(err, o.ID())
			}
		}
		o.ClearDirtyTracking()
		return nil
	}

	result := tx.Model(&po.OrderPO{}).
		Where("id = ? AND version = ?", o.ID(), o.Version()).
		Updates(map[string]any{
			"client_id":   header.ClientID,
			"worker_id":   header.WorkerID,
			"prod_period": header.ProdPeriod,
			"status":      header.Status,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrentModificationError("order", o.ID())
	}

	for _, l := range o.RemovedLines() {
		if err := tx.Where("id = ?", l.ID()).Delete(&po.MatOnOrderPO{}).Error; err != nil {
			return err
		}
	}
	for _, l := range o.ResizedLines() {
		if err := tx.Model(&po.MatOnOrderPO{}).Where("id = ?", l.ID()).
			UpdateColumn("amount", l.Amount()).Error; err != nil {
			return err
		}
	}
	for _, l := range o.AddedLines() {
		if err := tx.Create(ptr(po.FromLineDomain(l))).Error; err != nil {
			return mapLineError(err, o.ID())
		}
	}

	o.IncrementVersionForSave()
	o.ClearDirtyTracking()
	return nil
}

// mapLineError turns the (order_id, material_id) unique violation into a
// domain conflict raised by a concurrent add.
func mapLineError(err error, orderID string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewEntityError(order.ErrDuplicateLine, "order", orderID, "material is already on order "+orderID)
	}
	return err
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	db := getDB(ctx, r.db)

	var header po.OrderPO
	if err := db.First(&header, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(id)
		}
		return nil, err
	}

	var lines []po.MatOnOrderPO
	if err := db.Where("order_id = ?", id).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return header.ToDomain(lines), nil
}

func (r *OrderRepository) FindByLineID(ctx context.Context, lineID string) (*order.Order, error) {
	var line po.MatOnOrderPO
	if err := getDB(ctx, r.db).First(&line, "id = ?", lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewLineNotFoundError(lineID)
		}
		return nil, err
	}
	return r.FindByID(ctx, line.OrderID)
}

// FindBySpecification pushes translatable specifications into SQL and
// filters the rest in memory.
func (r *OrderRepository) FindBySpecification(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	db := getDB(ctx, r.db)

	scope, translated := r.translator.Translate(spec)
	query := db.Model(&po.OrderPO{})
	if translated {
		query = query.Scopes(scope)
	}

	var headers []po.OrderPO
	if err := query.Order("date DESC").Order("id DESC").Find(&headers).Error; err != nil {
		return nil, err
	}

	orders, err := r.attachLines(db, headers)
	if err != nil {
		return nil, err
	}
	if !translated {
		orders = shared.Filter(ctx, orders, spec)
	}
	return orders, nil
}

// attachLines loads the lines of all headers in one query.
func (r *OrderRepository) attachLines(db *gorm.DB, headers []po.OrderPO) ([]*order.Order, error) {
	if len(headers) == 0 {
		return []*order.Order{}, nil
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}

	var lines []po.MatOnOrderPO
	if err := db.Where("order_id IN ?", ids).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	byOrder := make(map[string][]po.MatOnOrderPO, len(headers))
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}

	orders := make([]*order.Order, len(headers))
	for i := range headers {
		orders[i] = headers[i].ToDomain(byOrder[headers[i].ID])
	}
	return orders, nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[order.Status]int, error) {
	var rows []struct {
		Status string
		Total  int
	}
	if err := getDB(ctx, r.db).Model(&po.OrderPO{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[order.Status]int, len(order.AllStatuses))
	for _, st := range order.AllStatuses {
		counts[st] = 0
	}
	for _, row := range rows {
		counts[order.Status(row.Status)] = row.Total
	}
	return counts, nil
}

func (r *OrderRepository) IsMaterialReferenced(ctx context.Context, materialID string) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&po.MatOnOrderPO{}).
		Where("material_id = ?", materialID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// Remove deletes the header under a version check and then the lines, so a
// resize or add committed after o was loaded makes it fail.
func (r *OrderRepository) Remove(ctx context.Context, o *order.Order) error {
	db := getDB(ctx, r.db)
	result := db.Where("id = ? AND version = ?", o.ID(), o.Version()).Delete(&po.OrderPO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&po.OrderPO{}).Where("id = ?", o.ID()).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return order.NewOrderNotFoundError(o.ID())
		}
		return shared.NewConcurrentModificationError("order", o.ID())
	}
	return db.Where("order_id = ?", o.ID()).Delete(&po.MatOnOrderPO{}).Error
}

var _ order.Repository = (*OrderRepository)(nil)

func ptr[T any](v T) *T { return &v }
