package po

import (
	"time"

	"workshop/domain/order"
)

// OrderPO is the order header. Lines live in mat_on_order.
type OrderPO struct {
	ID         string    `gorm:"primaryKey;size:64"`
	ClientID   string    `gorm:"size:64;index;not null"`
	WorkerID   *string   `gorm:"size:64;index"`
	Date       time.Time `gorm:"not null;index"`
	ProdPeriod *int      `gorm:"column:prod_period"`
	Status     string    `gorm:"size:20;not null;index"`
	Version    int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (OrderPO) TableName() string {
	return "orders"
}

// MatOnOrderPO is one order line. A material appears at most once per order.
type MatOnOrderPO struct {
	ID         string `gorm:"primaryKey;size:64"`
	OrderID    string `gorm:"size:64;not null;uniqueIndex:idx_order_material"`
	MaterialID string `gorm:"size:64;not null;uniqueIndex:idx_order_material;index"`
	Amount     int    `gorm:"not null;check:amount > 0"`
}

func (MatOnOrderPO) TableName() string {
	return "mat_on_order"
}

func FromOrderDomain(o *order.Order) *OrderPO {
	p := &OrderPO{
		ID:       o.ID(),
		ClientID: o.ClientID(),
		Date:     o.Date(),
		Status:   o.Status().String(),
		Version:  o.Version(),
	}
	if o.HasWorker() {
		w := o.WorkerID()
		p.WorkerID = &w
	}
	if o.ProdPeriod() > 0 {
		d := o.ProdPeriod()
		p.ProdPeriod = &d
	}
	return p
}

func FromLineDomain(l order.Line) MatOnOrderPO {
	return MatOnOrderPO{
		ID:         l.ID(),
		OrderID:    l.OrderID(),
		MaterialID: l.MaterialID(),
		Amount:     l.Amount(),
	}
}

func (p *OrderPO) ToDomain(linePOs []MatOnOrderPO) *order.Order {
	lines := make([]order.Line, len(linePOs))
	for i, l := range linePOs {
		lines[i] = order.RebuildLineFromDTO(order.LineReconstructionDTO{
			ID:         l.ID,
			OrderID:    l.OrderID,
			MaterialID: l.MaterialID,
			Amount:     l.Amount,
		})
	}

	dto := order.ReconstructionDTO{
		ID:       p.ID,
		ClientID: p.ClientID,
		Date:     p.Date,
		Status:   order.Status(p.Status),
		Version:  p.Version,
		Lines:    lines,
	}
	if p.WorkerID != nil {
		dto.WorkerID = *p.WorkerID
	}
	if p.ProdPeriod != nil {
		dto.ProdPeriod = *p.ProdPeriod
	}
	return order.RebuildFromDTO(dto)
}
