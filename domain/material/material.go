/*
Package material is the inventory ledger.

A Material has a non-negative on-hand balance. The balance is never written
back from an in-memory copy: it only moves through Repository.AdjustBalance,
which applies the delta as a single conditional update.
*/
package material

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"workshop/domain/shared"

	"github.com/google/uuid"
)

// Material aggregate root.
type Material struct {
	id        string
	typ       string
	price     int64
	balance   int
	createdAt time.Time

	shared.EventRecorder
}

// NewMaterial validates and creates a material with an initial balance.
func NewMaterial(typ string, price int64, balance int) (*Material, error) {
	typ = strings.TrimSpace(typ)
	if err := validateType(typ); err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, shared.NewValidationError("material", "price", "must be positive")
	}
	if balance < 0 {
		return nil, shared.NewValidationError("material", "balance", "cannot be negative")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate material ID: %w", err)
	}

	m := &Material{
		id:        id.String(),
		typ:       typ,
		price:     price,
		balance:   balance,
		createdAt: time.Now(),
	}
	m.Record(NewMaterialCreatedEvent(m))
	return m, nil
}

func validateType(typ string) error {
	if typ == "" {
		return shared.NewValidationError("material", "type", "cannot be empty")
	}
	if utf8.RuneCountInString(typ) > 100 {
		return shared.NewValidationError("material", "type", "must be at most 100 characters")
	}
	return nil
}

// Update changes descriptive fields. Nil arguments are left untouched.
func (m *Material) Update(typ *string, price *int64) error {
	if typ != nil {
		t := strings.TrimSpace(*typ)
		if err := validateType(t); err != nil {
			return err
		}
		m.typ = t
	}
	if price != nil {
		if *price <= 0 {
			return shared.NewValidationError("material", "price", "must be positive")
		}
		m.price = *price
	}
	m.Record(NewMaterialUpdatedEvent(m))
	return nil
}

// BalanceAdjusted records a ledger movement applied by the repository.
// m must be the snapshot returned by AdjustBalance.
func (m *Material) BalanceAdjusted(delta int) {
	m.Record(NewMaterialBalanceChangedEvent(m.id, delta, m.balance))
}

// MarkRemoved records the deletion.
func (m *Material) MarkRemoved() {
	m.Record(NewMaterialDeletedEvent(m.id))
}

// HasAtLeast reports whether the current snapshot covers amount.
func (m *Material) HasAtLeast(amount int) bool {
	return m.balance >= amount
}

func (m *Material) ID() string           { return m.id }
func (m *Material) Type() string         { return m.typ }
func (m *Material) Price() int64         { return m.price }
func (m *Material) Balance() int         { return m.balance }
func (m *Material) CreatedAt() time.Time { return m.createdAt }
func (m *Material) Version() int         { return 0 }

// UnitPrice returns the price as Money.
func (m *Material) UnitPrice() shared.Money {
	return *shared.NewMoney(m.price, shared.DefaultCurrency)
}

// ReconstructionDTO is used by repositories only.
type ReconstructionDTO struct {
	ID        string
	Type      string
	Price     int64
	Balance   int
	CreatedAt time.Time
}

// RebuildFromDTO rebuilds a Material from storage.
func RebuildFromDTO(dto ReconstructionDTO) *Material {
	return &Material{
		id:        dto.ID,
		typ:       dto.Type,
		price:     dto.Price,
		balance:   dto.Balance,
		createdAt: dto.CreatedAt,
	}
}

var _ shared.AggregateRoot = (*Material)(nil)
