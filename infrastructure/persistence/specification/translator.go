// Package specification turns domain specifications into GORM scopes.
package specification

import (
	"workshop/domain/order"
	"workshop/domain/shared"

	"gorm.io/gorm"
)

// Scope narrows a query.
type Scope = func(*gorm.DB) *gorm.DB

// OrderTranslator maps order specifications to WHERE clauses on the orders table.
type OrderTranslator struct{}

func NewOrderTranslator() *OrderTranslator {
	return &OrderTranslator{}
}

// Translate returns the scope for spec. ok is false when some part has no
// SQL form; callers then filter in memory with shared.Filter.
func (t *OrderTranslator) Translate(spec shared.Specification[*order.Order]) (scope Scope, ok bool) {
	if spec == nil {
		return func(db *gorm.DB) *gorm.DB { return db }, true
	}

	switch s := spec.(type) {
	case shared.AndSpecification[*order.Order]:
		scopes := make([]Scope, 0, len(s.Parts))
		for _, part := range s.Parts {
			sc, ok := t.Translate(part)
			if !ok {
				return nil, false
			}
			scopes = append(scopes, sc)
		}
		return func(db *gorm.DB) *gorm.DB { return db.Scopes(scopes...) }, true

	case shared.NotSpecification[*order.Order]:
		inner, ok := t.Translate(s.Spec)
		if !ok {
			return nil, false
		}
		return func(db *gorm.DB) *gorm.DB {
			return db.Not(inner(db.Session(&gorm.Session{NewDB: true})))
		}, true

	case order.ByClientSpecification:
		return func(db *gorm.DB) *gorm.DB { return db.Where("client_id = ?", s.ClientID) }, true

	case order.ByWorkerSpecification:
		return func(db *gorm.DB) *gorm.DB { return db.Where("worker_id = ?", s.WorkerID) }, true

	case order.ByStatusSpecification:
		return func(db *gorm.DB) *gorm.DB { return db.Where("status = ?", s.Status.String()) }, true

	case order.ByDateRangeSpecification:
		return func(db *gorm.DB) *gorm.DB {
			if !s.Start.IsZero() {
				db = db.Where("date >= ?", s.Start)
			}
			if !s.End.IsZero() {
				db = db.Where("date <= ?", s.End)
			}
			return db
		}, true
	}

	return nil, false
}
