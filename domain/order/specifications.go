package order

import (
	"context"
	"time"

	"workshop/domain/shared"
)

type ByClientSpecification struct {
	ClientID string
}

func (spec ByClientSpecification) IsSatisfiedBy(_ context.Context, o *Order) bool {
	return o.ClientID() == spec.ClientID
}

type ByWorkerSpecification struct {
	WorkerID string
}

func (spec ByWorkerSpecification) IsSatisfiedBy(_ context.Context, o *Order) bool {
	return o.WorkerID() == spec.WorkerID
}

type ByStatusSpecification struct {
	Status Status
}

func (spec ByStatusSpecification) IsSatisfiedBy(_ context.Context, o *Order) bool {
	return o.Status() == spec.Status
}

// ByDateRangeSpecification filters on the order date. Zero bounds are open.
type ByDateRangeSpecification struct {
	Start time.Time
	End   time.Time
}

func (spec ByDateRangeSpecification) IsSatisfiedBy(_ context.Context, o *Order) bool {
	d := o.Date()
	if !spec.Start.IsZero() && d.Before(spec.Start) {
		return false
	}
	if !spec.End.IsZero() && d.After(spec.End) {
		return false
	}
	return true
}

// Filter is the query shape accepted by the order listing.
type Filter struct {
	ClientID string
	WorkerID string
	Status   Status
	From     time.Time
	To       time.Time
}

// Specification builds the conjunction of the filter's non-empty fields.
func (f Filter) Specification() shared.Specification[*Order] {
	var parts []shared.Specification[*Order]
	if f.ClientID != "" {
		parts = append(parts, ByClientSpecification{ClientID: f.ClientID})
	}
	if f.WorkerID != "" {
		parts = append(parts, ByWorkerSpecification{WorkerID: f.WorkerID})
	}
	if f.Status != "" {
		parts = append(parts, ByStatusSpecification{Status: f.Status})
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		parts = append(parts, ByDateRangeSpecification{Start: f.From, End: f.To})
	}
	if len(parts) == 0 {
		return nil
	}
	return shared.And(parts...)
}
