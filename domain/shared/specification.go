package shared

import "context"

// Specification encapsulates a query rule over T.
// IsSatisfiedBy serves in-memory filtering; SQL repositories translate the
// concrete specification types instead.
type Specification[T any] interface {
	IsSatisfiedBy(ctx context.Context, entity T) bool
}

// AndSpecification is satisfied when every part is.
type AndSpecification[T any] struct {
	Parts []Specification[T]
}

func (spec AndSpecification[T]) IsSatisfiedBy(ctx context.Context, entity T) bool {
	for _, part := range spec.Parts {
		if !part.IsSatisfiedBy(ctx, entity) {
			return false
		}
	}
	return true
}

// And combines specifications; nil parts are dropped.
func And[T any](parts ...Specification[T]) Specification[T] {
	kept := make([]Specification[T], 0, len(parts))
	for _, p := range parts {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return AndSpecification[T]{Parts: kept}
}

type NotSpecification[T any] struct {
	Spec Specification[T]
}

func (spec NotSpecification[T]) IsSatisfiedBy(ctx context.Context, entity T) bool {
	return !spec.Spec.IsSatisfiedBy(ctx, entity)
}

func Not[T any](inner Specification[T]) Specification[T] {
	return NotSpecification[T]{Spec: inner}
}

// Filter applies spec to a slice; a nil spec keeps everything.
func Filter[T any](ctx context.Context, items []T, spec Specification[T]) []T {
	if spec == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if spec.IsSatisfiedBy(ctx, item) {
			out = append(out, item)
		}
	}
	return out
}
