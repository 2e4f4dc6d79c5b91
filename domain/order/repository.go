package order

import (
	"context"

	"workshop/domain/shared"
)

// Repository persists orders together with their lines.
// All methods join the transaction carried by ctx, if any.
type Repository interface {
	// Save inserts a new order or writes the header and tracked line changes
	// of an existing one. A stale version fails with a concurrent modification error.
	Save(ctx context.Context, o *Order) error

	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByLineID loads the order owning the given line.
	FindByLineID(ctx context.Context, lineID string) (*Order, error)

	// FindBySpecification lists orders newest first. A nil spec matches everything.
	FindBySpecification(ctx context.Context, spec shared.Specification[*Order]) ([]*Order, error)

	CountByStatus(ctx context.Context) (map[Status]int, error)

	// IsMaterialReferenced tells whether any line uses the material.
	IsMaterialReferenced(ctx context.Context, materialID string) (bool, error)

	// Remove deletes the order and its lines. The order must still carry the
	// stored version, otherwise it fails with a concurrent modification error.
	Remove(ctx context.Context, o *Order) error
}
