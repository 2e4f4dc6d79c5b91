package material

import "context"

// Repository persists materials. All methods join the transaction carried by ctx, if any.
type Repository interface {
	// Save inserts a new material or updates type and price of an existing one.
	// It never writes the balance of an existing row.
	Save(ctx context.Context, m *Material) error

	FindByID(ctx context.Context, id string) (*Material, error)

	// FindAll lists materials ordered by type.
	FindAll(ctx context.Context) ([]*Material, error)

	// AdjustBalance applies delta with one conditional write
	// (balance = balance + delta WHERE balance + delta >= 0) and returns the new snapshot.
	// It fails with *InsufficientBalanceError or a not-found error and leaves the row untouched.
	AdjustBalance(ctx context.Context, id string, delta int) (*Material, error)

	Remove(ctx context.Context, id string) error
}

// UsageChecker tells whether order lines still reference a material.
// Implemented over the order repository to keep this package free of order imports.
type UsageChecker interface {
	IsMaterialInUse(ctx context.Context, materialID string) (bool, error)
}
