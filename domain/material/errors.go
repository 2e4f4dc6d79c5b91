package material

import (
	"fmt"

	"workshop/domain/shared"
)

var (
	ErrMaterialNotFound = fmt.Errorf("material %w", shared.ErrNotFound)

	ErrMaterialInUse = fmt.Errorf("material is referenced by order lines: %w", shared.ErrConflict)
)

// NewMaterialNotFoundError reports a missing material.
func NewMaterialNotFoundError(id string) error {
	return shared.NewEntityError(ErrMaterialNotFound, "material", id, "material not found: "+id)
}

func NewMaterialInUseError(id string) error {
	return shared.NewEntityError(ErrMaterialInUse, "material", id,
		"material "+id+" is used in orders and cannot be deleted")
}

// InsufficientBalanceError names the material and the shortfall.
type InsufficientBalanceError struct {
	MaterialID string
	Requested  int
	Available  int
	stack      []uintptr
}

// NewInsufficientBalanceError captures the stack at the point the shortage was detected.
func NewInsufficientBalanceError(materialID string, requested, available int) error {
	return &InsufficientBalanceError{
		MaterialID: materialID,
		Requested:  requested,
		Available:  available,
		stack:      shared.CaptureStack(3),
	}
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for material %s: requested %d, available %d",
		e.MaterialID, e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return shared.ErrInsufficientBalance }

func (e *InsufficientBalanceError) Stack() []string { return shared.FormatStack(e.stack) }

// Shortfall is how many units are missing.
func (e *InsufficientBalanceError) Shortfall() int { return e.Requested - e.Available }
