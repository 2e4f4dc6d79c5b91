package order

import (
	"fmt"

	"workshop/domain/shared"
)

var (
	ErrOrderNotFound = fmt.Errorf("order %w", shared.ErrNotFound)

	ErrLineNotFound = fmt.Errorf("order line %w", shared.ErrNotFound)

	// ErrDuplicateLine is returned when a material is added twice to the same order.
	ErrDuplicateLine = fmt.Errorf("material already on order: %w", shared.ErrConflict)
)

func NewOrderNotFoundError(id string) error {
	return shared.NewEntityError(ErrOrderNotFound, "order", id, "order not found: "+id)
}

func NewLineNotFoundError(lineID string) error {
	return shared.NewEntityError(ErrLineNotFound, "order_line", lineID, "order line not found: "+lineID)
}

func NewDuplicateLineError(orderID, materialID string) error {
	return shared.NewEntityError(ErrDuplicateLine, "order", orderID,
		fmt.Sprintf("material %s is already on order %s", materialID, orderID))
}

// NewReferenceNotFoundError reports a client or worker that an order points to but does not exist.
func NewReferenceNotFoundError(entity, id string) error {
	return shared.NewNotFoundError(entity, id)
}
