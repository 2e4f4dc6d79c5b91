package client

import (
	"fmt"

	"workshop/domain/shared"
)

var (
	ErrClientNotFound = fmt.Errorf("client %w", shared.ErrNotFound)

	ErrUsernameTaken = fmt.Errorf("username already taken: %w", shared.ErrConflict)

	ErrPhoneTaken = fmt.Errorf("phone already registered: %w", shared.ErrConflict)
)

func NewClientNotFoundError(id string) error {
	return shared.NewEntityError(ErrClientNotFound, "client", id, "client not found: "+id)
}

func NewUsernameTakenError(username string) error {
	return shared.NewEntityError(ErrUsernameTaken, "client", "", "username already taken: "+username)
}

func NewPhoneTakenError(phone string) error {
	return shared.NewEntityError(ErrPhoneTaken, "client", "", "phone already registered: "+phone)
}

// ErrClientHasOrders blocks deleting a client that still owns orders.
var ErrClientHasOrders = fmt.Errorf("client has orders: %w", shared.ErrConflict)

func NewClientHasOrdersError(id string) error {
	return shared.NewEntityError(ErrClientHasOrders, "client", id, "client "+id+" has orders and cannot be deleted")
}
