package worker

import (
	"fmt"

	"workshop/domain/shared"
)

var (
	ErrWorkerNotFound = fmt.Errorf("worker %w", shared.ErrNotFound)
	ErrUsernameTaken  = fmt.Errorf("username already taken: %w", shared.ErrConflict)
	ErrPhoneTaken     = fmt.Errorf("phone already registered: %w", shared.ErrConflict)

	// ErrWorkerAssigned blocks deleting a worker that orders still point to.
	ErrWorkerAssigned = fmt.Errorf("worker is assigned to orders: %w", shared.ErrConflict)
)

func NewWorkerNotFoundError(id string) error {
	return shared.NewEntityError(ErrWorkerNotFound, "worker", id, "worker not found: "+id)
}

func NewUsernameTakenError(username string) error {
	return shared.NewEntityError(ErrUsernameTaken, "worker", "", "username already taken: "+username)
}

func NewPhoneTakenError(phone string) error {
	return shared.NewEntityError(ErrPhoneTaken, "worker", "", "phone already registered: "+phone)
}

func NewWorkerAssignedError(id string) error {
	return shared.NewEntityError(ErrWorkerAssigned, "worker", id, "worker "+id+" is assigned to orders and cannot be deleted")
}
