package order

import (
	"context"
)

// ClientChecker and WorkerChecker break the dependency on the directory packages.
type ClientChecker interface {
	ClientExists(ctx context.Context, clientID string) (bool, error)
}

type WorkerChecker interface {
	WorkerExists(ctx context.Context, workerID string) (bool, error)
}

// DomainService validates order references. It reads through the checkers and never saves.
type DomainService struct {
	clients ClientChecker
	workers WorkerChecker
}

func NewDomainService(clients ClientChecker, workers WorkerChecker) *DomainService {
	return &DomainService{clients: clients, workers: workers}
}

// CheckReferences verifies the client and, when set, the worker exist.
func (s *DomainService) CheckReferences(ctx context.Context, clientID, workerID string) error {
	if clientID != "" {
		ok, err := s.clients.ClientExists(ctx, clientID)
		if err != nil {
			return err
		}
		if !ok {
			return NewReferenceNotFoundError("client", clientID)
		}
	}
	if workerID != "" {
		ok, err := s.workers.WorkerExists(ctx, workerID)
		if err != nil {
			return err
		}
		if !ok {
			return NewReferenceNotFoundError("worker", workerID)
		}
	}
	return nil
}
