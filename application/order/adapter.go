package order

import (
	"context"

	"workshop/domain/client"
	"workshop/domain/worker"
)

// clientCheckerAdapter adapts client.Repository to order.ClientChecker.
type clientCheckerAdapter struct {
	clients client.Repository
}

func (a clientCheckerAdapter) ClientExists(ctx context.Context, clientID string) (bool, error) {
	return a.clients.Exists(ctx, clientID)
}

type workerCheckerAdapter struct {
	workers worker.Repository
}

func (a workerCheckerAdapter) WorkerExists(ctx context.Context, workerID string) (bool, error) {
	return a.workers.Exists(ctx, workerID)
}
