package worker

import "context"

type Repository interface {
	Save(ctx context.Context, w *Worker) error
	FindByID(ctx context.Context, id string) (*Worker, error)
	FindByPhone(ctx context.Context, phone string) (*Worker, error)
	FindByUsername(ctx context.Context, username string) (*Worker, error)
	FindAll(ctx context.Context) ([]*Worker, error)
	Exists(ctx context.Context, id string) (bool, error)
	Remove(ctx context.Context, id string) error
}
