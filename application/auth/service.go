// Package auth signs clients and workers in by phone and password.
package auth

import (
	"context"
	"errors"

	"workshop/domain/client"
	"workshop/domain/shared"
	"workshop/domain/worker"
	"workshop/pkg/logger"

	"go.uber.org/zap"
)

type Role string

const (
	RoleClient Role = "client"
	RoleWorker Role = "worker"
)

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type Identity struct {
	Role Role   `json:"role"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Service struct {
	clients client.Repository
	workers worker.Repository
	hasher  shared.PasswordHasher
}

func NewService(clients client.Repository, workers worker.Repository, hasher shared.PasswordHasher) *Service {
	return &Service{clients: clients, workers: workers, hasher: hasher}
}

// Login checks clients first, then workers. A phone registered for both
// signs in as whichever account the password matches.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Identity, error) {
	phone := shared.NormalizePhone(req.Phone)
	if phone == "" || req.Password == "" {
		return nil, shared.NewInvalidCredentialsError()
	}

	c, err := s.clients.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		if c.CheckPassword(req.Password, s.hasher) {
			return &Identity{Role: RoleClient, ID: c.ID(), Name: c.Name().Full()}, nil
		}
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	w, err := s.workers.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		if w.CheckPassword(req.Password, s.hasher) {
			return &Identity{Role: RoleWorker, ID: w.ID(), Name: w.Name().Full()}, nil
		}
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	logger.Ctx(ctx).Debug("login rejected", zap.String("phone", phone))
	return nil, shared.NewInvalidCredentialsError()
}
