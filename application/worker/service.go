// Package worker manages staff records.
package worker

import (
	"context"
	"errors"
	"time"

	"workshop/application/txn"
	"workshop/domain/order"
	"workshop/domain/shared"
	"workshop/domain/worker"
)

type WorkerRequest struct {
	First      string     `json:"first" binding:"required"`
	Last       string     `json:"last"`
	Middle     string     `json:"middle"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	Username   string     `json:"username" binding:"required"`
	Password   string     `json:"password"`
	Position   string     `json:"position" binding:"required"`
	PassSeries string     `json:"pass_series"`
	PassNumber string     `json:"pass_number"`
	BornDate   *time.Time `json:"born_date"`
}

func (r WorkerRequest) profile() worker.Profile {
	p := worker.Profile{
		First:      r.First,
		Last:       r.Last,
		Middle:     r.Middle,
		Phone:      r.Phone,
		Email:      r.Email,
		Username:   r.Username,
		Position:   r.Position,
		PassSeries: r.PassSeries,
		PassNumber: r.PassNumber,
	}
	if r.BornDate != nil {
		p.BornDate = *r.BornDate
	}
	return p
}

// WorkerResponse omits passport data and the password digest.
type WorkerResponse struct {
	ID       string    `json:"id"`
	First    string    `json:"first"`
	Last     string    `json:"last,omitempty"`
	Middle   string    `json:"middle,omitempty"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone,omitempty"`
	Email    string    `json:"email,omitempty"`
	Username string    `json:"username"`
	Position string    `json:"position"`
	BornDate time.Time `json:"born_date,omitzero"`
	HiredAt  time.Time `json:"hired_at"`
}

type Service struct {
	workers worker.Repository
	orders  order.Repository
	hasher  shared.PasswordHasher
	runner  *txn.Runner
}

func NewService(workers worker.Repository, orders order.Repository, hasher shared.PasswordHasher, factory shared.UnitOfWorkFactory, sink shared.DomainEventPublisher) *Service {
	return &Service{
		workers: workers,
		orders:  orders,
		hasher:  hasher,
		runner:  txn.NewRunner(factory, sink),
	}
}

func (s *Service) Hire(ctx context.Context, req WorkerRequest) (*WorkerResponse, error) {
	w, err := worker.NewWorker(req.profile(), req.Password, s.hasher)
	if err != nil {
		return nil, err
	}
	err = s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		if err := s.ensureUnique(ctx, w); err != nil {
			return err
		}
		uow.RegisterNew(w)
		return s.workers.Save(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(w), nil
}

func (s *Service) ensureUnique(ctx context.Context, w *worker.Worker) error {
	other, err := s.workers.FindByUsername(ctx, w.Username())
	switch {
	case err == nil && other.ID() != w.ID():
		return worker.NewUsernameTakenError(w.Username())
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return err
	}
	if w.Phone().IsZero() {
		return nil
	}
	other, err = s.workers.FindByPhone(ctx, w.Phone().Value())
	switch {
	case err == nil && other.ID() != w.ID():
		return worker.NewPhoneTakenError(w.Phone().Value())
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*WorkerResponse, error) {
	w, err := s.workers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(w), nil
}

func (s *Service) List(ctx context.Context) ([]*WorkerResponse, error) {
	all, err := s.workers.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*WorkerResponse, len(all))
	for i, w := range all {
		out[i] = toResponse(w)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, req WorkerRequest) (*WorkerResponse, error) {
	var w *worker.Worker
	err := s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		var err error
		if w, err = s.workers.FindByID(ctx, id); err != nil {
			return err
		}
		if err := w.UpdateProfile(req.profile()); err != nil {
			return err
		}
		if req.Password != "" {
			if err := w.ChangePassword(req.Password, s.hasher); err != nil {
				return err
			}
		}
		if err := s.ensureUnique(ctx, w); err != nil {
			return err
		}
		uow.RegisterDirty(w)
		return s.workers.Save(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(w), nil
}

// Delete removes a worker no order is assigned to.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		w, err := s.workers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		assigned, err := s.orders.FindBySpecification(ctx, order.ByWorkerSpecification{WorkerID: id})
		if err != nil {
			return err
		}
		if len(assigned) > 0 {
			return worker.NewWorkerAssignedError(id)
		}
		if err := s.workers.Remove(ctx, id); err != nil {
			return err
		}
		w.MarkRemoved()
		uow.RegisterRemoved(w)
		return nil
	})
}

func toResponse(w *worker.Worker) *WorkerResponse {
	n := w.Name()
	return &WorkerResponse{
		ID:       w.ID(),
		First:    n.First,
		Last:     n.Last,
		Middle:   n.Middle,
		FullName: n.Full(),
		Phone:    w.Phone().Value(),
		Email:    w.Email(),
		Username: w.Username(),
		Position: w.Position(),
		BornDate: w.BornDate(),
		HiredAt:  w.HiredAt(),
	}
}
