// Package client manages the client directory.
package client

import (
	"context"
	"errors"
	"time"

	"workshop/application/txn"
	"workshop/domain/client"
	"workshop/domain/order"
	"workshop/domain/shared"
)

type ClientRequest struct {
	First    string `json:"first" binding:"required"`
	Last     string `json:"last" binding:"required"`
	Middle   string `json:"middle"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Username string `json:"username" binding:"required"`
	// Password is required on registration and optional on update.
	Password string `json:"password"`
}

func (r ClientRequest) profile() client.Profile {
	return client.Profile{
		First:    r.First,
		Last:     r.Last,
		Middle:   r.Middle,
		Phone:    r.Phone,
		Email:    r.Email,
		Username: r.Username,
	}
}

type ClientResponse struct {
	ID           string    `json:"id"`
	First        string    `json:"first"`
	Last         string    `json:"last"`
	Middle       string    `json:"middle,omitempty"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Service struct {
	clients client.Repository
	orders  order.Repository
	hasher  shared.PasswordHasher
	runner  *txn.Runner
}

func NewService(clients client.Repository, orders order.Repository, hasher shared.PasswordHasher, factory shared.UnitOfWorkFactory, sink shared.DomainEventPublisher) *Service {
	return &Service{
		clients: clients,
		orders:  orders,
		hasher:  hasher,
		runner:  txn.NewRunner(factory, sink),
	}
}

func (s *Service) Register(ctx context.Context, req ClientRequest) (*ClientResponse, error) {
	c, err := client.NewClient(req.profile(), req.Password, s.hasher)
	if err != nil {
		return nil, err
	}
	err = s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		if err := s.ensureUnique(ctx, c); err != nil {
			return err
		}
		uow.RegisterNew(c)
		return s.clients.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// ensureUnique reports a taken username or phone before the unique index does.
func (s *Service) ensureUnique(ctx context.Context, c *client.Client) error {
	other, err := s.clients.FindByUsername(ctx, c.Username())
	if err == nil && other.ID() != c.ID() {
		return client.NewUsernameTakenError(c.Username())
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if c.Phone().IsZero() {
		return nil
	}
	other, err = s.clients.FindByPhone(ctx, c.Phone().Value())
	if err == nil && other.ID() != c.ID() {
		return client.NewPhoneTakenError(c.Phone().Value())
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*ClientResponse, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

func (s *Service) List(ctx context.Context) ([]*ClientResponse, error) {
	all, err := s.clients.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*ClientResponse, len(all))
	for i, c := range all {
		out[i] = toResponse(c)
	}
	return out, nil
}

// Update replaces the profile and, when a password is given, the password.
func (s *Service) Update(ctx context.Context, id string, req ClientRequest) (*ClientResponse, error) {
	var c *client.Client
	err := s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		var err error
		if c, err = s.clients.FindByID(ctx, id); err != nil {
			return err
		}
		if err := c.UpdateProfile(req.profile()); err != nil {
			return err
		}
		if req.Password != "" {
			if err := c.ChangePassword(req.Password, s.hasher); err != nil {
				return err
			}
		}
		if err := s.ensureUnique(ctx, c); err != nil {
			return err
		}
		uow.RegisterDirty(c)
		return s.clients.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// Delete removes a client that owns no orders.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		c, err := s.clients.FindByID(ctx, id)
		if err != nil {
			return err
		}
		owned, err := s.orders.FindBySpecification(ctx, order.ByClientSpecification{ClientID: id})
		if err != nil {
			return err
		}
		if len(owned) > 0 {
			return client.NewClientHasOrdersError(id)
		}
		if err := s.clients.Remove(ctx, id); err != nil {
			return err
		}
		c.MarkRemoved()
		uow.RegisterRemoved(c)
		return nil
	})
}

func toResponse(c *client.Client) *ClientResponse {
	n := c.Name()
	return &ClientResponse{
		ID:           c.ID(),
		First:        n.First,
		Last:         n.Last,
		Middle:       n.Middle,
		FullName:     n.Full(),
		Phone:        c.Phone().Value(),
		Email:        c.Email(),
		Username:     c.Username(),
		RegisteredAt: c.RegisteredAt(),
	}
}
