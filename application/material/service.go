// Package material manages the inventory catalogue and exposes the ledger.
package material

import (
	"context"
	"time"

	"workshop/application/txn"
	"workshop/domain/material"
	"workshop/domain/order"
	"workshop/domain/shared"
)

type CreateMaterialRequest struct {
	Type    string `json:"type" binding:"required"`
	Price   int64  `json:"price"`
	Balance int    `json:"balance"`
}

// UpdateMaterialRequest changes descriptive fields only. Stock moves through AdjustBalance.
type UpdateMaterialRequest struct {
	Type  *string `json:"type"`
	Price *int64  `json:"price"`
}

type MaterialResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Price     int64     `json:"price"`
	Currency  string    `json:"currency"`
	Balance   int       `json:"balance"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// orderUsageAdapter adapts order.Repository to material.UsageChecker.
type orderUsageAdapter struct {
	orders order.Repository
}

func (a orderUsageAdapter) IsMaterialInUse(ctx context.Context, materialID string) (bool, error) {
	return a.orders.IsMaterialReferenced(ctx, materialID)
}

type Service struct {
	materials material.Repository
	usage     material.UsageChecker
	runner    *txn.Runner
}

func NewService(materials material.Repository, orders order.Repository, factory shared.UnitOfWorkFactory, sink shared.DomainEventPublisher) *Service {
	return &Service{
		materials: materials,
		usage:     orderUsageAdapter{orders: orders},
		runner:    txn.NewRunner(factory, sink),
	}
}

func (s *Service) Create(ctx context.Context, req CreateMaterialRequest) (*MaterialResponse, error) {
	m, err := material.NewMaterial(req.Type, req.Price, req.Balance)
	if err != nil {
		return nil, err
	}
	err = s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		uow.RegisterNew(m)
		return s.materials.Save(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(m), nil
}

func (s *Service) Get(ctx context.Context, id string) (*MaterialResponse, error) {
	m, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(m), nil
}

func (s *Service) List(ctx context.Context) ([]*MaterialResponse, error) {
	all, err := s.materials.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*MaterialResponse, len(all))
	for i, m := range all {
		out[i] = toResponse(m)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateMaterialRequest) (*MaterialResponse, error) {
	var m *material.Material
	err := s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		var err error
		if m, err = s.materials.FindByID(ctx, id); err != nil {
			return err
		}
		if err := m.Update(req.Type, req.Price); err != nil {
			return err
		}
		uow.RegisterDirty(m)
		return s.materials.Save(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(m), nil
}

// Delete removes a material that no order line references.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		m, err := s.materials.FindByID(ctx, id)
		if err != nil {
			return err
		}
		inUse, err := s.usage.IsMaterialInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return material.NewMaterialInUseError(id)
		}
		if err := s.materials.Remove(ctx, id); err != nil {
			return err
		}
		m.MarkRemoved()
		uow.RegisterRemoved(m)
		return nil
	})
}

// AdjustBalance is direct ledger access for restocking and write-offs.
func (s *Service) AdjustBalance(ctx context.Context, id string, delta int) (*MaterialResponse, error) {
	var m *material.Material
	err := s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		var err error
		if m, err = s.materials.AdjustBalance(ctx, id, delta); err != nil {
			return err
		}
		m.BalanceAdjusted(delta)
		uow.RegisterDirty(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toResponse(m), nil
}

func toResponse(m *material.Material) *MaterialResponse {
	return &MaterialResponse{
		ID:        m.ID(),
		Type:      m.Type(),
		Price:     m.Price(),
		Currency:  m.UnitPrice().Currency(),
		Balance:   m.Balance(),
		CreatedAt: m.CreatedAt(),
	}
}
