/*
Package order orchestrates the order workflow.

Every command runs in one unit of work: reference checks, line changes and
the matching ledger movements commit or roll back together. Stock is only
moved through material.Repository.AdjustBalance, whose conditional write is
the single authority on availability; the balance check done before it only
produces a friendlier error for the common case.
*/
package order

import (
	"context"

	"workshop/application/txn"
	"workshop/domain/client"
	"workshop/domain/material"
	"workshop/domain/order"
	"workshop/domain/shared"
	"workshop/domain/worker"
)

// Policy holds the configurable workflow behavior.
type Policy struct {
	// RestoreStockOnDelete returns every line's amount to stock when an order is deleted.
	RestoreStockOnDelete bool
}

type Repositories struct {
	Orders    order.Repository
	Materials material.Repository
	Clients   client.Repository
	Workers   worker.Repository
}

// UseCase is the workflow surface consumed by the HTTP layer.
type UseCase interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error)
	AddMaterialToOrder(ctx context.Context, orderID, materialID string, amount int) (*LineResponse, error)
	UpdateMaterialAmount(ctx context.Context, lineID string, newAmount int) (*LineResponse, error)
	RemoveMaterialFromOrder(ctx context.Context, lineID string) error
	UpdateOrder(ctx context.Context, orderID string, req UpdateOrderRequest) (*OrderResponse, error)
	DeleteOrder(ctx context.Context, orderID string) error

	GetOrder(ctx context.Context, orderID string) (*OrderResponse, error)
	ListOrders(ctx context.Context, q ListOrdersQuery) ([]*OrderResponse, error)
	ClientOrders(ctx context.Context, clientID string) ([]*OrderResponse, error)
	WorkerOrders(ctx context.Context, workerID string) ([]*OrderResponse, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type Service struct {
	orders    order.Repository
	materials material.Repository
	clients   client.Repository
	workers   worker.Repository
	refs      *order.DomainService
	runner    *txn.Runner
	policy    Policy
}

func NewService(repos Repositories, factory shared.UnitOfWorkFactory, sink shared.DomainEventPublisher, policy Policy) *Service {
	return &Service{
		orders:    repos.Orders,
		materials: repos.Materials,
		clients:   repos.Clients,
		workers:   repos.Workers,
		refs: order.NewDomainService(
			clientCheckerAdapter{clients: repos.Clients},
			workerCheckerAdapter{workers: repos.Workers},
		),
		runner: txn.NewRunner(factory, sink),
		policy: policy,
	}
}

var _ UseCase = (*Service)(nil)

// ============================================================================
// Commands
// ============================================================================

func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	if req.ClientID == "" {
		return nil, shared.NewValidationError("order", "client_id", "is required")
	}
	if req.ProdPeriod != nil && *req.ProdPeriod <= 0 {
		return nil, shared.NewValidationError("order", "prod_period", "must be positive")
	}
	seen := make(map[string]bool, len(req.Lines))
	for _, l := range req.Lines {
		if l.Amount <= 0 {
			return nil, shared.NewInvalidAmountError(l.MaterialID, l.Amount)
		}
		if seen[l.MaterialID] {
			return nil, shared.NewValidationError("order", "lines", "material "+l.MaterialID+" is listed more than once")
		}
		seen[l.MaterialID] = true
	}

	params := order.CreateParams{ClientID: req.ClientID, WorkerID: req.WorkerID}
	if req.ProdPeriod != nil {
		params.ProdPeriod = *req.ProdPeriod
	}
	if req.Date != nil {
		params.Date = *req.Date
	}

	var (
		o        *order.Order
		adjusted []*material.Material
	)
	err := s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		adjusted = adjusted[:0]
		if err := s.refs.CheckReferences(ctx, req.ClientID, req.WorkerID); err != nil {
			return err
		}

		var err error
		o, err = order.NewOrder(params)
		if err != nil {
			return err
		}
		uow.RegisterNew(o)

		for _, l := range req.Lines {
			m, err := s.materials.FindByID(ctx, l.MaterialID)
			if err != nil {
				return err
			}
			if !m.HasAtLeast(l.Amount) {
				return material.NewInsufficientBalanceError(m.ID(), l.Amount, m.Balance())
			}
			if _, err := o.AddLine(m.ID(), l.Amount); err != nil {
				return err
			}
			after, err := s.withdraw(ctx, uow, m.ID(), l.Amount)
			if err != nil {
				return err
			}
			adjusted = append(adjusted, after)
		}

		return s.orders.Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	mz := s.newMaterializer()
	for _, m := range adjusted {
		mz.remember(m)
	}
	return mz.order(ctx, o)
}

func (s *Service) AddMaterialToOrder(ctx context.Context, orderID, materialID string, amount int) (*LineResponse, error) {
	if amount <= 0 {
		return nil, shared.NewInvalidAmountError(materialID, amount)
	}

	var (
		line  order.Line
		after *material.Material
	)
	err := s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		uow.RegisterDirty(o)
		if _, err := s.materials.FindByID(ctx, materialID); err != nil {
			return err
		}
		if line, err = o.AddLine(materialID, amount); err != nil {
			return err
		}
		if after, err = s.withdraw(ctx, uow, materialID, amount); err != nil {
			return err
		}
		return s.orders.Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	mz := s.newMaterializer()
	mz.remember(after)
	resp, _, err := mz.line(ctx, line)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateMaterialAmount resizes a line and moves the difference through the ledger.
// An unchanged amount touches nothing and returns the current line.
func (s *Service) UpdateMaterialAmount(ctx context.Context, lineID string, newAmount int) (*LineResponse, error) {
	var (
		line order.Line
		m    *material.Material
	)
	err := s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		o, err := s.orders.FindByLineID(ctx, lineID)
		if err != nil {
			return err
		}
		uow.RegisterDirty(o)
		delta, err := o.ResizeLine(lineID, newAmount)
		if err != nil {
			return err
		}
		line, _ = o.Line(lineID)

		if delta == 0 {
			m, err = s.materials.FindByID(ctx, line.MaterialID())
			return err
		}
		if m, err = s.adjust(ctx, uow, line.MaterialID(), -delta); err != nil {
			return err
		}
		return s.orders.Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	mz := s.newMaterializer()
	mz.remember(m)
	resp, _, err := mz.line(ctx, line)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveMaterialFromOrder deletes a line and returns its amount to stock.
func (s *Service) RemoveMaterialFromOrder(ctx context.Context, lineID string) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		o, err := s.orders.FindByLineID(ctx, lineID)
		if err != nil {
			return err
		}
		uow.RegisterDirty(o)
		line, err := o.RemoveLine(lineID)
		if err != nil {
			return err
		}
		if _, err := s.adjust(ctx, uow, line.MaterialID(), line.Amount()); err != nil {
			return err
		}
		return s.orders.Save(ctx, o)
	})
}

func (s *Service) UpdateOrder(ctx context.Context, orderID string, req UpdateOrderRequest) (*OrderResponse, error) {
	params := order.UpdateParams{
		ClientID:   req.ClientID,
		ProdPeriod: req.ProdPeriod,
	}
	if req.Status != nil {
		st, err := order.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		params.Status = &st
	}
	if req.ProdPeriod != nil && *req.ProdPeriod <= 0 {
		return nil, shared.NewValidationError("order", "prod_period", "must be positive")
	}
	switch {
	case req.ClearWorker:
		params.WorkerID = ptr("")
	case req.WorkerID != nil:
		params.WorkerID = req.WorkerID
	}

	var o *order.Order
	err := s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		var err error
		if o, err = s.orders.FindByID(ctx, orderID); err != nil {
			return err
		}

		var clientID, workerID string
		if params.ClientID != nil {
			clientID = *params.ClientID
		}
		if params.WorkerID != nil {
			workerID = *params.WorkerID
		}
		if err := s.refs.CheckReferences(ctx, clientID, workerID); err != nil {
			return err
		}

		if _, err := o.Update(params); err != nil {
			return err
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.newMaterializer().order(ctx, o)
}

// DeleteOrder removes the order with its lines. Stock goes back only when
// the policy says so.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		uow.RegisterRemoved(o)
		if s.policy.RestoreStockOnDelete {
			for _, l := range o.Lines() {
				if _, err := s.adjust(ctx, uow, l.MaterialID(), l.Amount()); err != nil {
					return err
				}
			}
		}
		if err := s.orders.Remove(ctx, o); err != nil {
			return err
		}
		o.MarkRemoved()
		return nil
	})
}

func (s *Service) withdraw(ctx context.Context, uow shared.UnitOfWork, materialID string, amount int) (*material.Material, error) {
	return s.adjust(ctx, uow, materialID, -amount)
}

// adjust applies a ledger movement and registers the resulting snapshot so
// its material_balance_changed event is dispatched with the rest.
func (s *Service) adjust(ctx context.Context, uow shared.UnitOfWork, materialID string, delta int) (*material.Material, error) {
	m, err := s.materials.AdjustBalance(ctx, materialID, delta)
	if err != nil {
		return nil, err
	}
	m.BalanceAdjusted(delta)
	uow.RegisterDirty(m)
	return m, nil
}

// ============================================================================
// Queries
// ============================================================================

func (s *Service) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.newMaterializer().order(ctx, o)
}

// ListOrders returns matching orders newest first.
func (s *Service) ListOrders(ctx context.Context, q ListOrdersQuery) ([]*OrderResponse, error) {
	filter := order.Filter{
		ClientID: q.ClientID,
		WorkerID: q.WorkerID,
		From:     q.From,
		To:       q.To,
	}
	if q.Status != "" {
		st, err := order.ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, shared.NewValidationError("order", "date", "range end is before its start")
	}

	orders, err := s.orders.FindBySpecification(ctx, filter.Specification())
	if err != nil {
		return nil, err
	}

	mz := s.newMaterializer()
	out := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp, err := mz.order(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *Service) ClientOrders(ctx context.Context, clientID string) ([]*OrderResponse, error) {
	return s.ListOrders(ctx, ListOrdersQuery{ClientID: clientID})
}

func (s *Service) WorkerOrders(ctx context.Context, workerID string) ([]*OrderResponse, error) {
	return s.ListOrders(ctx, ListOrdersQuery{WorkerID: workerID})
}

// CountByStatus reports every status, including those with no orders.
func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(counts))
	for st, n := range counts {
		out[st.String()] = n
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }
