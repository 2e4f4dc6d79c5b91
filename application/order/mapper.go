package order

import (
	"context"
	"errors"
	"fmt"

	"workshop/domain/material"
	"workshop/domain/order"
	"workshop/domain/shared"
)

// materializer resolves display data for orders. Materials are cached for
// the lifetime of one call so listings do not reload the same row.
type materializer struct {
	s         *Service
	materials map[string]*material.Material
	names     map[string]string
}

func (s *Service) newMaterializer() *materializer {
	return &materializer{
		s:         s,
		materials: make(map[string]*material.Material),
		names:     make(map[string]string),
	}
}

// remember seeds the cache with snapshots already loaded by a command.
func (mz *materializer) remember(m *material.Material) {
	if m != nil {
		mz.materials[m.ID()] = m
	}
}

func (mz *materializer) material(ctx context.Context, id string) (*material.Material, error) {
	if m, ok := mz.materials[id]; ok {
		return m, nil
	}
	m, err := mz.s.materials.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		mz.materials[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	mz.materials[id] = m
	return m, nil
}

func (mz *materializer) clientName(ctx context.Context, id string) (string, error) {
	key := "client/" + id
	if name, ok := mz.names[key]; ok {
		return name, nil
	}
	c, err := mz.s.clients.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	mz.names[key] = c.Name().Full()
	return mz.names[key], nil
}

func (mz *materializer) workerName(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	key := "worker/" + id
	if name, ok := mz.names[key]; ok {
		return name, nil
	}
	w, err := mz.s.workers.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	mz.names[key] = w.Name().Full()
	return mz.names[key], nil
}

func (mz *materializer) line(ctx context.Context, l order.Line) (LineResponse, shared.Money, error) {
	resp := LineResponse{
		ID:         l.ID(),
		OrderID:    l.OrderID(),
		MaterialID: l.MaterialID(),
		Amount:     l.Amount(),
	}
	unit := *shared.NewMoney(0, shared.DefaultCurrency)

	m, err := mz.material(ctx, l.MaterialID())
	if err != nil {
		return LineResponse{}, shared.Money{}, err
	}
	if m != nil {
		resp.MaterialType = m.Type()
		unit = m.UnitPrice()
	}

	subtotal, err := unit.Multiply(l.Amount())
	if err != nil {
		return LineResponse{}, shared.Money{}, fmt.Errorf("line %s: %w", l.ID(), err)
	}
	resp.UnitPrice = toMoneyResponse(unit)
	resp.Subtotal = toMoneyResponse(*subtotal)
	return resp, *subtotal, nil
}

func (mz *materializer) order(ctx context.Context, o *order.Order) (*OrderResponse, error) {
	clientName, err := mz.clientName(ctx, o.ClientID())
	if err != nil {
		return nil, err
	}
	workerName, err := mz.workerName(ctx, o.WorkerID())
	if err != nil {
		return nil, err
	}

	lines := o.Lines()
	resp := &OrderResponse{
		ID:         o.ID(),
		ClientID:   o.ClientID(),
		ClientName: clientName,
		WorkerID:   o.WorkerID(),
		WorkerName: workerName,
		Date:       o.Date(),
		ProdPeriod: o.ProdPeriod(),
		Status:     o.Status().String(),
		Lines:      make([]LineResponse, 0, len(lines)),
		Version:    o.Version(),
	}

	total := shared.NewMoney(0, shared.DefaultCurrency)
	for _, l := range lines {
		lr, subtotal, err := mz.line(ctx, l)
		if err != nil {
			return nil, err
		}
		resp.Lines = append(resp.Lines, lr)
		if total, err = total.Add(subtotal); err != nil {
			return nil, fmt.Errorf("order %s total: %w", o.ID(), err)
		}
	}
	resp.Total = toMoneyResponse(*total)
	return resp, nil
}

func toMoneyResponse(m shared.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount(), Currency: m.Currency()}
}
