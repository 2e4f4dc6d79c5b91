package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"workshop/domain/order"
	"workshop/domain/shared"
)

type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

// Save stores the whole aggregate. Updates are guarded by version like the
// SQL repository.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.store.with(ctx, func(t *tables) error {
		dto := toOrderDTO(o)
		if !o.IsNew() {
			stored, ok := t.orders[o.ID()]
			if !ok {
				return order.NewOrderNotFoundError(o.ID())
			}
			if stored.Version != o.Version() {
				return shared.NewConcurrentModificationError("order", o.ID())
			}
			dto.Version++
		}
		t.orders[o.ID()] = dto

		if !o.IsNew() {
			o.IncrementVersionForSave()
		}
		o.ClearDirtyTracking()
		return nil
	})
}

func toOrderDTO(o *order.Order) order.ReconstructionDTO {
	return order.ReconstructionDTO{
		ID:         o.ID(),
		ClientID:   o.ClientID(),
		WorkerID:   o.WorkerID(),
		Date:       o.Date(),
		ProdPeriod: o.ProdPeriod(),
		Status:     o.Status(),
		Version:    o.Version(),
		Lines:      o.Lines(),
	}
}

func rebuildOrder(dto order.ReconstructionDTO) *order.Order {
	dto.Lines = slices.Clone(dto.Lines)
	return order.RebuildFromDTO(dto)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var out *order.Order
	err := r.store.with(ctx, func(t *tables) error {
		dto, ok := t.orders[id]
		if !ok {
			return order.NewOrderNotFoundError(id)
		}
		out = rebuildOrder(dto)
		return nil
	})
	return out, err
}

func (r *OrderRepository) FindByLineID(ctx context.Context, lineID string) (*order.Order, error) {
	var out *order.Order
	err := r.store.with(ctx, func(t *tables) error {
		for _, dto := range t.orders {
			for _, l := range dto.Lines {
				if l.ID() == lineID {
					out = rebuildOrder(dto)
					return nil
				}
			}
		}
		return order.NewLineNotFoundError(lineID)
	})
	return out, err
}

func (r *OrderRepository) FindBySpecification(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	var out []*order.Order
	err := r.store.with(ctx, func(t *tables) error {
		dtos := slices.SortedFunc(maps.Values(t.orders), func(a, b order.ReconstructionDTO) int {
			return cmp.Or(b.Date.Compare(a.Date), cmp.Compare(b.ID, a.ID))
		})
		all := make([]*order.Order, len(dtos))
		for i, dto := range dtos {
			all[i] = rebuildOrder(dto)
		}
		out = shared.Filter(ctx, all, spec)
		return nil
	})
	return out, err
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[order.Status]int, error) {
	counts := make(map[order.Status]int, len(order.AllStatuses))
	for _, st := range order.AllStatuses {
		counts[st] = 0
	}
	err := r.store.with(ctx, func(t *tables) error {
		for _, dto := range t.orders {
			counts[dto.Status]++
		}
		return nil
	})
	return counts, err
}

func (r *OrderRepository) IsMaterialReferenced(ctx context.Context, materialID string) (bool, error) {
	found := false
	err := r.store.with(ctx, func(t *tables) error {
		for _, dto := range t.orders {
			for _, l := range dto.Lines {
				if l.MaterialID() == materialID {
					found = true
					return nil
				}
			}
		}
		return nil
	})
	return found, err
}

func (r *OrderRepository) Remove(ctx context.Context, o *order.Order) error {
	return r.store.with(ctx, func(t *tables) error {
		stored, ok := t.orders[o.ID()]
		if !ok {
			return order.NewOrderNotFoundError(o.ID())
		}
		if stored.Version != o.Version() {
			return shared.NewConcurrentModificationError("order", o.ID())
		}
		delete(t.orders, o.ID())
		return nil
	})
}

var _ order.Repository = (*OrderRepository)(nil)
