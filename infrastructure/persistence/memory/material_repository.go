package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"workshop/domain/material"
)

type MaterialRepository struct {
	store *Store
}

func NewMaterialRepository(store *Store) *MaterialRepository {
	return &MaterialRepository{store: store}
}

func (r *MaterialRepository) Save(ctx context.Context, m *material.Material) error {
	return r.store.with(ctx, func(t *tables) error {
		if existing, ok := t.materials[m.ID()]; ok {
			existing.Type = m.Type()
			existing.Price = m.Price()
			t.materials[m.ID()] = existing
			return nil
		}
		t.materials[m.ID()] = material.ReconstructionDTO{
			ID:        m.ID(),
			Type:      m.Type(),
			Price:     m.Price(),
			Balance:   m.Balance(),
			CreatedAt: m.CreatedAt(),
		}
		return nil
	})
}

func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*material.Material, error) {
	var out *material.Material
	err := r.store.with(ctx, func(t *tables) error {
		dto, ok := t.materials[id]
		if !ok {
			return material.NewMaterialNotFoundError(id)
		}
		out = material.RebuildFromDTO(dto)
		return nil
	})
	return out, err
}

func (r *MaterialRepository) FindAll(ctx context.Context) ([]*material.Material, error) {
	var out []*material.Material
	err := r.store.with(ctx, func(t *tables) error {
		dtos := slices.SortedFunc(maps.Values(t.materials), func(a, b material.ReconstructionDTO) int {
			return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.ID, b.ID))
		})
		out = make([]*material.Material, len(dtos))
		for i, dto := range dtos {
			out[i] = material.RebuildFromDTO(dto)
		}
		return nil
	})
	return out, err
}

// AdjustBalance checks and applies delta under the store lock, the
// in-process equivalent of the conditional UPDATE.
func (r *MaterialRepository) AdjustBalance(ctx context.Context, id string, delta int) (*material.Material, error) {
	var out *material.Material
	err := r.store.with(ctx, func(t *tables) error {
		dto, ok := t.materials[id]
		if !ok {
			return material.NewMaterialNotFoundError(id)
		}
		if dto.Balance+delta < 0 {
			return material.NewInsufficientBalanceError(id, -delta, dto.Balance)
		}
		dto.Balance += delta
		t.materials[id] = dto
		out = material.RebuildFromDTO(dto)
		return nil
	})
	return out, err
}

// Remove deletes the material and its provider links.
func (r *MaterialRepository) Remove(ctx context.Context, id string) error {
	return r.store.with(ctx, func(t *tables) error {
		if _, ok := t.materials[id]; !ok {
			return material.NewMaterialNotFoundError(id)
		}
		for key, link := range t.links {
			if link.MaterialID == id {
				delete(t.links, key)
			}
		}
		delete(t.materials, id)
		return nil
	})
}

var _ material.Repository = (*MaterialRepository)(nil)
