package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"workshop/domain/client"
	"workshop/domain/provider"
	"workshop/domain/shared"
	"workshop/domain/worker"
)

type versioned interface {
	ID() string
	Version() int
	IncrementVersionForSave()
}

// putVersioned inserts dto when the id is unknown, otherwise replaces the row
// if the stored version still matches and bumps the aggregate's version.
func putVersioned[D any](rows map[string]D, agg versioned, dto D, storedVersion func(D) int, bump func(*D), entity string) error {
	stored, ok := rows[agg.ID()]
	if !ok {
		rows[agg.ID()] = dto
		return nil
	}
	if storedVersion(stored) != agg.Version() {
		return shared.NewConcurrentModificationError(entity, agg.ID())
	}
	bump(&dto)
	rows[agg.ID()] = dto
	agg.IncrementVersionForSave()
	return nil
}

// ============================================================================
// Clients
// ============================================================================

type ClientRepository struct {
	store *Store
}

func NewClientRepository(store *Store) *ClientRepository {
	return &ClientRepository{store: store}
}

func (r *ClientRepository) Save(ctx context.Context, c *client.Client) error {
	return r.store.with(ctx, func(t *tables) error {
		for id, other := range t.clients {
			if id == c.ID() {
				continue
			}
			if other.Username == c.Username() {
				return client.NewUsernameTakenError(c.Username())
			}
			if !c.Phone().IsZero() && other.Phone == c.Phone().Value() {
				return client.NewPhoneTakenError(c.Phone().Value())
			}
		}
		n := c.Name()
		dto := client.ReconstructionDTO{
			ID:             c.ID(),
			First:          n.First,
			Last:           n.Last,
			Middle:         n.Middle,
			Phone:          c.Phone().Value(),
			Email:          c.Email(),
			Username:       c.Username(),
			PasswordDigest: c.PasswordDigest(),
			RegisteredAt:   c.RegisteredAt(),
			Version:        c.Version(),
		}
		return putVersioned(t.clients, c, dto,
			func(d client.ReconstructionDTO) int { return d.Version },
			func(d *client.ReconstructionDTO) { d.Version++ },
			"client")
	})
}

func (r *ClientRepository) findOne(ctx context.Context, notFound func() error, match func(client.ReconstructionDTO) bool) (*client.Client, error) {
	var out *client.Client
	err := r.store.with(ctx, func(t *tables) error {
		for _, dto := range t.clients {
			if match(dto) {
				out = client.RebuildFromDTO(dto)
				return nil
			}
		}
		return notFound()
	})
	return out, err
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*client.Client, error) {
	return r.findOne(ctx, func() error { return client.NewClientNotFoundError(id) },
		func(d client.ReconstructionDTO) bool { return d.ID == id })
}

func (r *ClientRepository) FindByPhone(ctx context.Context, phone string) (*client.Client, error) {
	return r.findOne(ctx, func() error { return shared.NewNotFoundError("client", phone) },
		func(d client.ReconstructionDTO) bool { return phone != "" && d.Phone == phone })
}

func (r *ClientRepository) FindByUsername(ctx context.Context, username string) (*client.Client, error) {
	return r.findOne(ctx, func() error { return shared.NewNotFoundError("client", username) },
		func(d client.ReconstructionDTO) bool { return d.Username == username })
}

func (r *ClientRepository) FindAll(ctx context.Context) ([]*client.Client, error) {
	var out []*client.Client
	err := r.store.with(ctx, func(t *tables) error {
		dtos := slices.SortedFunc(maps.Values(t.clients), func(a, b client.ReconstructionDTO) int {
			return cmp.Or(cmp.Compare(a.Last, b.Last), cmp.Compare(a.First, b.First), cmp.Compare(a.ID, b.ID))
		})
		out = make([]*client.Client, len(dtos))
		for i, dto := range dtos {
			out[i] = client.RebuildFromDTO(dto)
		}
		return nil
	})
	return out, err
}

func (r *ClientRepository) Exists(ctx context.Context, id string) (bool, error) {
	found := false
	err := r.store.with(ctx, func(t *tables) error {
		_, found = t.clients[id]
		return nil
	})
	return found, err
}

func (r *ClientRepository) Remove(ctx context.Context, id string) error {
	return r.store.with(ctx, func(t *tables) error {
		if _, ok := t.clients[id]; !ok {
			return client.NewClientNotFoundError(id)
		}
		delete(t.clients, id)
		return nil
	})
}

// ============================================================================
// Workers
// ============================================================================

type WorkerRepository struct {
	store *Store
}

func NewWorkerRepository(store *Store) *WorkerRepository {
	return &WorkerRepository{store: store}
}

func (r *WorkerRepository) Save(ctx context.Context, w *worker.Worker) error {
	return r.store.with(ctx, func(t *tables) error {
		for id, other := range t.workers {
			if id == w.ID() {
				continue
			}
			if other.Username == w.Username() {
				return worker.NewUsernameTakenError(w.Username())
			}
			if !w.Phone().IsZero() && other.Phone == w.Phone().Value() {
				return worker.NewPhoneTakenError(w.Phone().Value())
			}
		}
		n := w.Name()
		dto := worker.ReconstructionDTO{
			ID:             w.ID(),
			First:          n.First,
			Last:           n.Last,
			Middle:         n.Middle,
			Phone:          w.Phone().Value(),
			Email:          w.Email(),
			Username:       w.Username(),
			PasswordDigest: w.PasswordDigest(),
			Position:       w.Position(),
			PassSeries:     w.PassSeries(),
			PassNumber:     w.PassNumber(),
			BornDate:       w.BornDate(),
			HiredAt:        w.HiredAt(),
			Version:        w.Version(),
		}
		return putVersioned(t.workers, w, dto,
			func(d worker.ReconstructionDTO) int { return d.Version },
			func(d *worker.ReconstructionDTO) { d.Version++ },
			"worker")
	})
}

func (r *WorkerRepository) findOne(ctx context.Context, notFound func() error, match func(worker.ReconstructionDTO) bool) (*worker.Worker, error) {
	var out *worker.Worker
	err := r.store.with(ctx, func(t *tables) error {
		for _, dto := range t.workers {
			if match(dto) {
				out = worker.RebuildFromDTO(dto)
				return nil
			}
		}
		return notFound()
	})
	return out, err
}

func (r *WorkerRepository) FindByID(ctx context.Context, id string) (*worker.Worker, error) {
	return r.findOne(ctx, func() error { return worker.NewWorkerNotFoundError(id) },
		func(d worker.ReconstructionDTO) bool { return d.ID == id })
}

func (r *WorkerRepository) FindByPhone(ctx context.Context, phone string) (*worker.Worker, error) {
	return r.findOne(ctx, func() error { return shared.NewNotFoundError("worker", phone) },
		func(d worker.ReconstructionDTO) bool { return phone != "" && d.Phone == phone })
}

func (r *WorkerRepository) FindByUsername(ctx context.Context, username string) (*worker.Worker, error) {
	return r.findOne(ctx, func() error { return shared.NewNotFoundError("worker", username) },
		func(d worker.ReconstructionDTO) bool { return d.Username == username })
}

func (r *WorkerRepository) FindAll(ctx context.Context) ([]*worker.Worker, error) {
	var out []*worker.Worker
	err := r.store.with(ctx, func(t *tables) error {
		dtos := slices.SortedFunc(maps.Values(t.workers), func(a, b worker.ReconstructionDTO) int {
			return cmp.Or(cmp.Compare(a.Last, b.Last), cmp.Compare(a.First, b.First), cmp.Compare(a.ID, b.ID))
		})
		out = make([]*worker.Worker, len(dtos))
		for i, dto := range dtos {
			out[i] = worker.RebuildFromDTO(dto)
		}
		return nil
	})
	return out, err
}

func (r *WorkerRepository) Exists(ctx context.Context, id string) (bool, error) {
	found := false
	err := r.store.with(ctx, func(t *tables) error {
		_, found = t.workers[id]
		return nil
	})
	return found, err
}

func (r *WorkerRepository) Remove(ctx context.Context, id string) error {
	return r.store.with(ctx, func(t *tables) error {
		if _, ok := t.workers[id]; !ok {
			return worker.NewWorkerNotFoundError(id)
		}
		delete(t.workers, id)
		return nil
	})
}

// ============================================================================
// Providers and their material links
// ============================================================================

type ProviderRepository struct {
	store *Store
}

func NewProviderRepository(store *Store) *ProviderRepository {
	return &ProviderRepository{store: store}
}

func (r *ProviderRepository) Save(ctx context.Context, p *provider.Provider) error {
	return r.store.with(ctx, func(t *tables) error {
		for id, other := range t.providers {
			if id != p.ID() && other.INN == p.INN() {
				return provider.NewINNTakenError(p.INN())
			}
		}
		dto := provider.ReconstructionDTO{
			ID:        p.ID(),
			Name:      p.Name(),
			INN:       p.INN(),
			Phone:     p.Phone().Value(),
			Email:     p.Email(),
			Address:   p.Address(),
			CreatedAt: p.CreatedAt(),
			Version:   p.Version(),
		}
		return putVersioned(t.providers, p, dto,
			func(d provider.ReconstructionDTO) int { return d.Version },
			func(d *provider.ReconstructionDTO) { d.Version++ },
			"provider")
	})
}

func (r *ProviderRepository) FindByID(ctx context.Context, id string) (*provider.Provider, error) {
	var out *provider.Provider
	err := r.store.with(ctx, func(t *tables) error {
		dto, ok := t.providers[id]
		if !ok {
			return provider.NewProviderNotFoundError(id)
		}
		out = provider.RebuildFromDTO(dto)
		return nil
	})
	return out, err
}

func (r *ProviderRepository) FindByINN(ctx context.Context, inn string) (*provider.Provider, error) {
	var out *provider.Provider
	err := r.store.with(ctx, func(t *tables) error {
		for _, dto := range t.providers {
			if dto.INN == inn {
				out = provider.RebuildFromDTO(dto)
				return nil
			}
		}
		return shared.NewNotFoundError("provider", inn)
	})
	return out, err
}

func (r *ProviderRepository) FindAll(ctx context.Context) ([]*provider.Provider, error) {
	var out []*provider.Provider
	err := r.store.with(ctx, func(t *tables) error {
		dtos := slices.SortedFunc(maps.Values(t.providers), func(a, b provider.ReconstructionDTO) int {
			return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
		})
		out = make([]*provider.Provider, len(dtos))
		for i, dto := range dtos {
			out[i] = provider.RebuildFromDTO(dto)
		}
		return nil
	})
	return out, err
}

func (r *ProviderRepository) Remove(ctx context.Context, id string) error {
	return r.store.with(ctx, func(t *tables) error {
		if _, ok := t.providers[id]; !ok {
			return provider.NewProviderNotFoundError(id)
		}
		for key, link := range t.links {
			if link.ProviderID == id {
				delete(t.links, key)
			}
		}
		delete(t.providers, id)
		return nil
	})
}

func linkKey(providerID, materialID string) string {
	return providerID + "/" + materialID
}

func (r *ProviderRepository) FindLink(ctx context.Context, providerID, materialID string) (*provider.MaterialLink, error) {
	var out *provider.MaterialLink
	err := r.store.with(ctx, func(t *tables) error {
		if link, ok := t.links[linkKey(providerID, materialID)]; ok {
			out = &link
		}
		return nil
	})
	return out, err
}

func (r *ProviderRepository) SaveLink(ctx context.Context, link provider.MaterialLink) error {
	return r.store.with(ctx, func(t *tables) error {
		key := linkKey(link.ProviderID, link.MaterialID)
		if _, ok := t.links[key]; ok {
			return shared.NewConflictError("provider", "material "+link.MaterialID+" already linked")
		}
		t.links[key] = link
		return nil
	})
}

func (r *ProviderRepository) RemoveLink(ctx context.Context, providerID, materialID string) error {
	return r.store.with(ctx, func(t *tables) error {
		key := linkKey(providerID, materialID)
		if _, ok := t.links[key]; !ok {
			return provider.NewLinkNotFoundError(providerID, materialID)
		}
		delete(t.links, key)
		return nil
	})
}

func (r *ProviderRepository) ListByProvider(ctx context.Context, providerID string) ([]provider.MaterialLink, error) {
	return r.listLinks(ctx, func(l provider.MaterialLink) bool { return l.ProviderID == providerID })
}

func (r *ProviderRepository) ListByMaterial(ctx context.Context, materialID string) ([]provider.MaterialLink, error) {
	return r.listLinks(ctx, func(l provider.MaterialLink) bool { return l.MaterialID == materialID })
}

func (r *ProviderRepository) listLinks(ctx context.Context, match func(provider.MaterialLink) bool) ([]provider.MaterialLink, error) {
	out := []provider.MaterialLink{}
	err := r.store.with(ctx, func(t *tables) error {
		for _, link := range t.links {
			if match(link) {
				out = append(out, link)
			}
		}
		slices.SortFunc(out, func(a, b provider.MaterialLink) int {
			return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
		})
		return nil
	})
	return out, err
}

var (
	_ client.Repository       = (*ClientRepository)(nil)
	_ worker.Repository       = (*WorkerRepository)(nil)
	_ provider.Repository     = (*ProviderRepository)(nil)
	_ provider.LinkRepository = (*ProviderRepository)(nil)
)
