/*
Package memory is a transactional in-process store for every repository.

A transaction holds the store lock for its whole duration, so transactions
are serializable and a failed one is rolled back from a snapshot taken at
Begin. Repository calls made outside a unit of work lock per call.
*/
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"workshop/domain/client"
	"workshop/domain/material"
	"workshop/domain/order"
	"workshop/domain/provider"
	"workshop/domain/worker"
)

type tables struct {
	materials map[string]material.ReconstructionDTO
	orders    map[string]order.ReconstructionDTO
	clients   map[string]client.ReconstructionDTO
	workers   map[string]worker.ReconstructionDTO
	providers map[string]provider.ReconstructionDTO
	links     map[string]provider.MaterialLink
}

func newTables() tables {
	return tables{
		materials: make(map[string]material.ReconstructionDTO),
		orders:    make(map[string]order.ReconstructionDTO),
		clients:   make(map[string]client.ReconstructionDTO),
		workers:   make(map[string]worker.ReconstructionDTO),
		providers: make(map[string]provider.ReconstructionDTO),
		links:     make(map[string]provider.MaterialLink),
	}
}

func (t tables) clone() tables {
	orders := make(map[string]order.ReconstructionDTO, len(t.orders))
	for id, dto := range t.orders {
		dto.Lines = slices.Clone(dto.Lines)
		orders[id] = dto
	}
	return tables{
		materials: maps.Clone(t.materials),
		orders:    orders,
		clients:   maps.Clone(t.clients),
		workers:   maps.Clone(t.workers),
		providers: maps.Clone(t.providers),
		links:     maps.Clone(t.links),
	}
}

// Store owns the data of all repositories created from it.
type Store struct {
	mu   sync.Mutex
	data tables
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

type txKey struct{}

// with runs fn against the live tables, joining the transaction in ctx when
// it belongs to this store.
func (s *Store) with(ctx context.Context, fn func(t *tables) error) error {
	if owner, ok := ctx.Value(txKey{}).(*Store); ok && owner == s {
		return fn(&s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

// begin locks the store and returns the context repositories use to join
// the transaction, plus the commit and rollback functions.
func (s *Store) begin(ctx context.Context) (context.Context, func(), func()) {
	s.mu.Lock()
	snapshot := s.data.clone()
	commit := func() { s.mu.Unlock() }
	rollback := func() {
		s.data = snapshot
		s.mu.Unlock()
	}
	return context.WithValue(ctx, txKey{}, s), commit, rollback
}
