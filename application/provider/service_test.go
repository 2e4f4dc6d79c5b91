package provider

import (
	"context"
	"testing"

	"workshop/domain/material"
	"workshop/domain/provider"
	"workshop/domain/shared"
	"workshop/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namesSink struct {
	names []string
}

func (s *namesSink) Publish(event shared.DomainEvent) error {
	s.names = append(s.names, event.EventName())
	return nil
}

func (s *namesSink) Subscribe(string, shared.EventHandler) error   { return nil }
func (s *namesSink) Unsubscribe(string, shared.EventHandler) error { return nil }

type fixture struct {
	svc   *Service
	sink  *namesSink
	store *memory.Store
	gold  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	materials := memory.NewMaterialRepository(store)
	m, err := material.NewMaterial("gold 585", 4200, 5)
	require.NoError(t, err)
	require.NoError(t, materials.Save(context.Background(), m))

	sink := &namesSink{}
	svc := NewService(memory.NewProviderRepository(store), materials, memory.NewUnitOfWorkFactory(store), sink)
	return &fixture{svc: svc, sink: sink, store: store, gold: m.ID()}
}

func TestService_CreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, ProviderRequest{Name: "Uralzoloto", INN: "6658123456", Phone: "+79120001122"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, ProviderRequest{Name: "Copycat", INN: "6658123456"})
	assert.ErrorIs(t, err, provider.ErrINNTaken)

	_, err = f.svc.Create(ctx, ProviderRequest{Name: "Broken", INN: "12"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	updated, err := f.svc.Update(ctx, p.ID, ProviderRequest{Name: "Uralzoloto LLC", INN: "6658123456", Address: "Yekaterinburg"})
	require.NoError(t, err)
	assert.Equal(t, "Yekaterinburg", updated.Address)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Uralzoloto LLC", all[0].Name)
}

func TestService_LinkMaterial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, ProviderRequest{Name: "Uralzoloto", INN: "6658123456"})
	require.NoError(t, err)

	link, err := f.svc.LinkMaterial(ctx, p.ID, f.gold)
	require.NoError(t, err)

	again, err := f.svc.LinkMaterial(ctx, p.ID, f.gold)
	require.NoError(t, err)
	assert.Equal(t, link.ID, again.ID)

	_, err = f.svc.LinkMaterial(ctx, p.ID, "missing")
	assert.ErrorIs(t, err, material.ErrMaterialNotFound)

	byProvider, err := f.svc.ListMaterials(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, byProvider, 1)
	assert.Equal(t, f.gold, byProvider[0].MaterialID)

	byMaterial, err := f.svc.ListProviders(ctx, f.gold)
	require.NoError(t, err)
	require.Len(t, byMaterial, 1)
	assert.Equal(t, p.ID, byMaterial[0].ProviderID)

	require.NoError(t, f.svc.UnlinkMaterial(ctx, p.ID, f.gold))
	assert.ErrorIs(t, f.svc.UnlinkMaterial(ctx, p.ID, f.gold), provider.ErrLinkNotFound)

	assert.Equal(t, []string{
		provider.EventProviderCreated,
		provider.EventMaterialLinked,
		provider.EventMaterialUnlinked,
	}, f.sink.names)
}

func TestService_DeleteDropsLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, ProviderRequest{Name: "Uralzoloto", INN: "6658123456"})
	require.NoError(t, err)
	_, err = f.svc.LinkMaterial(ctx, p.ID, f.gold)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, p.ID))

	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, provider.ErrProviderNotFound)

	links, err := f.svc.ListProviders(ctx, f.gold)
	require.NoError(t, err)
	assert.Empty(t, links)
}
