package provider

import "context"

type Repository interface {
	Save(ctx context.Context, p *Provider) error
	FindByID(ctx context.Context, id string) (*Provider, error)
	FindByINN(ctx context.Context, inn string) (*Provider, error)
	FindAll(ctx context.Context) ([]*Provider, error)

	// Remove deletes the provider and its material links.
	Remove(ctx context.Context, id string) error
}

// LinkRepository stores the provider/material relation. A pair is unique.
type LinkRepository interface {
	// FindLink returns nil, nil when the pair is not linked.
	FindLink(ctx context.Context, providerID, materialID string) (*MaterialLink, error)
	SaveLink(ctx context.Context, link MaterialLink) error
	RemoveLink(ctx context.Context, providerID, materialID string) error
	ListByProvider(ctx context.Context, providerID string) ([]MaterialLink, error)
	ListByMaterial(ctx context.Context, materialID string) ([]MaterialLink, error)
}
