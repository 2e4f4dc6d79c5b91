// Package provider manages suppliers and the materials they deliver.
package provider

import (
	"context"
	"errors"
	"time"

	"workshop/application/txn"
	"workshop/domain/material"
	"workshop/domain/provider"
	"workshop/domain/shared"
)

type ProviderRequest struct {
	Name    string `json:"name" binding:"required"`
	INN     string `json:"inn"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type ProviderResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	INN       string    `json:"inn,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LinkResponse struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	MaterialID string    `json:"material_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is the provider repository together with its link table.
type Store interface {
	provider.Repository
	provider.LinkRepository
}

type Service struct {
	providers Store
	materials material.Repository
	runner    *txn.Runner
}

func NewService(providers Store, materials material.Repository, factory shared.UnitOfWorkFactory, sink shared.DomainEventPublisher) *Service {
	return &Service{
		providers: providers,
		materials: materials,
		runner:    txn.NewRunner(factory, sink),
	}
}

func (s *Service) Create(ctx context.Context, req ProviderRequest) (*ProviderResponse, error) {
	p, err := provider.NewProvider(profile(req))
	if err != nil {
		return nil, err
	}
	err = s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		if err := s.ensureUniqueINN(ctx, p); err != nil {
			return err
		}
		uow.RegisterNew(p)
		return s.providers.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(p), nil
}

func (s *Service) ensureUniqueINN(ctx context.Context, p *provider.Provider) error {
	if p.INN() == "" {
		return nil
	}
	other, err := s.providers.FindByINN(ctx, p.INN())
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID() != p.ID() {
		return provider.NewINNTakenError(p.INN())
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*ProviderResponse, error) {
	p, err := s.providers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(p), nil
}

func (s *Service) List(ctx context.Context) ([]*ProviderResponse, error) {
	all, err := s.providers.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*ProviderResponse, len(all))
	for i, p := range all {
		out[i] = toResponse(p)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, req ProviderRequest) (*ProviderResponse, error) {
	var p *provider.Provider
	err := s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		var err error
		if p, err = s.providers.FindByID(ctx, id); err != nil {
			return err
		}
		if err := p.UpdateProfile(profile(req)); err != nil {
			return err
		}
		if err := s.ensureUniqueINN(ctx, p); err != nil {
			return err
		}
		uow.RegisterDirty(p)
		return s.providers.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(p), nil
}

// Delete removes the provider together with its material links.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		p, err := s.providers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.providers.Remove(ctx, id); err != nil {
			return err
		}
		p.MarkRemoved()
		uow.RegisterRemoved(p)
		return nil
	})
}

// LinkMaterial records that the provider supplies the material. Linking an
// already linked pair returns the existing link.
func (s *Service) LinkMaterial(ctx context.Context, providerID, materialID string) (*LinkResponse, error) {
	var link provider.MaterialLink
	err := s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		p, err := s.providers.FindByID(ctx, providerID)
		if err != nil {
			return err
		}
		if _, err := s.materials.FindByID(ctx, materialID); err != nil {
			return err
		}
		existing, err := s.providers.FindLink(ctx, providerID, materialID)
		if err != nil {
			return err
		}
		if existing != nil {
			link = *existing
			return nil
		}
		if link, err = provider.NewMaterialLink(providerID, materialID); err != nil {
			return err
		}
		if err := s.providers.SaveLink(ctx, link); err != nil {
			return err
		}
		p.Record(provider.NewMaterialLinkedEvent(link))
		uow.RegisterDirty(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toLinkResponse(link), nil
}

func (s *Service) UnlinkMaterial(ctx context.Context, providerID, materialID string) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		p, err := s.providers.FindByID(ctx, providerID)
		if err != nil {
			return err
		}
		existing, err := s.providers.FindLink(ctx, providerID, materialID)
		if err != nil {
			return err
		}
		if existing == nil {
			return provider.NewLinkNotFoundError(providerID, materialID)
		}
		if err := s.providers.RemoveLink(ctx, providerID, materialID); err != nil {
			return err
		}
		p.Record(provider.NewMaterialUnlinkedEvent(*existing))
		uow.RegisterDirty(p)
		return nil
	})
}

// ListMaterials returns the links of a provider, oldest first.
func (s *Service) ListMaterials(ctx context.Context, providerID string) ([]*LinkResponse, error) {
	if _, err := s.providers.FindByID(ctx, providerID); err != nil {
		return nil, err
	}
	links, err := s.providers.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return toLinkResponses(links), nil
}

// ListProviders returns the links of a material, oldest first.
func (s *Service) ListProviders(ctx context.Context, materialID string) ([]*LinkResponse, error) {
	if _, err := s.materials.FindByID(ctx, materialID); err != nil {
		return nil, err
	}
	links, err := s.providers.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return toLinkResponses(links), nil
}

func profile(req ProviderRequest) provider.Profile {
	return provider.Profile{
		Name:    req.Name,
		INN:     req.INN,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
}

func toResponse(p *provider.Provider) *ProviderResponse {
	return &ProviderResponse{
		ID:        p.ID(),
		Name:      p.Name(),
		INN:       p.INN(),
		Phone:     p.Phone().Value(),
		Email:     p.Email(),
		Address:   p.Address(),
		CreatedAt: p.CreatedAt(),
	}
}

func toLinkResponse(l provider.MaterialLink) *LinkResponse {
	return &LinkResponse{ID: l.ID, ProviderID: l.ProviderID, MaterialID: l.MaterialID, CreatedAt: l.CreatedAt}
}

func toLinkResponses(links []provider.MaterialLink) []*LinkResponse {
	out := make([]*LinkResponse, len(links))
	for i, l := range links {
		out[i] = toLinkResponse(l)
	}
	return out
}
