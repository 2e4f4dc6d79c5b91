/*
Package provider is the supplier directory and its material catalogue links.
*/
package provider

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"workshop/domain/shared"

	"github.com/google/uuid"
)

var innRegex = regexp.MustCompile(`^[0-9]{10,12}$`)

// Provider aggregate root.
type Provider struct {
	id        string
	name      string
	inn       string
	phone     shared.Phone
	email     string
	address   string
	createdAt time.Time
	version   int

	shared.EventRecorder
}

type Profile struct {
	Name    string
	INN     string
	Phone   string
	Email   string
	Address string
}

func NewProvider(p Profile) (*Provider, error) {
	pr := &Provider{createdAt: time.Now()}
	if err := pr.apply(p); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate provider ID: %w", err)
	}
	pr.id = id.String()

	pr.Record(NewProviderCreatedEvent(pr))
	return pr, nil
}

func (pr *Provider) apply(p Profile) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return shared.NewValidationError("provider", "name", "cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewValidationError("provider", "name", "must be at most 200 characters")
	}
	inn := strings.TrimSpace(p.INN)
	if !innRegex.MatchString(inn) {
		return shared.NewValidationError("provider", "inn", "must be 10 to 12 digits")
	}
	phone, err := shared.NewPhone(p.Phone)
	if err != nil {
		return shared.NewValidationError("provider", "phone", err.Error())
	}
	email, err := shared.ValidateEmail(p.Email)
	if err != nil {
		return shared.NewValidationError("provider", "email", err.Error())
	}

	pr.name = name
	pr.inn = inn
	pr.phone = phone
	pr.email = email
	pr.address = strings.TrimSpace(p.Address)
	return nil
}

func (pr *Provider) UpdateProfile(p Profile) error {
	if err := pr.apply(p); err != nil {
		return err
	}
	pr.Record(NewProviderUpdatedEvent(pr))
	return nil
}

func (pr *Provider) MarkRemoved() {
	pr.Record(NewProviderDeletedEvent(pr.id))
}

func (pr *Provider) IncrementVersionForSave() { pr.version++ }

func (pr *Provider) ID() string           { return pr.id }
func (pr *Provider) Name() string         { return pr.name }
func (pr *Provider) INN() string          { return pr.inn }
func (pr *Provider) Phone() shared.Phone  { return pr.phone }
func (pr *Provider) Email() string        { return pr.email }
func (pr *Provider) Address() string      { return pr.address }
func (pr *Provider) CreatedAt() time.Time { return pr.createdAt }
func (pr *Provider) Version() int         { return pr.version }

type ReconstructionDTO struct {
	ID        string
	Name      string
	INN       string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	Version   int
}

func RebuildFromDTO(dto ReconstructionDTO) *Provider {
	return &Provider{
		id:        dto.ID,
		name:      dto.Name,
		inn:       dto.INN,
		phone:     shared.RestorePhone(dto.Phone),
		email:     dto.Email,
		address:   dto.Address,
		createdAt: dto.CreatedAt,
		version:   dto.Version,
	}
}

// MaterialLink records that a provider supplies a material.
type MaterialLink struct {
	ID         string
	ProviderID string
	MaterialID string
	CreatedAt  time.Time
}

// NewMaterialLink builds an unsaved link.
func NewMaterialLink(providerID, materialID string) (MaterialLink, error) {
	if providerID == "" || materialID == "" {
		return MaterialLink{}, shared.NewValidationError("provider", "material_id", "provider and material are required")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return MaterialLink{}, fmt.Errorf("failed to generate link ID: %w", err)
	}
	return MaterialLink{
		ID:         id.String(),
		ProviderID: providerID,
		MaterialID: materialID,
		CreatedAt:  time.Now(),
	}, nil
}

var _ shared.AggregateRoot = (*Provider)(nil)
