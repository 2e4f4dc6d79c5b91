package provider

import (
	"fmt"

	"workshop/domain/shared"
)

var (
	ErrProviderNotFound = fmt.Errorf("provider %w", shared.ErrNotFound)
	ErrLinkNotFound     = fmt.Errorf("provider material link %w", shared.ErrNotFound)
	ErrINNTaken         = fmt.Errorf("inn already registered: %w", shared.ErrConflict)
)

func NewProviderNotFoundError(id string) error {
	return shared.NewEntityError(ErrProviderNotFound, "provider", id, "provider not found: "+id)
}

func NewLinkNotFoundError(providerID, materialID string) error {
	return shared.NewEntityError(ErrLinkNotFound, "provider", providerID,
		fmt.Sprintf("material %s is not linked to provider %s", materialID, providerID))
}

func NewINNTakenError(inn string) error {
	return shared.NewEntityError(ErrINNTaken, "provider", "", "inn already registered: "+inn)
}
