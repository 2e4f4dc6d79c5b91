/*
Package client is the customer directory.

Clients own orders and can sign in by phone. The password digest is produced
by an infrastructure hasher; this package never sees plaintext after creation.
*/
package client

import (
	"fmt"
	"strings"
	"time"

	"workshop/domain/shared"

	"github.com/google/uuid"
)

// Client aggregate root.
type Client struct {
	id             string
	name           shared.PersonName
	phone          shared.Phone
	email          string
	username       string
	passwordDigest string
	registeredAt   time.Time
	version        int

	shared.EventRecorder
}

// Profile holds the editable fields of a client.
type Profile struct {
	First    string
	Last     string
	Middle   string
	Phone    string
	Email    string
	Username string
}

// NewClient validates the profile and stores the digest of password.
func NewClient(p Profile, password string, hasher shared.PasswordHasher) (*Client, error) {
	c := &Client{registeredAt: time.Now()}
	if err := c.apply(p); err != nil {
		return nil, err
	}
	if err := c.setPassword(password, hasher); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate client ID: %w", err)
	}
	c.id = id.String()

	c.Record(NewClientCreatedEvent(c))
	return c, nil
}

func (c *Client) apply(p Profile) error {
	name := shared.PersonName{
		First:  strings.TrimSpace(p.First),
		Last:   strings.TrimSpace(p.Last),
		Middle: strings.TrimSpace(p.Middle),
	}
	if field, err := name.Validate(true); err != nil {
		return shared.NewValidationError("client", field, err.Error())
	}

	phone, err := shared.NewPhone(p.Phone)
	if err != nil {
		return shared.NewValidationError("client", "phone", err.Error())
	}
	email, err := shared.ValidateEmail(p.Email)
	if err != nil {
		return shared.NewValidationError("client", "email", err.Error())
	}
	username := strings.TrimSpace(p.Username)
	if err := shared.ValidateUsername(username); err != nil {
		return shared.NewValidationError("client", "username", err.Error())
	}

	c.name = name
	c.phone = phone
	c.email = email
	c.username = username
	return nil
}

func (c *Client) setPassword(password string, hasher shared.PasswordHasher) error {
	if err := shared.ValidatePassword(password); err != nil {
		return shared.NewValidationError("client", "password", err.Error())
	}
	digest, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	c.passwordDigest = digest
	return nil
}

// UpdateProfile replaces the profile; all fields are revalidated.
func (c *Client) UpdateProfile(p Profile) error {
	if err := c.apply(p); err != nil {
		return err
	}
	c.Record(NewClientUpdatedEvent(c))
	return nil
}

// ChangePassword replaces the stored digest.
func (c *Client) ChangePassword(password string, hasher shared.PasswordHasher) error {
	if err := c.setPassword(password, hasher); err != nil {
		return err
	}
	c.Record(NewClientUpdatedEvent(c))
	return nil
}

// CheckPassword compares password against the stored digest.
func (c *Client) CheckPassword(password string, hasher shared.PasswordHasher) bool {
	return c.passwordDigest != "" && hasher.Verify(password, c.passwordDigest)
}

func (c *Client) MarkRemoved() {
	c.Record(NewClientDeletedEvent(c.id))
}

func (c *Client) IncrementVersionForSave() { c.version++ }

func (c *Client) ID() string              { return c.id }
func (c *Client) Name() shared.PersonName { return c.name }
func (c *Client) Phone() shared.Phone     { return c.phone }
func (c *Client) Email() string           { return c.email }
func (c *Client) Username() string        { return c.username }
func (c *Client) PasswordDigest() string  { return c.passwordDigest }
func (c *Client) RegisteredAt() time.Time { return c.registeredAt }
func (c *Client) Version() int            { return c.version }

// ReconstructionDTO is used by repositories only.
type ReconstructionDTO struct {
	ID             string
	First          string
	Last           string
	Middle         string
	Phone          string
	Email          string
	Username       string
	PasswordDigest string
	RegisteredAt   time.Time
	Version        int
}

func RebuildFromDTO(dto ReconstructionDTO) *Client {
	return &Client{
		id:             dto.ID,
		name:           shared.PersonName{First: dto.First, Last: dto.Last, Middle: dto.Middle},
		phone:          shared.RestorePhone(dto.Phone),
		email:          dto.Email,
		username:       dto.Username,
		passwordDigest: dto.PasswordDigest,
		registeredAt:   dto.RegisteredAt,
		version:        dto.Version,
	}
}

var _ shared.AggregateRoot = (*Client)(nil)
