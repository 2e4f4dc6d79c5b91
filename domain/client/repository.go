package client

import "context"

type Repository interface {
	Save(ctx context.Context, c *Client) error
	FindByID(ctx context.Context, id string) (*Client, error)

	// FindByPhone expects the normalized +7XXXXXXXXXX form.
	FindByPhone(ctx context.Context, phone string) (*Client, error)
	FindByUsername(ctx context.Context, username string) (*Client, error)

	// FindAll lists clients ordered by last and first name.
	FindAll(ctx context.Context) ([]*Client, error)
	Exists(ctx context.Context, id string) (bool, error)
	Remove(ctx context.Context, id string) error
}
