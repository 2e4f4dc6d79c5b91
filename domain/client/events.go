package client

import "workshop/domain/shared"

const (
	EventClientCreated = "client_created"
	EventClientUpdated = "client_updated"
	EventClientDeleted = "client_deleted"
)

type ClientCreatedEvent struct{ shared.BaseEvent }

func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{shared.NewBaseEvent(EventClientCreated, c.id, payload(c))}
}

type ClientUpdatedEvent struct{ shared.BaseEvent }

func NewClientUpdatedEvent(c *Client) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{shared.NewBaseEvent(EventClientUpdated, c.id, payload(c))}
}

type ClientDeletedEvent struct{ shared.BaseEvent }

func NewClientDeletedEvent(id string) *ClientDeletedEvent {
	return &ClientDeletedEvent{shared.NewBaseEvent(EventClientDeleted, id, map[string]any{"client_id": id})}
}

// payload never includes the password digest.
func payload(c *Client) map[string]any {
	return map[string]any{
		"client_id": c.id,
		"name":      c.name.Full(),
		"phone":     c.phone.Value(),
		"email":     c.email,
		"username":  c.username,
	}
}
