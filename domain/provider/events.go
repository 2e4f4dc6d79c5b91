package provider

import "workshop/domain/shared"

const (
	EventProviderCreated  = "provider_created"
	EventProviderUpdated  = "provider_updated"
	EventProviderDeleted  = "provider_deleted"
	EventMaterialLinked   = "material_linked_to_provider"
	EventMaterialUnlinked = "material_unlinked_from_provider"
)

type ProviderCreatedEvent struct{ shared.BaseEvent }

func NewProviderCreatedEvent(p *Provider) *ProviderCreatedEvent {
	return &ProviderCreatedEvent{shared.NewBaseEvent(EventProviderCreated, p.id, payload(p))}
}

type ProviderUpdatedEvent struct{ shared.BaseEvent }

func NewProviderUpdatedEvent(p *Provider) *ProviderUpdatedEvent {
	return &ProviderUpdatedEvent{shared.NewBaseEvent(EventProviderUpdated, p.id, payload(p))}
}

type ProviderDeletedEvent struct{ shared.BaseEvent }

func NewProviderDeletedEvent(id string) *ProviderDeletedEvent {
	return &ProviderDeletedEvent{shared.NewBaseEvent(EventProviderDeleted, id, map[string]any{"provider_id": id})}
}

type MaterialLinkedEvent struct{ shared.BaseEvent }

func NewMaterialLinkedEvent(l MaterialLink) *MaterialLinkedEvent {
	return &MaterialLinkedEvent{shared.NewBaseEvent(EventMaterialLinked, l.ProviderID, linkPayload(l))}
}

type MaterialUnlinkedEvent struct{ shared.BaseEvent }

func NewMaterialUnlinkedEvent(l MaterialLink) *MaterialUnlinkedEvent {
	return &MaterialUnlinkedEvent{shared.NewBaseEvent(EventMaterialUnlinked, l.ProviderID, linkPayload(l))}
}

func payload(p *Provider) map[string]any {
	return map[string]any{
		"provider_id": p.id,
		"name":        p.name,
		"inn":         p.inn,
		"phone":       p.phone.Value(),
		"email":       p.email,
		"address":     p.address,
	}
}

func linkPayload(l MaterialLink) map[string]any {
	return map[string]any{
		"link_id":     l.ID,
		"provider_id": l.ProviderID,
		"material_id": l.MaterialID,
	}
}
