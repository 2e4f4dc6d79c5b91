package material

import "workshop/domain/shared"

const (
	EventMaterialCreated        = "material_created"
	EventMaterialUpdated        = "material_updated"
	EventMaterialDeleted        = "material_deleted"
	EventMaterialBalanceChanged = "material_balance_changed"
)

type MaterialCreatedEvent struct{ shared.BaseEvent }

func NewMaterialCreatedEvent(m *Material) *MaterialCreatedEvent {
	return &MaterialCreatedEvent{shared.NewBaseEvent(EventMaterialCreated, m.id, snapshot(m))}
}

type MaterialUpdatedEvent struct{ shared.BaseEvent }

func NewMaterialUpdatedEvent(m *Material) *MaterialUpdatedEvent {
	return &MaterialUpdatedEvent{shared.NewBaseEvent(EventMaterialUpdated, m.id, snapshot(m))}
}

type MaterialDeletedEvent struct{ shared.BaseEvent }

func NewMaterialDeletedEvent(id string) *MaterialDeletedEvent {
	return &MaterialDeletedEvent{shared.NewBaseEvent(EventMaterialDeleted, id, map[string]any{"material_id": id})}
}

// MaterialBalanceChangedEvent carries the applied delta and the resulting balance.
type MaterialBalanceChangedEvent struct {
	shared.BaseEvent
	delta   int
	balance int
}

func NewMaterialBalanceChangedEvent(id string, delta, balance int) *MaterialBalanceChangedEvent {
	return &MaterialBalanceChangedEvent{
		BaseEvent: shared.NewBaseEvent(EventMaterialBalanceChanged, id, map[string]any{
			"material_id": id,
			"delta":       delta,
			"balance":     balance,
		}),
		delta:   delta,
		balance: balance,
	}
}

func (e *MaterialBalanceChangedEvent) Delta() int   { return e.delta }
func (e *MaterialBalanceChangedEvent) Balance() int { return e.balance }

func snapshot(m *Material) map[string]any {
	return map[string]any{
		"material_id": m.id,
		"type":        m.typ,
		"price":       m.price,
		"balance":     m.balance,
	}
}
