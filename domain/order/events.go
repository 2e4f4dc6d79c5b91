package order

import "workshop/domain/shared"

const (
	EventOrderCreated              = "order_created"
	EventOrderUpdated              = "order_updated"
	EventOrderDeleted              = "order_deleted"
	EventOrderStatusChanged        = "order_status_changed"
	EventMaterialLinkedToOrder     = "material_linked_to_order"
	EventMaterialUnlinkedFromOrder = "material_unlinked_from_order"
)

type OrderCreatedEvent struct{ shared.BaseEvent }

func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{shared.NewBaseEvent(EventOrderCreated, o.id, headerPayload(o))}
}

type OrderUpdatedEvent struct{ shared.BaseEvent }

func NewOrderUpdatedEvent(o *Order) *OrderUpdatedEvent {
	return &OrderUpdatedEvent{shared.NewBaseEvent(EventOrderUpdated, o.id, headerPayload(o))}
}

type OrderDeletedEvent struct{ shared.BaseEvent }

func NewOrderDeletedEvent(o *Order) *OrderDeletedEvent {
	return &OrderDeletedEvent{shared.NewBaseEvent(EventOrderDeleted, o.id, headerPayload(o))}
}

// OrderStatusChangedEvent is recorded only when the status value actually changes.
type OrderStatusChangedEvent struct {
	shared.BaseEvent
	from Status
	to   Status
}

func NewOrderStatusChangedEvent(orderID string, from, to Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent: shared.NewBaseEvent(EventOrderStatusChanged, orderID, map[string]any{
			"order_id": orderID,
			"from":     from.String(),
			"to":       to.String(),
		}),
		from: from,
		to:   to,
	}
}

func (e *OrderStatusChangedEvent) From() Status { return e.from }
func (e *OrderStatusChangedEvent) To() Status   { return e.to }

type MaterialLinkedToOrderEvent struct{ shared.BaseEvent }

func NewMaterialLinkedToOrderEvent(l Line) *MaterialLinkedToOrderEvent {
	return &MaterialLinkedToOrderEvent{shared.NewBaseEvent(EventMaterialLinkedToOrder, l.orderID, linePayload(l))}
}

type MaterialUnlinkedFromOrderEvent struct{ shared.BaseEvent }

func NewMaterialUnlinkedFromOrderEvent(l Line) *MaterialUnlinkedFromOrderEvent {
	return &MaterialUnlinkedFromOrderEvent{shared.NewBaseEvent(EventMaterialUnlinkedFromOrder, l.orderID, linePayload(l))}
}

func headerPayload(o *Order) map[string]any {
	return map[string]any{
		"order_id":    o.id,
		"client_id":   o.clientID,
		"worker_id":   o.workerID,
		"date":        o.date,
		"prod_period": o.prodPeriod,
		"status":      o.status.String(),
	}
}

func linePayload(l Line) map[string]any {
	return map[string]any{
		"line_id":     l.id,
		"order_id":    l.orderID,
		"material_id": l.materialID,
		"amount":      l.amount,
	}
}
