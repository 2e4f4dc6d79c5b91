package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedHandler struct {
	name string
	seen *[]string
	err  error
}

func (h namedHandler) Name() string { return h.name }

func (h namedHandler) Handle(e DomainEvent) error {
	*h.seen = append(*h.seen, h.name+":"+e.EventName())
	return h.err
}

func TestEventBus_DispatchOrder(t *testing.T) {
	var seen []string
	bus := NewEventBus()
	require.NoError(t, bus.Subscribe(WildcardEvent, namedHandler{name: "audit", seen: &seen}))
	require.NoError(t, bus.Subscribe("order_created", namedHandler{name: "notify", seen: &seen}))

	require.NoError(t, bus.Publish(NewBaseEvent("order_created", "o-1", nil)))
	require.NoError(t, bus.Publish(NewBaseEvent("material_created", "m-1", nil)))

	assert.Equal(t, []string{"notify:order_created", "audit:order_created", "audit:material_created"}, seen)
}

func TestEventBus_FailingHandlerDoesNotStopOthers(t *testing.T) {
	var seen []string
	boom := errors.New("boom")
	bus := NewEventBus()
	require.NoError(t, bus.Subscribe("order_deleted", namedHandler{name: "first", seen: &seen, err: boom}))
	require.NoError(t, bus.Subscribe("order_deleted", namedHandler{name: "second", seen: &seen}))

	err := bus.Publish(NewBaseEvent("order_deleted", "o-1", nil))
	require.ErrorIs(t, err, boom)
	assert.Len(t, seen, 2)
}

func TestEventBus_SubscribeRules(t *testing.T) {
	var seen []string
	bus := NewEventBus()
	h := namedHandler{name: "audit", seen: &seen}

	require.NoError(t, bus.Subscribe("order_created", h))
	assert.Error(t, bus.Subscribe("order_created", h))
	assert.Error(t, bus.Subscribe("", h))

	require.NoError(t, bus.Unsubscribe("order_created", h))
	require.NoError(t, bus.Publish(NewBaseEvent("order_created", "o-1", nil)))
	assert.Empty(t, seen)
}

func TestValidateEvent(t *testing.T) {
	assert.ErrorIs(t, ValidateEvent(nil), ErrMalformedEvent)
	assert.ErrorIs(t, ValidateEvent(NewBaseEvent("", "o-1", nil)), ErrMalformedEvent)
	assert.ErrorIs(t, ValidateEvent(NewBaseEvent("order_created", "", nil)), ErrMalformedEvent)
	assert.ErrorIs(t, ValidateEvent(BaseEvent{name: "order_created", aggregateID: "o-1"}), ErrMalformedEvent)
	assert.NoError(t, ValidateEvent(NewBaseEvent("order_created", "o-1", nil)))
}

func TestBaseEvent_PayloadIsCopied(t *testing.T) {
	e := NewBaseEvent("material_created", "m-1", map[string]any{"name": "Gold"})
	p := e.Payload()
	p["name"] = "Silver"
	assert.Equal(t, "Gold", e.Payload()["name"])
}
