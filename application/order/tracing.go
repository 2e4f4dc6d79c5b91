package order

import (
	"context"
	"errors"
	"time"

	"workshop/domain/shared"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "workshop/application/order"

// TracedService wraps a UseCase with a span and two metrics per call.
type TracedService struct {
	next     UseCase
	tracer   trace.Tracer
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

func NewTracedService(next UseCase, tp trace.TracerProvider, mp metric.MeterProvider) (*TracedService, error) {
	meter := mp.Meter(instrumentationName)
	calls, err := meter.Int64Counter("workshop.order.operations",
		metric.WithDescription("Order workflow operations by outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("workshop.order.duration",
		metric.WithDescription("Order workflow operation latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &TracedService{
		next:     next,
		tracer:   tp.Tracer(instrumentationName),
		calls:    calls,
		duration: duration,
	}, nil
}

func (t *TracedService) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "order."+op, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(err error) {
		result := outcome(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		span.End()

		set := metric.WithAttributes(attribute.String("operation", op), attribute.String("outcome", result))
		t.calls.Add(ctx, 1, set)
		t.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, set)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, shared.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, shared.ErrNotFound):
		return "not_found"
	case errors.Is(err, shared.ErrConflict):
		return "conflict"
	case errors.Is(err, shared.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

func (t *TracedService) CreateOrder(ctx context.Context, req CreateOrderRequest) (resp *OrderResponse, err error) {
	ctx, done := t.observe(ctx, "create", attribute.String("client_id", req.ClientID), attribute.Int("lines", len(req.Lines)))
	defer func() { done(err) }()
	return t.next.CreateOrder(ctx, req)
}

func (t *TracedService) AddMaterialToOrder(ctx context.Context, orderID, materialID string, amount int) (resp *LineResponse, err error) {
	ctx, done := t.observe(ctx, "add_material",
		attribute.String("order_id", orderID), attribute.String("material_id", materialID), attribute.Int("amount", amount))
	defer func() { done(err) }()
	return t.next.AddMaterialToOrder(ctx, orderID, materialID, amount)
}

func (t *TracedService) UpdateMaterialAmount(ctx context.Context, lineID string, newAmount int) (resp *LineResponse, err error) {
	ctx, done := t.observe(ctx, "update_amount", attribute.String("line_id", lineID), attribute.Int("amount", newAmount))
	defer func() { done(err) }()
	return t.next.UpdateMaterialAmount(ctx, lineID, newAmount)
}

func (t *TracedService) RemoveMaterialFromOrder(ctx context.Context, lineID string) (err error) {
	ctx, done := t.observe(ctx, "remove_material", attribute.String("line_id", lineID))
	defer func() { done(err) }()
	return t.next.RemoveMaterialFromOrder(ctx, lineID)
}

func (t *TracedService) UpdateOrder(ctx context.Context, orderID string, req UpdateOrderRequest) (resp *OrderResponse, err error) {
	ctx, done := t.observe(ctx, "update", attribute.String("order_id", orderID))
	defer func() { done(err) }()
	return t.next.UpdateOrder(ctx, orderID, req)
}

func (t *TracedService) DeleteOrder(ctx context.Context, orderID string) (err error) {
	ctx, done := t.observe(ctx, "delete", attribute.String("order_id", orderID))
	defer func() { done(err) }()
	return t.next.DeleteOrder(ctx, orderID)
}

func (t *TracedService) GetOrder(ctx context.Context, orderID string) (resp *OrderResponse, err error) {
	ctx, done := t.observe(ctx, "get", attribute.String("order_id", orderID))
	defer func() { done(err) }()
	return t.next.GetOrder(ctx, orderID)
}

func (t *TracedService) ListOrders(ctx context.Context, q ListOrdersQuery) (resp []*OrderResponse, err error) {
	ctx, done := t.observe(ctx, "list")
	defer func() { done(err) }()
	return t.next.ListOrders(ctx, q)
}

func (t *TracedService) ClientOrders(ctx context.Context, clientID string) (resp []*OrderResponse, err error) {
	ctx, done := t.observe(ctx, "client_orders", attribute.String("client_id", clientID))
	defer func() { done(err) }()
	return t.next.ClientOrders(ctx, clientID)
}

func (t *TracedService) WorkerOrders(ctx context.Context, workerID string) (resp []*OrderResponse, err error) {
	ctx, done := t.observe(ctx, "worker_orders", attribute.String("worker_id", workerID))
	defer func() { done(err) }()
	return t.next.WorkerOrders(ctx, workerID)
}

func (t *TracedService) CountByStatus(ctx context.Context) (resp map[string]int, err error) {
	ctx, done := t.observe(ctx, "count_by_status")
	defer func() { done(err) }()
	return t.next.CountByStatus(ctx)
}

var _ UseCase = (*TracedService)(nil)
