package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"workshop/domain/client"
	"workshop/domain/material"
	"workshop/domain/order"
	"workshop/domain/shared"
	"workshop/domain/worker"
	"workshop/infrastructure/persistence/memory"
	"workshop/infrastructure/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type eventLog struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (l *eventLog) Publish(event shared.DomainEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *eventLog) Subscribe(string, shared.EventHandler) error   { return nil }
func (l *eventLog) Unsubscribe(string, shared.EventHandler) error { return nil }

func (l *eventLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	for i, e := range l.events {
		out[i] = e.EventName()
	}
	return out
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

type fixture struct {
	svc       *Service
	store     *memory.Store
	materials *memory.MaterialRepository
	orders    *memory.OrderRepository
	events    *eventLog
	client    *client.Client
	worker    *worker.Worker
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)

	c, err := client.NewClient(client.Profile{First: "Anna", Last: "Ivanova", Username: "anna", Phone: "+79001234567"}, "secret1", hasher)
	require.NoError(t, err)
	require.NoError(t, memory.NewClientRepository(store).Save(ctx, c))

	w, err := worker.NewWorker(worker.Profile{First: "Petr", Last: "Smirnov", Username: "petr", Position: "jeweler"}, "secret1", hasher)
	require.NoError(t, err)
	require.NoError(t, memory.NewWorkerRepository(store).Save(ctx, w))

	events := &eventLog{}
	f := &fixture{
		store:     store,
		materials: memory.NewMaterialRepository(store),
		orders:    memory.NewOrderRepository(store),
		events:    events,
		client:    c,
		worker:    w,
	}
	f.svc = NewService(Repositories{
		Orders:    f.orders,
		Materials: f.materials,
		Clients:   memory.NewClientRepository(store),
		Workers:   memory.NewWorkerRepository(store),
	}, memory.NewUnitOfWorkFactory(store), events, policy)
	return f
}

func (f *fixture) material(t *testing.T, typ string, price int64, balance int) *material.Material {
	t.Helper()
	m, err := material.NewMaterial(typ, price, balance)
	require.NoError(t, err)
	require.NoError(t, f.materials.Save(context.Background(), m))
	return m
}

func (f *fixture) balance(t *testing.T, id string) int {
	t.Helper()
	m, err := f.materials.FindByID(context.Background(), id)
	require.NoError(t, err)
	return m.Balance()
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	all, err := f.orders.FindBySpecification(context.Background(), nil)
	require.NoError(t, err)
	return len(all)
}

func TestCreateOrder_ReservesStock(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	gold := f.material(t, "gold 585", 4200, 5)

	resp, err := f.svc.CreateOrder(ctx, CreateOrderRequest{
		ClientID: f.client.ID(),
		WorkerID: f.worker.ID(),
		Lines:    []LineRequest{{MaterialID: gold.ID(), Amount: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.balance(t, gold.ID()))

	assert.Equal(t, order.StatusProcessing.String(), resp.Status)
	assert.Equal(t, "Ivanova Anna", resp.ClientName)
	assert.Equal(t, "Smirnov Petr", resp.WorkerName)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "gold 585", resp.Lines[0].MaterialType)
	assert.Equal(t, int64(12600), resp.Lines[0].Subtotal.Amount)
	assert.Equal(t, MoneyResponse{Amount: 12600, Currency: shared.DefaultCurrency}, resp.Total)

	_, err = f.svc.CreateOrder(ctx, CreateOrderRequest{
		ClientID: f.client.ID(),
		Lines:    []LineRequest{{MaterialID: gold.ID(), Amount: 3}},
	})
	var shortage *material.InsufficientBalanceError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, gold.ID(), shortage.MaterialID)
	assert.Equal(t, 3, shortage.Requested)
	assert.Equal(t, 2, shortage.Available)

	assert.Equal(t, 2, f.balance(t, gold.ID()))
	assert.Equal(t, 1, f.orderCount(t))
}

func TestCreateOrder_RollsBackEarlierLines(t *testing.T) {
	f := newFixture(t, Policy{})
	gold := f.material(t, "gold 585", 4200, 10)
	silver := f.material(t, "silver 925", 900, 1)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		ClientID: f.client.ID(),
		Lines: []LineRequest{
			{MaterialID: gold.ID(), Amount: 4},
			{MaterialID: silver.ID(), Amount: 2},
		},
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	assert.Equal(t, 10, f.balance(t, gold.ID()))
	assert.Equal(t, 1, f.balance(t, silver.ID()))
	assert.Zero(t, f.orderCount(t))
	assert.Empty(t, f.events.names())
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t, Policy{})
	gold := f.material(t, "gold 585", 4200, 10)
	zero := 0

	tests := []struct {
		name    string
		req     CreateOrderRequest
		wantErr error
	}{
		{"missing client id", CreateOrderRequest{}, shared.ErrInvalidInput},
		{"unknown client", CreateOrderRequest{ClientID: "nobody"}, shared.ErrNotFound},
		{"unknown worker", CreateOrderRequest{ClientID: f.client.ID(), WorkerID: "nobody"}, shared.ErrNotFound},
		{"non-positive prod period", CreateOrderRequest{ClientID: f.client.ID(), ProdPeriod: &zero}, shared.ErrInvalidInput},
		{"zero amount", CreateOrderRequest{
			ClientID: f.client.ID(),
			Lines:    []LineRequest{{MaterialID: gold.ID(), Amount: 0}},
		}, shared.ErrInvalidAmount},
		{"duplicate material", CreateOrderRequest{
			ClientID: f.client.ID(),
			Lines:    []LineRequest{{MaterialID: gold.ID(), Amount: 1}, {MaterialID: gold.ID(), Amount: 2}},
		}, shared.ErrInvalidInput},
		{"amount checked before client lookup", CreateOrderRequest{
			ClientID: "nobody",
			Lines:    []LineRequest{{MaterialID: gold.ID(), Amount: 0}},
		}, shared.ErrInvalidAmount},
		{"unknown material", CreateOrderRequest{
			ClientID: f.client.ID(),
			Lines:    []LineRequest{{MaterialID: "missing", Amount: 1}},
		}, material.ErrMaterialNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateOrder(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 10, f.balance(t, gold.ID()))
	assert.Zero(t, f.orderCount(t))
}

func TestCreateOrder_EmptyOrderAllowed(t *testing.T) {
	f := newFixture(t, Policy{})

	resp, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{ClientID: f.client.ID()})
	require.NoError(t, err)
	assert.Empty(t, resp.Lines)
	assert.Equal(t, int64(0), resp.Total.Amount)
	assert.Equal(t, []string{order.EventOrderCreated}, f.events.names())
}

func TestCreateOrder_EventsAfterCommit(t *testing.T) {
	f := newFixture(t, Policy{})
	gold := f.material(t, "gold 585", 4200, 5)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		ClientID: f.client.ID(),
		Lines:    []LineRequest{{MaterialID: gold.ID(), Amount: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		order.EventOrderCreated,
		order.EventMaterialLinkedToOrder,
		material.EventMaterialBalanceChanged,
	}, f.events.names())

	changed, ok := f.events.events[2].(*material.MaterialBalanceChangedEvent)
	require.True(t, ok)
	assert.Equal(t, -2, changed.Delta())
	assert.Equal(t, 3, changed.Balance())
}

func TestCreateOrder_ConcurrentReservations(t *testing.T) {
	f := newFixture(t, Policy{})
	gold := f.material(t, "gold 585", 4200, 10)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.CreateOrder(context.Background(), CreateOrderRequest{
				ClientID: f.client.ID(),
				Lines:    []LineRequest{{MaterialID: gold.ID(), Amount: 6}},
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 4, f.balance(t, gold.ID()))
	assert.Equal(t, 1, f.orderCount(t))
}

func newOrder(t *testing.T, f *fixture, lines ...LineRequest) *OrderResponse {
	t.Helper()
	resp, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{ClientID: f.client.ID(), Lines: lines})
	require.NoError(t, err)
	f.events.reset()
	return resp
}

func TestAddMaterialToOrder(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	gold := f.material(t, "gold 585", 4200, 5)
	o := newOrder(t, f)

	line, err := f.svc.AddMaterialToOrder(ctx, o.ID, gold.ID(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Amount)
	assert.Equal(t, "gold 585", line.MaterialType)
	assert.Equal(t, 1, f.balance(t, gold.ID()))
	assert.Equal(t, []string{order.EventMaterialLinkedToOrder, material.EventMaterialBalanceChanged}, f.events.names())

	_, err = f.svc.AddMaterialToOrder(ctx, o.ID, gold.ID(), 1)
	assert.ErrorIs(t, err, order.ErrDuplicateLine)
	assert.Equal(t, 1, f.balance(t, gold.ID()))

	silver := f.material(t, "silver 925", 900, 2)
	_, err = f.svc.AddMaterialToOrder(ctx, o.ID, silver.ID(), 3)
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)

	stored, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 1)
	assert.Equal(t, 2, f.balance(t, silver.ID()))

	_, err = f.svc.AddMaterialToOrder(ctx, o.ID, silver.ID(), -1)
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	_, err = f.svc.AddMaterialToOrder(ctx, "missing", silver.ID(), 1)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	_, err = f.svc.AddMaterialToOrder(ctx, o.ID, "missing", 1)
	assert.ErrorIs(t, err, material.ErrMaterialNotFound)
}

func TestUpdateMaterialAmount(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	gold := f.material(t, "gold 585", 4200, 10)
	o := newOrder(t, f, LineRequest{MaterialID: gold.ID(), Amount: 3})
	lineID := o.Lines[0].ID

	line, err := f.svc.UpdateMaterialAmount(ctx, lineID, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, line.Amount)
	assert.Equal(t, 2, f.balance(t, gold.ID()))

	line, err = f.svc.UpdateMaterialAmount(ctx, lineID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Amount)
	assert.Equal(t, 5, f.balance(t, gold.ID()))

	f.events.reset()
	line, err = f.svc.UpdateMaterialAmount(ctx, lineID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Amount)
	assert.Empty(t, f.events.names())

	_, err = f.svc.UpdateMaterialAmount(ctx, lineID, 20)
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	stored, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Lines[0].Amount)
	assert.Equal(t, 5, f.balance(t, gold.ID()))

	_, err = f.svc.UpdateMaterialAmount(ctx, lineID, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	_, err = f.svc.UpdateMaterialAmount(ctx, "missing", 1)
	assert.ErrorIs(t, err, order.ErrLineNotFound)
}

func TestRemoveMaterialFromOrder(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	gold := f.material(t, "gold 585", 4200, 10)
	o := newOrder(t, f, LineRequest{MaterialID: gold.ID(), Amount: 3})

	require.NoError(t, f.svc.RemoveMaterialFromOrder(ctx, o.Lines[0].ID))
	assert.Equal(t, 10, f.balance(t, gold.ID()))
	assert.Equal(t, []string{order.EventMaterialUnlinkedFromOrder, material.EventMaterialBalanceChanged}, f.events.names())

	stored, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Lines)

	assert.ErrorIs(t, f.svc.RemoveMaterialFromOrder(ctx, o.Lines[0].ID), order.ErrLineNotFound)
}

func TestUpdateOrder(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	o := newOrder(t, f)

	status := "in_progress"
	period := 14
	resp, err := f.svc.UpdateOrder(ctx, o.ID, UpdateOrderRequest{Status: &status, WorkerID: ptr(f.worker.ID()), ProdPeriod: &period})
	require.NoError(t, err)
	assert.Equal(t, order.StatusInProgress.String(), resp.Status)
	assert.Equal(t, f.worker.ID(), resp.WorkerID)
	assert.Equal(t, 14, resp.ProdPeriod)
	assert.Equal(t, []string{order.EventOrderUpdated, order.EventOrderStatusChanged}, f.events.names())

	f.events.reset()
	same := "InProgress"
	resp, err = f.svc.UpdateOrder(ctx, o.ID, UpdateOrderRequest{Status: &same, ClearWorker: true})
	require.NoError(t, err)
	assert.Empty(t, resp.WorkerID)
	assert.Equal(t, []string{order.EventOrderUpdated}, f.events.names())

	bad := "shipped"
	_, err = f.svc.UpdateOrder(ctx, o.ID, UpdateOrderRequest{Status: &bad})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.svc.UpdateOrder(ctx, o.ID, UpdateOrderRequest{WorkerID: ptr("nobody")})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.UpdateOrder(ctx, "missing", UpdateOrderRequest{})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestDeleteOrder_Policy(t *testing.T) {
	tests := []struct {
		name        string
		policy      Policy
		wantBalance int
	}{
		{"keeps stock consumed", Policy{RestoreStockOnDelete: false}, 7},
		{"restores stock", Policy{RestoreStockOnDelete: true}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.policy)
			ctx := context.Background()
			gold := f.material(t, "gold 585", 4200, 10)
			o := newOrder(t, f, LineRequest{MaterialID: gold.ID(), Amount: 3})

			require.NoError(t, f.svc.DeleteOrder(ctx, o.ID))
			assert.Equal(t, tt.wantBalance, f.balance(t, gold.ID()))
			assert.Contains(t, f.events.names(), order.EventOrderDeleted)

			_, err := f.svc.GetOrder(ctx, o.ID)
			assert.ErrorIs(t, err, order.ErrOrderNotFound)

			referenced, err := f.orders.IsMaterialReferenced(ctx, gold.ID())
			require.NoError(t, err)
			assert.False(t, referenced)
		})
	}
}

func TestListOrdersAndCounts(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	first := newOrder(t, f)
	newOrder(t, f)

	done := "completed"
	_, err := f.svc.UpdateOrder(ctx, first.ID, UpdateOrderRequest{Status: &done})
	require.NoError(t, err)

	completed, err := f.svc.ListOrders(ctx, ListOrdersQuery{Status: "Completed"})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, first.ID, completed[0].ID)

	mine, err := f.svc.ClientOrders(ctx, f.client.ID())
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := f.svc.WorkerOrders(ctx, f.worker.ID())
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.ListOrders(ctx, ListOrdersQuery{Status: "lost"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	counts, err := f.svc.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Processing": 1, "InProgress": 0, "Completed": 1}, counts)
}

type failingOrders struct {
	*memory.OrderRepository
}

func (failingOrders) Save(context.Context, *order.Order) error {
	return errors.New("disk full")
}

func TestCommands_WrapStorageFailures(t *testing.T) {
	f := newFixture(t, Policy{})
	gold := f.material(t, "gold 585", 4200, 10)
	svc := NewService(Repositories{
		Orders:    failingOrders{f.orders},
		Materials: f.materials,
		Clients:   memory.NewClientRepository(f.store),
		Workers:   memory.NewWorkerRepository(f.store),
	}, memory.NewUnitOfWorkFactory(f.store), f.events, Policy{})

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		ClientID: f.client.ID(),
		Lines:    []LineRequest{{MaterialID: gold.ID(), Amount: 2}},
	})
	assert.ErrorIs(t, err, shared.ErrTransactionFailed)
	assert.Equal(t, 10, f.balance(t, gold.ID()))
}
