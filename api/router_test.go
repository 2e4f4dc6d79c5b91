package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"workshop/api/auth"
	"workshop/api/client"
	"workshop/api/health"
	"workshop/api/material"
	"workshop/api/order"
	"workshop/api/provider"
	"workshop/api/response"
	"workshop/api/worker"
	authapp "workshop/application/auth"
	clientapp "workshop/application/client"
	materialapp "workshop/application/material"
	orderapp "workshop/application/order"
	providerapp "workshop/application/provider"
	workerapp "workshop/application/worker"
	"workshop/config"
	"workshop/infrastructure/persistence/memory"
	"workshop/infrastructure/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	factory := memory.NewUnitOfWorkFactory(store)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	materials := memory.NewMaterialRepository(store)
	orders := memory.NewOrderRepository(store)
	clients := memory.NewClientRepository(store)
	workers := memory.NewWorkerRepository(store)
	providers := memory.NewProviderRepository(store)

	cfg := &config.Config{
		App:      config.AppConfig{Name: "workshop", Version: "test", Env: "test"},
		Database: config.DatabaseConfig{Type: "memory"},
	}
	orderSvc := orderapp.NewService(orderapp.Repositories{
		Orders: orders, Materials: materials, Clients: clients, Workers: workers,
	}, factory, nil, orderapp.Policy{RestoreStockOnDelete: true})

	router := NewRouter(cfg, Controllers{
		Health:    health.NewController(cfg, nil),
		Orders:    order.NewController(orderSvc),
		Materials: material.NewController(materialapp.NewService(materials, orders, factory, nil)),
		Clients:   client.NewController(clientapp.NewService(clients, orders, hasher, factory, nil)),
		Workers:   worker.NewController(workerapp.NewService(workers, orders, hasher, factory, nil)),
		Providers: provider.NewController(providerapp.NewService(providers, materials, factory, nil)),
		Auth:      auth.NewController(authapp.NewService(clients, workers, hasher)),
	}, nil)
	router.SetupRoutes()
	return router.GetEngine()
}

type envelope struct {
	response.Response
	Data json.RawMessage `json:"data"`
}

func call(t *testing.T, engine *gin.Engine, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestRouter_OrderWorkflow(t *testing.T) {
	engine := newTestEngine(t)

	status, env := call(t, engine, http.MethodPost, "/api/v1/clients", map[string]any{
		"first": "Anna", "last": "Ivanova", "phone": "+79001234567", "username": "anna", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	anna := decode[clientapp.ClientResponse](t, env.Data)

	status, env = call(t, engine, http.MethodPost, "/api/v1/materials", map[string]any{
		"type": "gold 585", "price": 4200, "balance": 5,
	})
	require.Equal(t, http.StatusCreated, status)
	gold := decode[materialapp.MaterialResponse](t, env.Data)

	status, env = call(t, engine, http.MethodPost, "/api/v1/orders", map[string]any{
		"client_id": anna.ID,
		"lines":     []map[string]any{{"material_id": gold.ID, "amount": 3}},
	})
	require.Equal(t, http.StatusCreated, status)
	first := decode[orderapp.OrderResponse](t, env.Data)
	require.Len(t, first.Lines, 1)
	assert.Equal(t, int64(12600), first.Total.Amount)

	status, env = call(t, engine, http.MethodPost, "/api/v1/orders", map[string]any{
		"client_id": anna.ID,
		"lines":     []map[string]any{{"material_id": gold.ID, "amount": 3}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_BALANCE", env.Error)
	assert.EqualValues(t, 2, env.Details["available"])

	status, env = call(t, engine, http.MethodPatch, "/api/v1/order-lines/"+first.Lines[0].ID, map[string]any{"amount": 5})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, decode[orderapp.LineResponse](t, env.Data).Amount)

	status, env = call(t, engine, http.MethodGet, "/api/v1/materials/"+gold.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, decode[materialapp.MaterialResponse](t, env.Data).Balance)

	status, env = call(t, engine, http.MethodPatch, "/api/v1/orders/"+first.ID, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Completed", decode[orderapp.OrderResponse](t, env.Data).Status)

	status, env = call(t, engine, http.MethodGet, "/api/v1/orders?status=completed&client_id="+anna.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]orderapp.OrderResponse](t, env.Data), 1)

	status, env = call(t, engine, http.MethodGet, "/api/v1/clients/"+anna.ID+"/orders", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]orderapp.OrderResponse](t, env.Data), 1)

	status, env = call(t, engine, http.MethodGet, "/api/v1/workers/nobody/orders", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]orderapp.OrderResponse](t, env.Data))

	status, env = call(t, engine, http.MethodGet, "/api/v1/orders/stats", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decode[map[string]int](t, env.Data)["Completed"])

	status, env = call(t, engine, http.MethodDelete, "/api/v1/clients/"+anna.ID, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, env = call(t, engine, http.MethodDelete, "/api/v1/materials/"+gold.ID, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "MATERIAL_IN_USE", env.Error)

	status, _ = call(t, engine, http.MethodDelete, "/api/v1/orders/"+first.ID, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, env = call(t, engine, http.MethodGet, "/api/v1/materials/"+gold.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, decode[materialapp.MaterialResponse](t, env.Data).Balance)

	status, env = call(t, engine, http.MethodGet, "/api/v1/orders/"+first.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ORDER_NOT_FOUND", env.Error)
}

func TestRouter_BadRequests(t *testing.T) {
	engine := newTestEngine(t)

	status, env := call(t, engine, http.MethodPost, "/api/v1/orders", map[string]any{"lines": []any{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", env.Error)

	status, _ = call(t, engine, http.MethodGet, "/api/v1/orders?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, engine, http.MethodPost, "/api/v1/orders", map[string]any{"client_id": "nobody"})
	assert.Equal(t, http.StatusNotFound, status)

	status, env = call(t, engine, http.MethodPost, "/api/v1/materials/missing/balance", map[string]any{"delta": 1})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "MATERIAL_NOT_FOUND", env.Error)
}

func TestRouter_LoginAndProviders(t *testing.T) {
	engine := newTestEngine(t)

	status, env := call(t, engine, http.MethodPost, "/api/v1/workers", map[string]any{
		"first": "Petr", "phone": "89007654321", "username": "petr", "password": "secret2", "position": "jeweler",
	})
	require.Equal(t, http.StatusCreated, status)
	petr := decode[workerapp.WorkerResponse](t, env.Data)

	status, env = call(t, engine, http.MethodPost, "/api/v1/auth/login", map[string]any{"phone": "+7 900 765 43 21", "password": "secret2"})
	require.Equal(t, http.StatusOK, status)
	identity := decode[authapp.Identity](t, env.Data)
	assert.Equal(t, authapp.RoleWorker, identity.Role)
	assert.Equal(t, petr.ID, identity.ID)

	status, env = call(t, engine, http.MethodPost, "/api/v1/auth/login", map[string]any{"phone": "89007654321", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error)

	_, env = call(t, engine, http.MethodPost, "/api/v1/materials", map[string]any{"type": "silver 925", "price": 90, "balance": 100})
	silver := decode[materialapp.MaterialResponse](t, env.Data)

	status, env = call(t, engine, http.MethodPost, "/api/v1/providers", map[string]any{"name": "Uralzoloto", "inn": "6658123456"})
	require.Equal(t, http.StatusCreated, status)
	supplier := decode[providerapp.ProviderResponse](t, env.Data)

	status, _ = call(t, engine, http.MethodPut, "/api/v1/providers/"+supplier.ID+"/materials/"+silver.ID, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, engine, http.MethodGet, "/api/v1/materials/"+silver.ID+"/providers", nil)
	require.Equal(t, http.StatusOK, status)
	links := decode[[]providerapp.LinkResponse](t, env.Data)
	require.Len(t, links, 1)
	assert.Equal(t, supplier.ID, links[0].ProviderID)

	status, _ = call(t, engine, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, status)
}
