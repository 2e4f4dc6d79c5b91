package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"workshop/config"
	"workshop/domain/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namesSink struct {
	names []string
}

func (s *namesSink) Publish(event shared.DomainEvent) error {
	s.names = append(s.names, event.EventName())
	return nil
}

func (s *namesSink) Subscribe(string, shared.EventHandler) error   { return nil }
func (s *namesSink) Unsubscribe(string, shared.EventHandler) error { return nil }

func memoryConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "workshop", Version: "test", Env: "test"},
		Server:   config.ServerConfig{Port: "0"},
		Database: config.DatabaseConfig{Type: "memory"},
		Auth:     config.AuthConfig{BcryptCost: 4},
	}
}

func TestBuild_MemoryStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &namesSink{}

	app, err := NewBuilder(memoryConfig()).WithEventSink(sink).Build(context.Background())
	require.NoError(t, err)
	assert.Nil(t, app.storage.DB)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/materials",
		strings.NewReader(`{"type":"gold 585","price":4200,"balance":5}`))
	req.Header.Set("Content-Type", "application/json")
	app.GetServer().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []string{"material_created"}, sink.names)

	w = httptest.NewRecorder()
	app.GetServer().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":"memory"`)
}

func TestNewStorage_Memory(t *testing.T) {
	s, err := NewStorage(context.Background(), memoryConfig())
	require.NoError(t, err)
	assert.NotNil(t, s.Factory)
	assert.NoError(t, s.Close())
}
