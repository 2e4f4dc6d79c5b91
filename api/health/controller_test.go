package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"workshop/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func newEngine(db Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		App:      config.AppConfig{Version: "1.2.3", Env: "production"},
		Database: config.DatabaseConfig{Type: "mysql"},
	}
	engine := gin.New()
	NewController(cfg, db).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(newEngine(fakePinger{}), "/api/v1/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "healthy", resp.Checks["database"].Status)
	assert.Nil(t, resp.Runtime)
}

func TestHealth_DatabaseDown(t *testing.T) {
	engine := newEngine(fakePinger{err: errors.New("connection refused")})

	w := get(engine, "/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	assert.Equal(t, http.StatusServiceUnavailable, get(engine, "/api/v1/health/ready").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/health/live").Code)
}

func TestReadiness_WithoutDatabase(t *testing.T) {
	w := get(newEngine(nil), "/api/v1/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
}
