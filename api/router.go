package api

import (
	"net/http"

	"workshop/api/auth"
	"workshop/api/client"
	"workshop/api/health"
	"workshop/api/material"
	"workshop/api/middleware"
	"workshop/api/order"
	"workshop/api/provider"
	"workshop/api/worker"
	"workshop/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Controllers groups everything mounted under /api/v1.
type Controllers struct {
	Health    *health.Controller
	Orders    *order.Controller
	Materials *material.Controller
	Clients   *client.Controller
	Workers   *worker.Controller
	Providers *provider.Controller
	Auth      *auth.Controller
}

type Router struct {
	engine      *gin.Engine
	config      *config.Config
	controllers Controllers
}

// NewRouter builds the engine and its middleware chain. tp may be nil when
// tracing is disabled.
func NewRouter(cfg *config.Config, controllers Controllers, tp trace.TracerProvider) *Router {
	switch {
	case cfg.IsDevelopment():
		gin.SetMode(gin.DebugMode)
	case gin.Mode() != gin.TestMode:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// request id first so every later middleware can log it
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	if tp != nil {
		engine.Use(middleware.TracingMiddleware(cfg.Tracing.ServiceName, tp))
	}
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))
	engine.Use(middleware.GzipMiddleware(cfg.Server.Gzip))

	return &Router{
		engine:      engine,
		config:      cfg,
		controllers: controllers,
	}
}

func (r *Router) SetupRoutes() {
	v1 := r.engine.Group("/api/v1")
	{
		r.controllers.Health.RegisterRoutes(v1)
		r.controllers.Orders.RegisterRoutes(v1)
		r.controllers.Materials.RegisterRoutes(v1)
		r.controllers.Clients.RegisterRoutes(v1)
		r.controllers.Workers.RegisterRoutes(v1)
		r.controllers.Providers.RegisterRoutes(v1)
		r.controllers.Auth.RegisterRoutes(v1)
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
		})
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
