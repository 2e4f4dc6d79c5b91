package cmd

import (
	"context"
	"fmt"
	"net/http"

	"workshop/api"
	apiauth "workshop/api/auth"
	apiclient "workshop/api/client"
	"workshop/api/health"
	apimaterial "workshop/api/material"
	apiorder "workshop/api/order"
	apiprovider "workshop/api/provider"
	apiworker "workshop/api/worker"
	authapp "workshop/application/auth"
	clientapp "workshop/application/client"
	materialapp "workshop/application/material"
	orderapp "workshop/application/order"
	providerapp "workshop/application/provider"
	workerapp "workshop/application/worker"
	"workshop/config"
	"workshop/domain/shared"
	"workshop/infrastructure/messaging"
	"workshop/infrastructure/security"
	"workshop/pkg/logger"
	"workshop/pkg/observability"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AppBuilder wires configuration, storage, services and the HTTP router.
type AppBuilder struct {
	cfg     *config.Config
	storage *Storage
	sink    shared.DomainEventPublisher
}

func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

// WithStorage replaces the storage selected by database.type.
func (b *AppBuilder) WithStorage(s *Storage) *AppBuilder {
	b.storage = s
	return b
}

// WithEventSink replaces the default event bus.
func (b *AppBuilder) WithEventSink(sink shared.DomainEventPublisher) *AppBuilder {
	b.sink = sink
	return b
}

// Build expects the logger to be initialized already.
func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env))

	instruments, shutdownTracing, err := observability.Init(ctx, b.cfg.Tracing, b.cfg.App.Version)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if b.storage == nil {
		if b.storage, err = NewStorage(ctx, b.cfg); err != nil {
			return nil, err
		}
	}
	if b.sink == nil {
		bus := shared.NewEventBus()
		if err := bus.Subscribe(shared.WildcardEvent, messaging.NewLogEventHandler()); err != nil {
			return nil, err
		}
		b.sink = bus
	}

	s := b.storage
	hasher := security.NewBcryptHasher(b.cfg.Auth.BcryptCost)

	orders, err := orderapp.NewTracedService(
		orderapp.NewService(orderapp.Repositories{
			Orders:    s.Orders,
			Materials: s.Materials,
			Clients:   s.Clients,
			Workers:   s.Workers,
		}, s.Factory, b.sink, orderapp.Policy{RestoreStockOnDelete: b.cfg.Order.RestoreStockOnDelete}),
		instruments.TracerProvider, instruments.MeterProvider)
	if err != nil {
		return nil, fmt.Errorf("instrument order service: %w", err)
	}

	var pinger health.Pinger
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			pinger = sqlDB
		}
	}

	var tp trace.TracerProvider
	if b.cfg.Tracing.Enabled {
		tp = instruments.TracerProvider
	}

	router := api.NewRouter(b.cfg, api.Controllers{
		Health:    health.NewController(b.cfg, pinger),
		Orders:    apiorder.NewController(orders),
		Materials: apimaterial.NewController(materialapp.NewService(s.Materials, s.Orders, s.Factory, b.sink)),
		Clients:   apiclient.NewController(clientapp.NewService(s.Clients, s.Orders, hasher, s.Factory, b.sink)),
		Workers:   apiworker.NewController(workerapp.NewService(s.Workers, s.Orders, hasher, s.Factory, b.sink)),
		Providers: apiprovider.NewController(providerapp.NewService(s.Providers, s.Materials, s.Factory, b.sink)),
		Auth:      apiauth.NewController(authapp.NewService(s.Clients, s.Workers, hasher)),
	}, tp)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	return &App{
		config:          b.cfg,
		router:          router,
		server:          server,
		storage:         s,
		shutdownTracing: shutdownTracing,
	}, nil
}
