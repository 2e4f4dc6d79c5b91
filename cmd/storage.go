package cmd

import (
	"context"
	"fmt"

	"workshop/application/provider"
	"workshop/config"
	"workshop/domain/client"
	"workshop/domain/material"
	"workshop/domain/order"
	"workshop/domain/shared"
	"workshop/domain/worker"
	"workshop/infrastructure/persistence/gormstore"
	"workshop/infrastructure/persistence/memory"
	"workshop/infrastructure/persistence/retry"
	"workshop/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Storage is the set of repositories and the unit-of-work factory shared by
// every application service.
type Storage struct {
	Orders    order.Repository
	Materials material.Repository
	Clients   client.Repository
	Workers   worker.Repository
	Providers provider.Store
	Factory   shared.UnitOfWorkFactory

	// DB is nil for the in-memory store.
	DB *gorm.DB
}

// OpenDatabase connects to the configured SQL database and migrates the
// schema when asked to.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	dbCfg := gormstore.FromAppConfig(cfg.Database)
	db, err := dbCfg.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := gormstore.AutoMigrate(ctx, db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// NewStorage picks the repositories for database.type.
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.Database.Type == "memory" {
		logger.Info("Using in-memory persistence")
		store := memory.NewStore()
		return &Storage{
			Orders:    memory.NewOrderRepository(store),
			Materials: memory.NewMaterialRepository(store),
			Clients:   memory.NewClientRepository(store),
			Workers:   memory.NewWorkerRepository(store),
			Providers: memory.NewProviderRepository(store),
			Factory:   memory.NewUnitOfWorkFactory(store),
		}, nil
	}

	db, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Database.Type, err)
	}

	var outbox shared.OutboxRepository
	if cfg.Outbox.Enabled {
		outbox = gormstore.NewOutboxRepository(db)
	}
	logger.Info("Using SQL persistence",
		zap.String("dialect", cfg.Database.Type),
		zap.Bool("outbox", cfg.Outbox.Enabled))

	return &Storage{
		Orders:    gormstore.NewOrderRepository(db),
		Materials: gormstore.NewMaterialRepository(db),
		Clients:   gormstore.NewClientRepository(db),
		Workers:   gormstore.NewWorkerRepository(db),
		Providers: gormstore.NewProviderRepository(db),
		Factory:   gormstore.NewUnitOfWorkFactory(db, outbox, retry.FromAppConfig(cfg)),
		DB:        db,
	}, nil
}

func (s *Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
