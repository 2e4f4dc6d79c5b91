// Command worker relays outbox rows to Kafka, or to the log when no brokers
// are configured.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"workshop/cmd"
	"workshop/config"
	"workshop/infrastructure/messaging"
	"workshop/infrastructure/persistence/gormstore"
	"workshop/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := parseConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	if !cfg.Worker.Enabled {
		logger.Info("Outbox worker is disabled by config; exiting")
		return nil
	}
	if cfg.Database.Type == "memory" {
		return errors.New("outbox worker needs database.type mysql or postgres")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := cmd.OpenDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	worker, err := gormstore.NewOutboxWorker(gormstore.NewOutboxRepository(db), publisher, cfg.Worker)
	if err != nil {
		return fmt.Errorf("failed to create outbox worker: %w", err)
	}

	logger.Info("Outbox worker started",
		zap.Duration("poll_interval", cfg.Worker.PollInterval),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
	)

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("outbox worker exited with error: %w", err)
	}

	logger.Info("Outbox worker stopped")
	return nil
}

func newPublisher(cfg *config.Config) (messaging.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Warn("No Kafka brokers configured, outbox events go to the log")
		return messaging.LoggingPublisher{}, nil
	}
	writer, err := messaging.NewKafkaWriter(cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka writer: %w", err)
	}
	logger.Info("Publishing outbox events to Kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic))
	return messaging.NewKafkaPublisher(writer), nil
}

func parseConfigPath() string {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()
	return configPath
}
