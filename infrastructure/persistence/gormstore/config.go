// Package gormstore implements the repositories, unit of work and outbox on
// GORM. The same code serves MySQL and PostgreSQL; only the dialector differs.
package gormstore

import (
	"context"
	"fmt"
	"net"
	"time"

	"workshop/config"
	"workshop/infrastructure/persistence"
	"workshop/infrastructure/persistence/gormstore/po"
	"workshop/pkg/logger"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

// pool limits used when the config leaves them at zero.
var poolDefaults = struct {
	maxOpen, maxIdle  int
	lifetime, idleFor time.Duration
}{25, 10, 10 * time.Minute, 5 * time.Minute}

type Config struct {
	Dialect         string
	Host            string
	Port            string
	Username        string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        string
}

// FromAppConfig copies the database section.
func FromAppConfig(cfg config.DatabaseConfig) Config {
	return Config{
		Dialect:         cfg.Type,
		Host:            cfg.Host,
		Port:            cfg.Port,
		Username:        cfg.Username,
		Password:        cfg.Password,
		Database:        cfg.Database,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LogLevel:        cfg.LogLevel,
	}
}

// DSN renders the driver connection string. MySQL DSNs are built with the
// driver's own formatter so credentials are escaped.
func (c *Config) DSN() string {
	if c.Dialect == DialectPostgres {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.Host, c.Port, c.Username, c.Password, c.Database)
	}
	mc := mysqlDriver.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Collation = "utf8mb4_unicode_ci"
	mc.ReadTimeout = 10 * time.Second
	mc.WriteTimeout = 10 * time.Second
	return mc.FormatDSN()
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.Dialect {
	case DialectMySQL, "":
		return mysql.Open(c.DSN()), nil
	case DialectPostgres:
		return postgres.Open(c.DSN()), nil
	}
	return nil, fmt.Errorf("unsupported dialect %q", c.Dialect)
}

func positive[T int | time.Duration](v, fallback T) T {
	if v > 0 {
		return v
	}
	return fallback
}

func (c *Config) applyDefaults() {
	c.MaxOpenConns = positive(c.MaxOpenConns, poolDefaults.maxOpen)
	c.MaxIdleConns = min(positive(c.MaxIdleConns, poolDefaults.maxIdle), c.MaxOpenConns)
	c.ConnMaxLifetime = positive(c.ConnMaxLifetime, poolDefaults.lifetime)
	c.ConnMaxIdleTime = positive(c.ConnMaxIdleTime, poolDefaults.idleFor)
}

// Connect opens the pool. TranslateError makes duplicate keys surface as gorm.ErrDuplicatedKey.
func (c *Config) Connect(ctx context.Context) (*gorm.DB, error) {
	c.applyDefaults()

	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(logger.ParseGormLevel(c.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(c.MaxOpenConns)
	pool.SetMaxIdleConns(c.MaxIdleConns)
	pool.SetConnMaxLifetime(c.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(c.ConnMaxIdleTime)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping %s at %s: %w", c.Dialect, c.Host, err)
	}

	logger.Info("database connected",
		zap.String("dialect", c.Dialect),
		zap.String("addr", net.JoinHostPort(c.Host, c.Port)),
		zap.String("database", c.Database),
		zap.Int("max_open_conns", c.MaxOpenConns))
	return db, nil
}

// Models lists every persistence object, in dependency order.
func Models() []any {
	return []any{
		&po.MaterialPO{},
		&po.ClientPO{},
		&po.WorkerPO{},
		&po.ProviderPO{},
		&po.OrderPO{},
		&po.MatOnOrderPO{},
		&po.MatProviderPO{},
		&po.OutboxEventPO{},
	}
}

// lineMaterialFK keeps a material row alive while an order line points at it.
const lineMaterialFK = "fk_mat_on_order_material"

// AutoMigrate creates or updates the schema.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Migrator().HasConstraint(&po.MatOnOrderPO{}, lineMaterialFK) {
		return nil
	}
	err := db.Exec("ALTER TABLE mat_on_order ADD CONSTRAINT " + lineMaterialFK +
		" FOREIGN KEY (material_id) REFERENCES materials (id) ON DELETE RESTRICT").Error
	if err != nil {
		return fmt.Errorf("auto migrate: add %s: %w", lineMaterialFK, err)
	}
	return nil
}

// getDB returns the transaction carried by ctx, or the pool.
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
