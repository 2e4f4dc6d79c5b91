package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Order    OrderConfig    `mapstructure:"order"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, staging, production
}

type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	Gzip            bool            `mapstructure:"gzip"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"`  // requests per second
	Burst   int     `mapstructure:"burst"` // bucket size
}

type DatabaseConfig struct {
	Type            string        `mapstructure:"type"` // mysql, postgres, memory
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	Retry           RetryConfig   `mapstructure:"retry"`
}

// RetryConfig controls retries of transient storage failures.
// Insufficient stock is a business outcome and is never retried.
type RetryConfig struct {
	Enabled                       bool          `mapstructure:"enabled"`
	MaxAttempts                   int           `mapstructure:"max_attempts"`
	InitialDelay                  time.Duration `mapstructure:"initial_delay"`
	MaxDelay                      time.Duration `mapstructure:"max_delay"`
	BackoffFactor                 float64       `mapstructure:"backoff_factor"`
	JitterEnabled                 bool          `mapstructure:"jitter_enabled"`
	RetryOnConcurrentModification bool          `mapstructure:"retry_on_concurrent_modification"`
	RetryOnDeadlock               bool          `mapstructure:"retry_on_deadlock"`
	RetryOnLockTimeout            bool          `mapstructure:"retry_on_lock_timeout"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`

	// Rotation of file output.
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// OrderConfig holds workflow policies.
type OrderConfig struct {
	// RestoreStockOnDelete returns every line's amount to stock when an order is deleted.
	RestoreStockOnDelete bool `mapstructure:"restore_stock_on_delete"`
}

type OutboxConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// WorkerConfig configures the outbox relay process.
type WorkerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

type KafkaConfig struct {
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client_id"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Validate rejects combinations the application cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "mysql", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Outbox.Enabled && c.Database.Type == "memory" {
		return errors.New("outbox requires a sql database")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	return nil
}

// Load reads configPath (or config.yaml from . and ./config) and applies
// WORKSHOP_* environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("WORKSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// defaults seeds every key so environment overrides work without a config file.
var defaults = map[string]any{

	// App
	"app.name":    "workshop",
	"app.version": "1.0.0",
	"app.env":     "development",

	// Server
	"server.port":               "8080",
	"server.read_timeout":       "30s",
	"server.write_timeout":      "30s",
	"server.shutdown_timeout":   "10s",
	"server.rate_limit.enabled": true,
	"server.rate_limit.rate":    100,
	"server.rate_limit.burst":   200,
	"server.gzip":               true,

	// Database
	"database.type":                                   "memory",
	"database.host":                                   "localhost",
	"database.port":                                   "3306",
	"database.username":                               "root",
	"database.password":                               "",
	"database.database":                               "workshop",
	"database.max_open_conns":                         25,
	"database.max_idle_conns":                         5,
	"database.conn_max_lifetime":                      "5m",
	"database.log_level":                              "warn",
	"database.auto_migrate":                           true,
	"database.retry.enabled":                          true,
	"database.retry.max_attempts":                     3,
	"database.retry.initial_delay":                    "100ms",
	"database.retry.max_delay":                        "2s",
	"database.retry.backoff_factor":                   2.0,
	"database.retry.jitter_enabled":                   true,
	"database.retry.retry_on_concurrent_modification": true,
	"database.retry.retry_on_deadlock":                true,
	"database.retry.retry_on_lock_timeout":            true,

	// Log
	"log.level":        "info",
	"log.format":       "console",
	"log.output":       "stdout",
	"log.file_path":    "logs/workshop.log",
	"log.max_size_mb":  10,
	"log.max_backups":  5,
	"log.max_age_days": 7,
	"log.compress":     true,

	// CORS
	"cors.allow_origins":     []string{"http://localhost:3000"},
	"cors.allow_methods":     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	"cors.allow_headers":     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
	"cors.allow_credentials": true,
	"cors.max_age":           86400,

	// Workflow
	"order.restore_stock_on_delete": false,

	// Outbox and relay
	"outbox.enabled":       false,
	"worker.enabled":       true,
	"worker.poll_interval": "5s",
	"worker.batch_size":    100,
	"worker.max_retries":   5,
	"kafka.brokers":        []string{},
	"kafka.topic":          "workshop.events",
	"kafka.client_id":      "workshop-outbox",
	"tracing.enabled":      false,
	"tracing.service_name": "workshop",
	"auth.bcrypt_cost":     10,
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
