package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "workshop", cfg.App.Name)
	assert.Equal(t, "memory", cfg.Database.Type)
	assert.False(t, cfg.Order.RestoreStockOnDelete)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 3, cfg.Database.Retry.MaxAttempts)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
database:
  type: mysql
  database: shop
order:
  restore_stock_on_delete: true
kafka:
  topic: jewelry.events
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("WORKSHOP_DATABASE_DATABASE", "shop_env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, "shop_env", cfg.Database.Database)
	assert.True(t, cfg.Order.RestoreStockOnDelete)
	assert.Equal(t, "jewelry.events", cfg.Kafka.Topic)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Type: "memory"},
		Auth:     AuthConfig{BcryptCost: 10},
	}
	require.NoError(t, cfg.Validate())

	cfg.Database.Type = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg.Database.Type = "memory"
	cfg.Outbox.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg.Outbox.Enabled = false
	cfg.Auth.BcryptCost = 2
	assert.Error(t, cfg.Validate())
}
