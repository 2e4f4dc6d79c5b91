package gormstore

import (
	"testing"
	"time"

	"workshop/config"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_MySQLDSN(t *testing.T) {
	c := FromAppConfig(config.DatabaseConfig{
		Type: "mysql", Host: "db", Port: "3306",
		Username: "shop", Password: "p@ss:word", Database: "workshop",
	})

	parsed, err := mysqlDriver.ParseDSN(c.DSN())
	require.NoError(t, err)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "db:3306", parsed.Addr)
	assert.Equal(t, "workshop", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}

func TestConfig_PostgresDSN(t *testing.T) {
	c := Config{Dialect: DialectPostgres, Host: "pg", Port: "5432", Username: "u", Password: "p", Database: "workshop"}
	assert.Contains(t, c.DSN(), "host=pg port=5432")
	assert.Contains(t, c.DSN(), "dbname=workshop")
}

func TestConfig_ApplyDefaults(t *testing.T) {
	c := Config{MaxOpenConns: 4, MaxIdleConns: 50}
	c.applyDefaults()

	assert.Equal(t, 4, c.MaxOpenConns)
	assert.Equal(t, 4, c.MaxIdleConns)
	assert.Equal(t, 10*time.Minute, c.ConnMaxLifetime)
	assert.Equal(t, 5*time.Minute, c.ConnMaxIdleTime)
}

func TestConfig_UnknownDialect(t *testing.T) {
	_, err := (&Config{Dialect: "sqlite"}).dialector()
	assert.ErrorContains(t, err, "sqlite")
}
