package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RESTOCK_ON_CANCEL", "true")
	t.Setenv("RESOURCE_LOCK_WAIT", "2s")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.RestockOnCancel)
	assert.Equal(t, 2*time.Second, cfg.ResourceLockWait)
	assert.Equal(t, 30*time.Second, cfg.ResourceLockTTL)
	assert.Equal(t, "funeral_db", cfg.DBName)
}

func TestMySQLDSN(t *testing.T) {
	cfg := Config{DBUser: "app", DBPass: "secret", DBHost: "db", DBPort: "3307", DBName: "funeral"}
	dsn, err := cfg.MySQLDSN()
	require.NoError(t, err)
	assert.Equal(t, "app:secret@tcp(db:3307)/funeral?charset=utf8mb4&parseTime=True&loc=UTC", dsn)

	cfg.DatabaseURL = "mysql://u:p@mysql.internal/bookings?tls=true"
	dsn, err = cfg.MySQLDSN()
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(mysql.internal:3306)/bookings?charset=utf8mb4&loc=UTC&parseTime=True&tls=true", dsn)

	cfg.MySQLURL = "raw:dsn@tcp(x:1)/y"
	dsn, err = cfg.MySQLDSN()
	require.NoError(t, err)
	assert.Equal(t, "raw:dsn@tcp(x:1)/y", dsn)

	_, err = Config{MySQLURL: "mysql://u:p@host"}.MySQLDSN()
	assert.Error(t, err)
}

func TestNewRedisClientDisabled(t *testing.T) {
	client, err := NewRedisClient(Config{})
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = NewRedisClient(Config{RedisURL: "://bad"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(Config{AppEnv: "production", LogLevel: "nope"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}
