package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("GRPC_HEALTH_PORT", "")
	t.Setenv("CATALOG_TIMEOUT", "")

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Postgres.Enabled())
	assert.False(t, cfg.GRPC.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, "user-id", cfg.WS.UserHeader)
	assert.Equal(t, 3, cfg.Rooms.IDRetries)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("DB_HOST", "postgres")
	t.Setenv("CATALOG_TIMEOUT", "750ms")
	t.Setenv("WS_SEND_BUFFER", "64")
	t.Setenv("GRPC_HEALTH_PORT", "9091")

	cfg := FromEnv()

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Postgres.Enabled())
	assert.True(t, cfg.GRPC.Enabled())
	assert.Equal(t, 750*time.Millisecond, cfg.Catalog.Timeout)
	assert.Equal(t, 64, cfg.WS.SendBuffer)
}

func TestFromEnvMalformedFallsBack(t *testing.T) {
	t.Setenv("CATALOG_TIMEOUT", "soon")
	t.Setenv("WS_SEND_BUFFER", "-3")
	t.Setenv("ROOM_ID_RETRIES", "many")

	cfg := FromEnv()

	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 16, cfg.WS.SendBuffer)
	assert.Equal(t, 3, cfg.Rooms.IDRetries)
}
