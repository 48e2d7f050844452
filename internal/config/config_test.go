// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "REDIS_ADDR", "REDIS_DB", "COUNTDOWN_SECONDS", "TICK_INTERVAL_MS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 10, cfg.CountdownSeconds)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("COUNTDOWN_SECONDS", "3")
	t.Setenv("TICK_INTERVAL_MS", "250")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 3, cfg.CountdownSeconds)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 0, cfg.RedisDB) // unparseable falls back to the default
}
