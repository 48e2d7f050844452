// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the environment-driven settings for the realtime server.
// Values are read once at startup; godotenv autoload in main populates the
// environment from a local .env file during development.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string

	// RedisAddr and RedisDB locate the ephemeral runtime store.
	RedisAddr string
	RedisDB   int

	// CountdownSeconds is the number of ticks between a lobby entering
	// "starting" and the game activating.
	CountdownSeconds int

	// TickInterval is the duration of one countdown/engine tick. Production
	// uses one second; tests shrink it.
	TickInterval time.Duration

	// LogLevel is a logrus level name ("debug", "info", ...).
	LogLevel string
}

// Load reads the configuration from the environment, applying defaults for
// anything unset. Postgres settings are consumed directly by the database
// package (POSTGRES_USER et al.), mirroring how the pool is constructed.
func Load() Config {
	return Config{
		Addr:             ":" + getEnv("PORT", "8080"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		CountdownSeconds: getEnvInt("COUNTDOWN_SECONDS", 10),
		TickInterval:     time.Duration(getEnvInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
