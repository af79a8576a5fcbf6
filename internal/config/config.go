// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the checkout binary needs to run.
type Config struct {
	// BackendURL is the storefront backend base URL.
	BackendURL string

	// CallbackAddr is the listen address for the provider approval callback.
	CallbackAddr string

	// Browser is the binary used to open the payment surface.
	Browser string

	// PollInterval is the surface liveness polling interval.
	PollInterval time.Duration

	// WatchTimeout bounds a watch session. Zero disables the timeout and the
	// watcher polls until the surface closes.
	WatchTimeout time.Duration

	// FlowLogPath is the SQLite flow log location. Empty disables the log.
	FlowLogPath string

	// RedisAddr backs the resolution store. Empty selects the in-memory
	// store, which is fine when the callback listener runs in-process.
	RedisAddr string

	ServiceName string
}

// Load reads the environment. A missing .env file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BackendURL:   getEnv("SHOPFRONT_BACKEND_URL", "http://localhost:8080"),
		CallbackAddr: getEnv("SHOPFRONT_CALLBACK_ADDR", ":3000"),
		Browser:      getEnv("SHOPFRONT_BROWSER", "chromium"),
		FlowLogPath:  getEnv("SHOPFRONT_FLOWLOG_PATH", "./data/flowlog.db"),
		RedisAddr:    os.Getenv("SHOPFRONT_REDIS_ADDR"),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "shopfront-checkout"),
	}

	var err error
	if cfg.PollInterval, err = getDuration("SHOPFRONT_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.WatchTimeout, err = getDuration("SHOPFRONT_WATCH_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return d, nil
}
