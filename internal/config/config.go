package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	Env             string
	DatabaseDSN     string
	ChromePath      string
	ChromeNoSandbox bool
	ExportTimeout   time.Duration
	SettleDelay     time.Duration
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by main) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("APP_ENV", "development")
	// Default is a local sqlite file so the tool runs with zero setup;
	// point DATABASE_DSN at postgres for a shared deployment.
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "billforge.db")
	cfg.ChromePath = getEnv("CHROME_PATH", "")
	cfg.ChromeNoSandbox = ParseBool("CHROME_NO_SANDBOX", false)
	cfg.ExportTimeout = ParseDuration("EXPORT_TIMEOUT", 30*time.Second)
	cfg.SettleDelay = ParseDuration("EXPORT_SETTLE_DELAY", 100*time.Millisecond)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}

// ParseDuration reads an env var as a duration with default.
func ParseDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %s", key, v)
			return def
		}
		return d
	}
	return def
}
