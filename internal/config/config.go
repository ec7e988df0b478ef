package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port        string
	DatabaseDSN string
	Env         string
	UploadDir   string
	// StrictLines rejects malformed sale lines instead of silently dropping
	// them (the historical behavior).
	StrictLines bool
	// RestockOnDelete returns sold quantities to stock when a sale is deleted.
	RestockOnDelete bool
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "pos.db")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.UploadDir = getEnv("UPLOAD_DIR", "static/uploads")
	cfg.StrictLines = ParseBool("SALES_STRICT_LINES", false)
	cfg.RestockOnDelete = ParseBool("SALES_RESTOCK_ON_DELETE", true)
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
