package config

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=ledger port=5432 sslmode=disable"

type Config struct {
	HTTPPort       string
	DatabaseDriver string // postgres | sqlite
	DatabaseDSN    string
	AutoMigrate    bool
	JWTSecret      string
	CORSOrigins    string
	Location       *time.Location // calendar days of the daybook
	FetchTimeout   time.Duration  // per-day fetch budget of the daybook
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.DatabaseDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		log.Warn("[WARN] DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Warn("[WARN] CORS_ALLOWED_ORIGINS uses the default value")
	}

	return cfg
}

// FromEnv builds a Config without the production guards of Load. The CLI
// uses it directly since it never signs tokens.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		AutoMigrate:    ParseBool("DATABASE_AUTO_MIGRATE", true),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	loc, err := time.LoadLocation(getEnv("LEDGER_TIMEZONE", "Local"))
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	timeout, err := time.ParseDuration(getEnv("DAYBOOK_FETCH_TIMEOUT", "10s"))
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout = timeout

	return cfg, nil
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
			log.Warnf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}
