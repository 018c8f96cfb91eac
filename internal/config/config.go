package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port         string
	DatabasePath string
	Env          string
	// UseSQLMigrations switches boot from AutoMigrate to the versioned SQL
	// migration files under migrations/ (recorded in schema_migrations).
	UseSQLMigrations bool
	// LoyaltyEarnPerRs: one loyalty point accrues per this many currency units
	// spent on any non-membership bill.
	LoyaltyEarnPerRs int
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabasePath = getEnv("DATABASE_PATH", "exoticbill.db")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.UseSQLMigrations = ParseBool("MIGRATIONS", false)
	cfg.LoyaltyEarnPerRs = ParseInt("LOYALTY_EARN_PER_RS", 100)
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

// ParseInt reads an env var as a positive int with default.
func ParseInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}
