package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	MySQLDSN       string
	RedisAddr      string
	MigrationsPath string

	// Seed account created on first boot when the profiles table has
	// no entry for SeedAdminEmail.
	SeedAdminEmail    string
	SeedAdminPassword string
	SeedBranchID      string
}

// Load reads .env (if present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("skipping .env: %v", err)
	}

	return Config{
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		MySQLDSN:          envOr("MYSQL_DSN", "root:root@tcp(localhost:3306)/masuma?parseTime=true"),
		RedisAddr:         envOr("REDIS_ADDR", "localhost:6379"),
		MigrationsPath:    envOr("MIGRATIONS_PATH", "./migrations"),
		SeedAdminEmail:    envOr("SEED_ADMIN_EMAIL", "admin@masuma.africa"),
		SeedAdminPassword: envOr("SEED_ADMIN_PASSWORD", "admin123"),
		SeedBranchID:      envOr("SEED_BRANCH_ID", "f47ac10b-58cc-4372-a567-0e02b2c3d479"),
	}
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
