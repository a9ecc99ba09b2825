package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	APIPort     string
	StoreDriver string
	DatabaseURL string
	CORSOrigins []string

	JWTKey []byte
	JWTExp time.Duration

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	ContactQueueName string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads .env (when present) and the process environment into a Config
// and checks the required fields.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIPort:          getEnv("PORT", "5000"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		CORSOrigins:      splitList(getEnv("CORS_ORIGIN", "http://localhost:3000")),
		JWTKey:           []byte(getEnv("JWT_SECRET", "")),
		JWTExp:           time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		ContactQueueName: getEnv("CONTACT_QUEUE_NAME", "contact_messages_queue"),
		AdminName:        getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:       getEnv("ADMIN_EMAIL", ""),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.APIPort == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of %s, %s", c.StoreDriver, DriverPostgres, DriverMemory))
	}
	if len(c.CORSOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ORIGIN must name at least one origin"))
	}
	if len(c.JWTKey) == 0 {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTExp <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_HOURS must be positive"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
