package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "STORE_DRIVER", "DATABASE_URL", "CORS_ORIGIN", "JWT_SECRET", "JWT_EXPIRATION_HOURS",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CONTACT_QUEUE_NAME",
		"ADMIN_NAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.APIPort)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 72*time.Hour, cfg.JWTExp)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "contact_messages_queue", cfg.ContactQueueName)
	assert.Empty(t, cfg.AdminEmail)
}

func TestFromEnv_RequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/autohaven?sslmode=disable")
	t.Setenv("CORS_ORIGIN", "http://a.test, http://b.test ,")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ADMIN_EMAIL", "root@autohaven.test")
	t.Setenv("ADMIN_PASSWORD", "changeme")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.JWTExp)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "root@autohaven.test", cfg.AdminEmail)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIPort:     "5000",
			StoreDriver: DriverPostgres,
			DatabaseURL: "postgres://localhost/autohaven",
			CORSOrigins: []string{"http://localhost:3000"},
			JWTKey:      []byte("k"),
			JWTExp:      time.Hour,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing secret", func(c *Config) { c.JWTKey = nil }, "JWT_SECRET"},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, "STORE_DRIVER"},
		{"no origins", func(c *Config) { c.CORSOrigins = nil }, "CORS_ORIGIN"},
		{"empty port", func(c *Config) { c.APIPort = "" }, "PORT"},
		{"non-positive ttl", func(c *Config) { c.JWTExp = 0 }, "JWT_EXPIRATION_HOURS"},
		{"half admin", func(c *Config) { c.AdminEmail = "a@x.com" }, "ADMIN_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	memory := valid()
	memory.StoreDriver = DriverMemory
	memory.DatabaseURL = ""
	assert.NoError(t, memory.Validate())
}
