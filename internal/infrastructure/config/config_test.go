package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ":5000", cfg.ListenAddr())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 65536, cfg.MaxLineBytes)
	assert.Equal(t, ":9090", cfg.OpsAddr)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "rental_system", cfg.Mongo.Database)
	assert.Equal(t, "rental.db", cfg.SQLite.Path)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, 4, cfg.Audit.Workers)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":              "6000",
		"HOST":              "127.0.0.1",
		"ENV":               "production",
		"STORE_BACKEND":     "postgres",
		"DB_URL":            "jdbc:postgresql://db:5432/rental",
		"REDIS_ADDR":        "cache:6379",
		"CATALOG_CACHE_TTL": "5m",
		"AUDIT_WORKERS":     "0",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6000", cfg.ListenAddr())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, "postgresql://db:5432/rental", cfg.Postgres.DSN())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 1, cfg.Audit.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"STORE_BACKEND": "oracle"}},
		{"postgres without url", map[string]string{"STORE_BACKEND": "postgres"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"tiny line limit", map[string]string{"MAX_LINE_BYTES": "8"}},
		{"not a number", map[string]string{"PORT": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), envconfig.MapLookuper(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  PostgresConfig
		want string
	}{
		{"plain", PostgresConfig{URL: "postgres://u:p@h:5432/db"}, "postgres://u:p@h:5432/db"},
		{"jdbc", PostgresConfig{URL: "jdbc:postgresql://h/db"}, "postgresql://h/db"},
		{"user only", PostgresConfig{URL: "postgres://h/db", User: "app"}, "postgres://app@h/db"},
		{"override", PostgresConfig{URL: "jdbc:postgresql://old:pw@h/db?sslmode=disable", User: "app", Password: "s3cret"}, "postgresql://app:s3cret@h/db?sslmode=disable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
