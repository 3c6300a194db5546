// Package config loads the server configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Port         int    `env:"PORT,           default=5000"`
	Host         string `env:"HOST"`
	Env          string `env:"ENV,            default=development"`
	LogLevel     string `env:"LOG_LEVEL,      default=info"`
	MaxLineBytes int    `env:"MAX_LINE_BYTES, default=65536"`
	OpsAddr      string `env:"OPS_ADDR,       default=:9090"`
	OpsJWTSecret string `env:"OPS_JWT_SECRET"`

	StoreBackend string `env:"STORE_BACKEND,     default=memory"`
	SeedFile     string `env:"CATALOG_SEED_FILE"`
	BcryptCost   int    `env:"BCRYPT_COST,       default=10"`

	Mongo    MongoConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	Audit    AuditConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=rental_system"`
}

type PostgresConfig struct {
	URL      string `env:"DB_URL"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=rental.db"`
}

// RedisConfig enables the catalog cache when Addr is set.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB,          default=0"`
	CacheTTL time.Duration `env:"CATALOG_CACHE_TTL, default=30s"`
}

type AuditConfig struct {
	Enabled bool `env:"AUDIT_ENABLED, default=true"`
	Workers int  `env:"AUDIT_WORKERS, default=4"`
}

// Load reads configuration with go-envconfig. A nil lookuper reads the
// process environment.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if c.MaxLineBytes < 64 {
		return fmt.Errorf("MAX_LINE_BYTES must be at least 64, got %d", c.MaxLineBytes)
	}
	switch c.StoreBackend {
	case BackendMemory, BackendMongo, BackendSQLite:
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return errors.New("DB_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.Audit.Workers < 1 {
		c.Audit.Workers = 1
	}
	return nil
}

// ListenAddr is the protocol listener address.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsDevelopment reports whether logs should be human readable.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// DSN returns a pgx connection string. JDBC style URLs are accepted, and
// DB_USER / DB_PASSWORD override credentials embedded in the URL.
func (c PostgresConfig) DSN() string {
	dsn := strings.TrimPrefix(c.URL, "jdbc:")
	if c.User == "" {
		return dsn
	}

	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	cred := c.User
	if c.Password != "" {
		cred += ":" + c.Password
	}
	return scheme + "://" + cred + "@" + rest
}
