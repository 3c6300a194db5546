package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/rental-system/internal/api/handler"
	"github.com/99minutos/rental-system/internal/core/ports"
	"github.com/99minutos/rental-system/internal/infrastructure/config"
	"github.com/99minutos/rental-system/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/rental-system/internal/infrastructure/db/mongo"
	"github.com/99minutos/rental-system/internal/infrastructure/db/postgres"
	redisdb "github.com/99minutos/rental-system/internal/infrastructure/db/redis"
	"github.com/99minutos/rental-system/internal/infrastructure/db/sqlite"
	"github.com/99minutos/rental-system/internal/infrastructure/queue"
)

// stores is the wired persistence layer for one backend.
type stores struct {
	users    ports.UserRepository
	vehicles ports.VehicleRepository
	audit    ports.AuditSink
	checks   []handler.Check
	closers  []func(context.Context) error
}

func (s *stores) close(ctx context.Context, log zerolog.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	s := &stores{audit: queue.NewLogSink(log.With().Str("component", "audit").Logger())}

	switch cfg.StoreBackend {
	case config.BackendMemory:
		s.users = memory.NewUserRepository()
		s.vehicles = memory.NewVehicleRepository()

	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Disconnect)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			s.close(ctx, log)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		s.users = mongodb.NewUserRepository(db)
		s.vehicles = mongodb.NewVehicleRepository(db)
		s.audit = mongodb.NewAuditRepository(db)
		s.checks = append(s.checks, handler.Check{
			Name: "mongo",
			Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
		})

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN())
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { pool.Close(); return nil })
		if err := postgres.Migrate(ctx, pool); err != nil {
			s.close(ctx, log)
			return nil, err
		}
		s.users = postgres.NewUserRepository(pool)
		s.vehicles = postgres.NewVehicleRepository(pool)
		s.checks = append(s.checks, handler.Check{Name: "postgres", Ping: pool.Ping})

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return db.Close() })
		s.users = sqlite.NewUserRepository(db)
		s.vehicles = sqlite.NewVehicleRepository(db)
		s.checks = append(s.checks, handler.Check{Name: "sqlite", Ping: db.PingContext})

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			s.close(ctx, log)
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
		cache := redisdb.NewCatalogCache(s.vehicles, client, cfg.Redis.CacheTTL, log.With().Str("component", "catalog_cache").Logger())
		// Entries may predate this process and a reseed.
		cache.Invalidate(ctx)
		s.vehicles = cache
		s.checks = append(s.checks, handler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}

	log.Info().Str("backend", cfg.StoreBackend).Bool("catalog_cache", cfg.Redis.Addr != "").Msg("store ready")
	return s, nil
}
