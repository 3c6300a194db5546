// Command rentald serves the vehicle rental line protocol over TCP and an
// operator HTTP endpoint for health, metrics and fleet administration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/rental-system/internal/api"
	"github.com/99minutos/rental-system/internal/api/middleware"
	"github.com/99minutos/rental-system/internal/core/service"
	"github.com/99minutos/rental-system/internal/infrastructure/config"
	"github.com/99minutos/rental-system/internal/infrastructure/queue"
	"github.com/99minutos/rental-system/internal/infrastructure/seed"
	"github.com/99minutos/rental-system/internal/server"
	"github.com/99minutos/rental-system/internal/session"
	"github.com/99minutos/rental-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	issueToken := flag.String("issue-token", "", "print an ADMIN ops token for the given subject and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of a token printed by -issue-token")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *issueToken != "" {
		token, err := middleware.IssueToken(cfg.OpsJWTSecret, *issueToken, middleware.RoleAdmin, *tokenTTL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "issue token:", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "rentald",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("rentald stopped")
	}
	log.Info().Msg("rentald stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		st.close(closeCtx, log)
	}()

	if cfg.SeedFile != "" {
		res, err := seed.Load(ctx, cfg.SeedFile, st.vehicles)
		if err != nil {
			return err
		}
		log.Info().
			Str("file", cfg.SeedFile).
			Int("created", res.Created).
			Int("skipped", res.Skipped).
			Msg("catalog seeded")
	}

	catalog := service.NewVehicleCatalog(st.vehicles)
	deps := session.Deps{
		Users:    service.NewUserDirectory(st.users, cfg.BcryptCost),
		Vehicles: catalog,
	}

	var audit *queue.Dispatcher
	if cfg.Audit.Enabled {
		audit = queue.NewDispatcher(cfg.Audit.Workers, st.audit, logger.Component("audit"))
		audit.Start(ctx)
		deps.Recorder = audit
	}

	srv := server.New(server.Config{
		Addr:         cfg.ListenAddr(),
		MaxLineBytes: cfg.MaxLineBytes,
	}, deps, logger.Component("server"))
	if err := srv.Listen(); err != nil {
		return err
	}

	ops := api.NewRouter(api.Deps{
		Log:       logger.Component("ops"),
		Checks:    st.checks,
		Vehicles:  st.vehicles,
		Catalog:   catalog,
		JWTSecret: cfg.OpsJWTSecret,
	})
	if cfg.OpsJWTSecret == "" {
		log.Info().Msg("OPS_JWT_SECRET not set, admin routes disabled")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(gctx); err != nil && !errors.Is(err, server.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.OpsAddr != "" {
		g.Go(func() error {
			log.Info().Str("addr", cfg.OpsAddr).Msg("ops endpoint listening")
			if err := ops.Start(cfg.OpsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ops endpoint: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("rental server: %w", err))
		}
		if err := ops.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("ops endpoint: %w", err))
		}
		if audit != nil {
			if err := audit.Close(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("audit: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
