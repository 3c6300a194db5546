// Package api is the operator-facing HTTP surface of the rental server:
// health probes, Prometheus metrics and fleet administration.
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/99minutos/rental-system/internal/api/handler"
	"github.com/99minutos/rental-system/internal/api/middleware"
	"github.com/99minutos/rental-system/internal/core/ports"
)

// Deps are the collaborators of the ops router.
type Deps struct {
	Log      zerolog.Logger
	Checks   []handler.Check
	Vehicles ports.VehicleRepository
	Catalog  ports.VehicleCatalog
	// JWTSecret enables the /admin routes when set.
	JWTSecret string
	// Registerer and Gatherer default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "ops_http",
		Registerer: deps.Registerer,
	}))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	if deps.Vehicles == nil || deps.Catalog == nil {
		return e
	}

	vehicleHandler := handler.NewVehicleHandler(deps.Vehicles, deps.Catalog, deps.Log)
	e.GET("/catalog/:type", vehicleHandler.ListAvailable)

	if deps.JWTSecret != "" {
		admin := e.Group("/admin", middleware.Auth(deps.JWTSecret), middleware.RBAC(middleware.RoleAdmin))
		admin.GET("/vehicles/:id", vehicleHandler.Get)
		admin.PUT("/vehicles/:id/availability", vehicleHandler.SetAvailability)
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Debug()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("ops request")
			return nil
		},
	})
}
