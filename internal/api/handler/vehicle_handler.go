package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/core/ports"
)

// VehicleHandler exposes the fleet to operators: read-only listings and the
// availability switch the protocol itself has no command for.
type VehicleHandler struct {
	vehicles ports.VehicleRepository
	catalog  ports.VehicleCatalog
	log      zerolog.Logger
}

func NewVehicleHandler(vehicles ports.VehicleRepository, catalog ports.VehicleCatalog, log zerolog.Logger) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, catalog: catalog, log: log}
}

type availabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type vehicleListResponse struct {
	Count    int              `json:"count"`
	Vehicles []domain.Vehicle `json:"vehicles"`
}

// ListAvailable handles GET /catalog/:type.
func (h *VehicleHandler) ListAvailable(c echo.Context) error {
	t, err := domain.ParseVehicleType(c.Param("type"))
	if err != nil {
		return err
	}

	vehicles, err := h.catalog.ListAvailable(c.Request().Context(), t)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vehicleListResponse{Count: len(vehicles), Vehicles: vehicles})
}

// Get handles GET /admin/vehicles/:id.
func (h *VehicleHandler) Get(c echo.Context) error {
	id, err := vehicleID(c)
	if err != nil {
		return err
	}

	v, err := h.vehicles.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

// SetAvailability handles PUT /admin/vehicles/:id/availability.
func (h *VehicleHandler) SetAvailability(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	id, err := vehicleID(c)
	if err != nil {
		return err
	}

	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.vehicles.SetAvailability(c.Request().Context(), id, *req.Available); err != nil {
		return err
	}

	h.log.Info().
		Int64("vehicle_id", id).
		Bool("available", *req.Available).
		Str("subject", subject).
		Msg("vehicle availability changed")
	return c.NoContent(http.StatusNoContent)
}

func vehicleID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid vehicle id")
	}
	return id, nil
}
