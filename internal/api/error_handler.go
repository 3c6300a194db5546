package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/rental-system/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// domainStatus maps fleet sentinels to HTTP codes. An empty message shows the
// wrapped error text.
var domainStatus = []struct {
	err     error
	code    int
	message string
}{
	{domain.ErrVehicleNotFound, http.StatusNotFound, "vehicle not found"},
	{domain.ErrInvalidVehicleType, http.StatusBadRequest, "vehicle type must be CAR or BIKE"},
	{domain.ErrInvalidVehicle, http.StatusUnprocessableEntity, ""},
}

// NewHTTPErrorHandler renders every ops error as {"error": "..."}. Echo
// errors keep their code, fleet errors are mapped, anything else is logged
// and reported as a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err)
		if code == http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled ops error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, m := range domainStatus {
		if errors.Is(err, m.err) {
			if m.message == "" {
				return m.code, err.Error()
			}
			return m.code, m.message
		}
	}
	return http.StatusInternalServerError, "internal server error"
}
