package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/rental-system/internal/api/middleware"
)

// ctxSubject returns the token subject injected by the Auth middleware.
func ctxSubject(c echo.Context) (string, error) {
	subject, _ := c.Get(middleware.CtxSubject).(string)
	if subject == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return subject, nil
}
