package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RBAC lets a request through only when the role set by Auth is one of
// allowedRoles. It must run after Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing role claim")
			}
			if !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, "role "+role+" may not manage the fleet")
			}
			return next(c)
		}
	}
}
