package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role returns the role Auth stored for the request, or "" when Auth did
// not run.
func Role(c echo.Context) string {
	role, _ := c.Get(CtxRole).(string)
	return role
}

// AdminOnly guards the destructive log routes. It must run after Auth.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role := Role(c); role != RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required, token has "+quoteRole(role))
			}
			return next(c)
		}
	}
}

func quoteRole(role string) string {
	if role == "" {
		return "none"
	}
	return `"` + role + `"`
}
