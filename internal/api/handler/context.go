package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vicebank/vicebank-client/internal/api/middleware"
)

// ctxSubject returns the account id injected by the Auth middleware. An
// empty subject means the route was mounted without Auth.
func ctxSubject(c echo.Context) (string, error) {
	sub, _ := c.Get(middleware.CtxSubject).(string)
	if sub == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return sub, nil
}
