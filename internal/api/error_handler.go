package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errorStatus maps a domain sentinel to a response. An empty message
// passes the error text through; upstream marks failures of the Vice Bank
// server, which are logged as warnings.
type errorStatus struct {
	target   error
	code     int
	message  string
	upstream bool
}

// First match wins.
var errorStatuses = []errorStatus{
	{target: domain.ErrInvalidSelection, code: http.StatusUnprocessableEntity},
	{target: domain.ErrValidation, code: http.StatusBadGateway, upstream: true},
	{target: domain.ErrTransport, code: http.StatusBadGateway, upstream: true},
	{target: domain.ErrBlocked, code: http.StatusConflict, message: "log database is in use"},
	{target: domain.ErrStorageUnavailable, code: http.StatusServiceUnavailable, message: "log database unavailable"},
	{target: domain.ErrPersistence, code: http.StatusServiceUnavailable, message: "log write failed"},
	{target: domain.ErrNotAuthenticated, code: http.StatusUnauthorized, message: "no user logged in"},
}

// NewHTTPErrorHandler renders every handler error as {"error": "..."}.
// Errors outside errorStatuses are logged and answered with a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := statusOf(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func statusOf(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}

	for _, s := range errorStatuses {
		if !errors.Is(err, s.target) {
			continue
		}
		if s.upstream {
			log.Warn().Err(err).Str("path", c.Path()).Msg("vice bank server call failed")
		}
		if s.message == "" {
			return s.code, err.Error()
		}
		return s.code, s.message
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
	return http.StatusInternalServerError, "internal server error"
}
