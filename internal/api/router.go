package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/vicebank/vicebank-client/docs"
	"github.com/vicebank/vicebank-client/internal/api/handler"
	"github.com/vicebank/vicebank-client/internal/api/middleware"
)

// Deps are the services the local mirror serves.
type Deps struct {
	Logs   handler.EventLogService
	Store  handler.MirrorStore
	Users  handler.UserLister
	Checks map[string]handler.Check
	// Maintenance, when set, runs prune requests on the background worker.
	Maintenance handler.PruneScheduler

	JWTSecret string
	// Docs mounts the swagger UI at /swagger/*.
	Docs bool
	Log  zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// @title        Vice Bank local mirror
// @version      1.0
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))

	// --- Probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checks).Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if d.Docs {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Authenticated routes ---
	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret))
	admin := middleware.AdminOnly()

	logs := handler.NewLogHandler(d.Logs, d.Maintenance)
	v1.GET("/logs", logs.List)
	v1.POST("/logs", logs.Append)
	v1.POST("/logs/prune", logs.Prune, admin)
	v1.DELETE("/logs", logs.Clear, admin)

	store := handler.NewStoreHandler(d.Store, d.Users)
	v1.GET("/users", store.ListUsers)
	v1.PUT("/session/user", store.SelectUser)
	v1.GET("/snapshot", store.Snapshot)

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
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
