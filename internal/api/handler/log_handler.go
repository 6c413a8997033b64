package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/service"
)

// EventLogService is the part of the local event log exposed over HTTP.
type EventLogService interface {
	Append(ctx context.Context, message string, level domain.LogLevel, opts ...service.AppendOption) (domain.LogEvent, error)
	ReadRecent(ctx context.Context) ([]domain.LogEvent, error)
	Prune(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// PruneScheduler queues a prune on the background maintenance worker.
type PruneScheduler interface {
	Trigger()
}

// LogHandler serves the local event log.
type LogHandler struct {
	logs      EventLogService
	scheduler PruneScheduler
	now       func() time.Time
}

// NewLogHandler creates a LogHandler backed by logs. With a non-nil
// scheduler, prune requests are handed to the worker instead of running
// in the request.
func NewLogHandler(logs EventLogService, scheduler PruneScheduler) *LogHandler {
	return &LogHandler{logs: logs, scheduler: scheduler, now: time.Now}
}

// List handles GET /v1/logs.
//
// @Summary      List recent log events
// @Description  Events since the start of last month, newest first.
// @Tags         logs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  logListResponse
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/logs [get]
func (h *LogHandler) List(c echo.Context) error {
	events, err := h.logs.ReadRecent(c.Request().Context())
	if err != nil {
		return err
	}
	resp := logListResponse{Count: len(events), Events: make([]logEventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, toLogEventResponse(e))
	}
	return c.JSON(http.StatusOK, resp)
}

// Append handles POST /v1/logs.
//
// @Summary      Append a log event
// @Tags         logs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      appendLogRequest  true  "Log event"
// @Success      201   {object}  logEventResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/logs [post]
func (h *LogHandler) Append(c echo.Context) error {
	var req appendLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	var opts []service.AppendOption
	if req.Timestamp != nil {
		opts = append(opts, service.WithTimestamp(*req.Timestamp))
	}
	event, err := h.logs.Append(c.Request().Context(), req.Message, domain.LogLevel(req.Level), opts...)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toLogEventResponse(event))
}

// Prune handles POST /v1/logs/prune.
//
// @Summary      Delete events older than last month
// @Description  Runs inline (200) or, when the maintenance worker is running, is queued on it (202).
// @Tags         logs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  pruneResponse
// @Success      202  {object}  pruneResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/logs/prune [post]
func (h *LogHandler) Prune(c echo.Context) error {
	before := service.RetentionBoundary(h.now())
	if h.scheduler != nil {
		h.scheduler.Trigger()
		return c.JSON(http.StatusAccepted, pruneResponse{Scheduled: true, Before: before})
	}
	removed, err := h.logs.Prune(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pruneResponse{Removed: removed, Before: before})
}

// Clear handles DELETE /v1/logs.
//
// @Summary      Destroy the local log database
// @Tags         logs
// @Security     BearerAuth
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/logs [delete]
func (h *LogHandler) Clear(c echo.Context) error {
	if err := h.logs.Clear(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
