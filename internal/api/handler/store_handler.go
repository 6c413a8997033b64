package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/service"
)

// MirrorStore is the view of the resource store served over HTTP.
type MirrorStore interface {
	Owner() string
	SelectUser(ctx context.Context, vbUserID string) (domain.User, error)
	RefreshCurrent(ctx context.Context) error
	Snapshot() service.Snapshot
}

// UserLister refreshes and returns the account's users.
type UserLister interface {
	List(ctx context.Context) ([]domain.User, error)
}

// StoreHandler exposes the store of the account the process signed in as.
// Requests from any other subject are rejected.
type StoreHandler struct {
	store MirrorStore
	users UserLister
}

// NewStoreHandler creates a StoreHandler.
func NewStoreHandler(store MirrorStore, users UserLister) *StoreHandler {
	return &StoreHandler{store: store, users: users}
}

func (h *StoreHandler) authorize(c echo.Context) error {
	sub, err := ctxSubject(c)
	if err != nil {
		return err
	}
	if owner := h.store.Owner(); owner != "" && owner != sub {
		return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
	}
	return nil
}

// ListUsers handles GET /v1/users.
//
// @Summary      List the account's users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/users [get]
func (h *StoreHandler) ListUsers(c echo.Context) error {
	if err := h.authorize(c); err != nil {
		return err
	}
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// SelectUser handles PUT /v1/session/user.
//
// @Summary      Select the current user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      selectUserRequest  true  "User to select"
// @Success      200   {object}  userResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/session/user [put]
func (h *StoreHandler) SelectUser(c echo.Context) error {
	if err := h.authorize(c); err != nil {
		return err
	}
	var req selectUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.store.SelectUser(c.Request().Context(), req.VBUserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Snapshot handles GET /v1/snapshot. With refresh=true every collection of
// the current user is fetched first.
//
// @Summary      Cached data of the current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        refresh  query     bool  false  "Re-fetch before answering"
// @Success      200      {object}  snapshotResponse
// @Failure      422      {object}  errorResponse
// @Failure      502      {object}  errorResponse
// @Router       /v1/snapshot [get]
func (h *StoreHandler) Snapshot(c echo.Context) error {
	if err := h.authorize(c); err != nil {
		return err
	}
	if c.QueryParam("refresh") == "true" {
		if err := h.store.RefreshCurrent(c.Request().Context()); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, toSnapshotResponse(h.store.Snapshot()))
}
