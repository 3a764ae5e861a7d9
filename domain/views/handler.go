package views

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/logger"
	"github.com/getcalls/website/pkg/sse"
)

// Handler exposes page-view state to the browser.
type Handler struct {
	registry  *Registry
	keepAlive time.Duration
	log       *slog.Logger
}

func NewHandler(registry *Registry, cfg *config.Config, log *slog.Logger) *Handler {
	keepAlive := cfg.Views.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 20 * time.Second
	}
	return &Handler{
		registry:  registry,
		keepAlive: keepAlive,
		log:       log.With(logger.Scope("views.handler")),
	}
}

// OpenModalRequest is the body of POST /api/views/:id/modal.
type OpenModalRequest struct {
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload"`
}

// KeyRequest is the body of POST /api/views/:id/keys.
type KeyRequest struct {
	Key string `json:"key"`
}

const maxModalIDLen = 64

// View resolves :id to a live view. Other domains' handlers use it too.
func (h *Handler) View(c echo.Context) (*View, error) {
	return h.registry.Get(c.Param("id"))
}

// CreateView handles POST /api/views
func (h *Handler) CreateView(c echo.Context) error {
	v := h.registry.Create()
	return c.JSON(http.StatusCreated, v.Snapshot())
}

// GetState handles GET /api/views/:id/state
func (h *Handler) GetState(c echo.Context) error {
	v, err := h.View(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Snapshot())
}

// OpenModal handles POST /api/views/:id/modal
func (h *Handler) OpenModal(c echo.Context) error {
	v, err := h.View(c)
	if err != nil {
		return err
	}

	var req OpenModalRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		return apperror.ErrBadRequest.WithMessage("modal id is required")
	}
	if len(req.ID) > maxModalIDLen {
		return apperror.ErrBadRequest.WithMessage("modal id is too long")
	}

	v.Modal.Open(req.ID, req.Payload)
	return c.JSON(http.StatusOK, v.Snapshot())
}

// CloseModal handles DELETE /api/views/:id/modal
func (h *Handler) CloseModal(c echo.Context) error {
	v, err := h.View(c)
	if err != nil {
		return err
	}
	v.Modal.Close()
	return c.JSON(http.StatusOK, v.Snapshot())
}

// PressKey handles POST /api/views/:id/keys
func (h *Handler) PressKey(c echo.Context) error {
	v, err := h.View(c)
	if err != nil {
		return err
	}

	var req KeyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	if req.Key == "" {
		return apperror.ErrBadRequest.WithMessage("key is required")
	}

	v.Keys.Press(req.Key)
	return c.JSON(http.StatusOK, v.Snapshot())
}

// DismissToast handles DELETE /api/views/:id/toasts/:toastId
func (h *Handler) DismissToast(c echo.Context) error {
	v, err := h.View(c)
	if err != nil {
		return err
	}
	toastID, err := strconv.ParseInt(c.Param("toastId"), 10, 64)
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid toast id")
	}
	v.Toasts.Dismiss(toastID)
	return c.JSON(http.StatusOK, v.Snapshot())
}

// Events handles GET /api/views/:id/events. It streams a state event on
// connect and after every change, with keep-alive comments in between.
func (h *Handler) Events(c echo.Context) error {
	v, err := h.View(c)
	if err != nil {
		return err
	}

	updates, cancel := v.Subscribe()
	defer cancel()

	w := sse.NewWriter(c.Response())
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Close()

	_ = w.WriteRetry(2 * time.Second)
	if err := w.WriteEvent(string(sse.EventState), v.Snapshot()); err != nil {
		return nil
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				// view evicted
				_ = w.WriteEvent(string(sse.EventDone), sse.NewDoneEvent(""))
				return nil
			}
			if err := w.WriteEvent(string(sse.EventState), snap); err != nil {
				h.log.Debug("event stream closed", slog.String("view_id", v.ID), logger.Error(err))
				return nil
			}
		case <-ticker.C:
			h.registry.Touch(v.ID)
			if err := w.WriteComment("keep-alive"); err != nil {
				return nil
			}
		}
	}
}
