package leads

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/logger"
)

// Handler handles lead HTTP requests
type Handler struct {
	svc   *Service
	views *views.Registry
	log   *slog.Logger
}

// NewHandler creates a new leads handler
func NewHandler(svc *Service, registry *views.Registry, log *slog.Logger) *Handler {
	return &Handler{
		svc:   svc,
		views: registry,
		log:   log.With(logger.Scope("leads.handler")),
	}
}

// Submit handles POST /api/views/:id/leads
// Accepts JSON or a url-encoded form. Responds 422 with per-field messages
// when the form is invalid.
func (h *Handler) Submit(c echo.Context) error {
	v, err := h.views.Get(c.Param("id"))
	if err != nil {
		return err
	}

	var form Form
	if err := c.Bind(&form); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}

	res, err := h.svc.Submit(c.Request().Context(), v, form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// BusinessTypes handles GET /api/leads/business-types
func (h *Handler) BusinessTypes(c echo.Context) error {
	out := make([]map[string]string, 0, len(BusinessTypes))
	for _, bt := range BusinessTypes {
		out = append(out, map[string]string{"value": bt.Value, "label": bt.Label})
	}
	return c.JSON(http.StatusOK, out)
}
