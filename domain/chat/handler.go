package chat

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/logger"
	"github.com/getcalls/website/pkg/sse"
)

// Handler handles chat HTTP requests
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates a new chat handler
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log.With(logger.Scope("chat.handler")),
	}
}

// TranscriptResponse is the chat widget state.
type TranscriptResponse struct {
	ViewID     string    `json:"viewId"`
	Messages   []Message `json:"messages"`
	Starters   []string  `json:"starters"`
	Provider   string    `json:"provider"`
	Configured bool      `json:"configured"`
}

// StreamRequest is the body of a chat send.
type StreamRequest struct {
	Message string `json:"message" form:"message"`
}

// Transcript handles GET /api/views/:id/chat
func (h *Handler) Transcript(c echo.Context) error {
	viewID := c.Param("id")
	conv, err := h.svc.Conversation(viewID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, TranscriptResponse{
		ViewID:     viewID,
		Messages:   conv.Messages(),
		Starters:   Starters,
		Provider:   h.svc.ProviderName(),
		Configured: h.svc.Configured(),
	})
}

// Stream handles POST /api/views/:id/chat/stream
// Streams the reply as SSE: meta, token..., error (optional), done.
// Request errors are returned as JSON before the stream starts.
func (h *Handler) Stream(c echo.Context) error {
	viewID := c.Param("id")

	var req StreamRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}

	turn, err := h.svc.Begin(viewID, req.Message)
	if err != nil {
		return err
	}

	w := sse.NewWriter(c.Response())
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Close()

	if err := w.WriteEvent(string(sse.EventMeta), sse.NewMetaEvent(viewID, turn.MessageID(), turn.Provider())); err != nil {
		h.log.Debug("chat client gone before meta", logger.Error(err))
	}

	ctx := c.Request().Context()
	content, streamErr := turn.Stream(ctx, func(fragment string) {
		_ = w.WriteEvent(string(sse.EventToken), sse.NewTokenEvent(fragment))
	})
	if streamErr != nil {
		_ = w.WriteEvent(string(sse.EventError), sse.NewErrorEvent(h.svc.Copy().Failure))
	}
	_ = w.WriteEvent(string(sse.EventDone), sse.NewDoneEvent(content))
	return nil
}
