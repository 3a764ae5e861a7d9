package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/getcalls/website/domain/payments"
	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/logger"
	"github.com/getcalls/website/pkg/metrics"
	"github.com/getcalls/website/pkg/tracing"
)

// MaxMessageLength caps a visitor message in runes.
const MaxMessageLength = 2000

// Service keeps one conversation per page view and relays turns to the
// configured provider.
type Service struct {
	provider Provider
	copy     Copy
	cfg      config.ChatConfig
	views    *views.Registry
	log      *slog.Logger

	mu    sync.Mutex
	convs map[string]*Conversation
}

// NewService creates the chat service. provider may be nil, in which case
// every reply is the static fallback text.
func NewService(provider Provider, registry *views.Registry, catalog *payments.Catalog, cfg *config.Config, log *slog.Logger) *Service {
	s := &Service{
		provider: provider,
		copy:     NewCopy(cfg.Site, catalog),
		cfg:      cfg.Chat,
		views:    registry,
		log:      log.With(logger.Scope("chat.svc")),
		convs:    make(map[string]*Conversation),
	}
	registry.OnEvict(func(v *views.View) { s.drop(v.ID) })
	return s
}

// Copy returns the assistant texts.
func (s *Service) Copy() Copy { return s.copy }

// Configured reports whether replies come from a live provider.
func (s *Service) Configured() bool { return s.provider != nil }

// ProviderName returns the active provider, or "fallback".
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return "fallback"
	}
	return s.provider.Name()
}

// Conversation returns the transcript of a view, creating it on first use.
func (s *Service) Conversation(viewID string) (*Conversation, error) {
	if _, err := s.views.Get(viewID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[viewID]
	if !ok {
		conv = NewConversation(s.copy.Greeting, s.cfg.MaxHistory*2)
		s.convs[viewID] = conv
	}
	return conv, nil
}

func (s *Service) drop(viewID string) {
	s.mu.Lock()
	delete(s.convs, viewID)
	s.mu.Unlock()
}

// Turn is one visitor message and the assistant reply being produced for it.
type Turn struct {
	svc     *Service
	viewID  string
	pending *Pending
	history []Message
}

// Begin appends the visitor message and a pending reply. Empty text is a
// validation error and leaves the transcript untouched.
func (s *Service) Begin(viewID, text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.NewValidation(map[string]string{"message": "Message cannot be empty"})
	}
	if len([]rune(text)) > MaxMessageLength {
		return nil, apperror.NewValidation(map[string]string{"message": "Message is too long"})
	}

	conv, err := s.Conversation(viewID)
	if err != nil {
		return nil, err
	}
	conv.Append(RoleUser, text)
	history := conv.History(s.cfg.MaxHistory)
	return &Turn{
		svc:     s,
		viewID:  viewID,
		pending: conv.BeginAssistant(),
		history: history,
	}, nil
}

// MessageID is the id of the pending assistant message.
func (t *Turn) MessageID() int { return t.pending.ID() }

// Provider names the backend answering this turn.
func (t *Turn) Provider() string { return t.svc.ProviderName() }

// Stream produces the reply, passing each fragment to onFragment as it is
// folded into the pending message. It returns the final message content.
// On provider failure the message ends with the failure text and the error
// is returned as apperror.ErrProvider.
func (t *Turn) Stream(ctx context.Context, onFragment func(string)) (string, error) {
	s := t.svc
	provider := s.ProviderName()

	if s.provider == nil {
		t.pending.Apply(s.copy.Unavailable)
		if onFragment != nil {
			onFragment(s.copy.Unavailable)
		}
		metrics.ChatStreams.WithLabelValues(provider, "unconfigured").Inc()
		return t.pending.Finish(), nil
	}

	ctx, span := tracing.Start(ctx, "chat.stream",
		attribute.String("getcalls.view.id", t.viewID),
		attribute.String("getcalls.chat.provider", provider),
	)
	defer span.End()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.provider.Stream(ctx, s.copy.System, t.history, func(fragment string) {
		t.pending.Apply(fragment)
		if onFragment != nil {
			onFragment(fragment)
		}
	})
	metrics.ChatStreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	if err != nil {
		tracing.Fail(span, err)
		outcome := "error"
		if errors.Is(err, context.Canceled) {
			outcome = "cancelled"
		}
		metrics.ChatStreams.WithLabelValues(provider, outcome).Inc()
		s.log.Warn("chat stream failed",
			slog.String("view_id", t.viewID),
			slog.String("provider", provider),
			logger.Error(err))

		if partial := t.pending.Content(); partial != "" && outcome == "cancelled" {
			return t.pending.Finish(), apperror.ErrProvider.WithInternal(err)
		}
		t.pending.Fail(s.copy.Failure)
		return t.pending.Content(), apperror.ErrProvider.WithInternal(err)
	}

	metrics.ChatStreams.WithLabelValues(provider, "ok").Inc()
	return t.pending.Finish(), nil
}

// Send runs a whole turn: Begin followed by Stream.
func (s *Service) Send(ctx context.Context, viewID, text string, onFragment func(string)) (string, error) {
	turn, err := s.Begin(viewID, text)
	if err != nil {
		return "", err
	}
	return turn.Stream(ctx, onFragment)
}
