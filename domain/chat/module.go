package chat

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/ratelimit"
)

// Module provides the chat assistant.
var Module = fx.Module("chat",
	fx.Provide(
		NewActiveProvider,
		NewService,
		NewHandler,
		NewLimiter,
	),
	fx.Invoke(RegisterRoutes),
)

// NewActiveProvider returns the configured backend, or nil when no
// credential is set.
func NewActiveProvider(cfg *config.Config, log *slog.Logger) (Provider, error) {
	switch cfg.Chat.ResolvedProvider() {
	case "openai":
		log.Info("chat provider selected", slog.String("provider", "openai"), slog.String("model", cfg.Chat.OpenAIModel))
		return NewOpenAIProvider(&cfg.Chat, log), nil
	case "gemini":
		p, err := NewGeminiProvider(context.Background(), &cfg.Chat, log)
		if err != nil {
			return nil, err
		}
		log.Info("chat provider selected", slog.String("provider", "gemini"), slog.String("model", cfg.Chat.GeminiModel))
		return p, nil
	}
	log.Warn("no chat provider configured, replies use the fallback text")
	return nil, nil
}

// Limiter is the per-client budget for chat sends.
type Limiter struct {
	*ratelimit.Keyed
}

func NewLimiter(cfg *config.Config) *Limiter {
	return &Limiter{ratelimit.New(ratelimit.Limit{
		PerMinute: cfg.RateLimit.ChatPerMinute,
		Burst:     cfg.RateLimit.ChatBurst,
	})}
}
