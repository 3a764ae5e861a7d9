package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/logger"
)

// OpenAIProvider streams Chat Completions.
type OpenAIProvider struct {
	client    openai.Client
	model     string
	maxTokens int64
	log       *slog.Logger
}

// NewOpenAIProvider returns nil without an API key.
func NewOpenAIProvider(cfg *config.ChatConfig, log *slog.Logger) *OpenAIProvider {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(1),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return &OpenAIProvider{
		client:    openai.NewClient(opts...),
		model:     cfg.OpenAIModel,
		maxTokens: int64(cfg.MaxOutputTokens),
		log:       log.With(logger.Scope("chat.openai")),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Stream(ctx context.Context, system string, history []Message, yield func(string)) error {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	msgs = append(msgs, openai.SystemMessage(system))
	for _, m := range history {
		if m.Role == RoleUser {
			msgs = append(msgs, openai.UserMessage(m.Content))
		} else {
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: msgs,
	}
	if p.maxTokens > 0 {
		params.MaxTokens = openai.Int(p.maxTokens)
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	got := false
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			got = true
			yield(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}
	if !got {
		return ErrEmptyReply
	}
	return nil
}
