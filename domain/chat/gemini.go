package chat

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/logger"
)

// GeminiProvider streams from the Gemini API.
type GeminiProvider struct {
	client    *genai.Client
	model     string
	maxTokens int32
	log       *slog.Logger
}

// NewGeminiProvider returns nil without an API key.
func NewGeminiProvider(ctx context.Context, cfg *config.ChatConfig, log *slog.Logger) (*GeminiProvider, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GoogleAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiProvider{
		client:    client,
		model:     cfg.GeminiModel,
		maxTokens: int32(cfg.MaxOutputTokens),
		log:       log.With(logger.Scope("chat.gemini")),
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Stream(ctx context.Context, system string, history []Message, yield func(string)) error {
	contents, cfg := geminiRequest(system, history, p.maxTokens)

	got := false
	for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, cfg) {
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		if text := resp.Text(); text != "" {
			got = true
			yield(text)
		}
	}
	if !got {
		return ErrEmptyReply
	}
	return nil
}

// geminiRequest maps the transcript onto Gemini roles. Gemini requires the
// first turn to come from the user, so a leading assistant greeting is
// dropped.
func geminiRequest(system string, history []Message, maxTokens int32) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		if len(contents) == 0 && m.Role != RoleUser {
			continue
		}
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = maxTokens
	}
	return contents, cfg
}
