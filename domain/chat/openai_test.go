package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/internal/testutil"
)

type completionRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Stream    bool   `json:"stream"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func fakeOpenAI(t *testing.T, fragments []string, got *completionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for i, f := range fragments {
			chunk := map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion.chunk",
				"created": 1700000000,
				"model":   "gpt-4o-mini",
				"choices": []map[string]any{{
					"index":         0,
					"delta":         map[string]any{"content": f},
					"finish_reason": nil,
				}},
			}
			raw, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", raw)
			if i == 0 {
				w.(http.Flusher).Flush()
			}
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProvider_Stream(t *testing.T) {
	var req completionRequest
	srv := fakeOpenAI(t, []string{"Hel", "lo", "!"}, &req)

	p := NewOpenAIProvider(&config.ChatConfig{
		OpenAIAPIKey:    "sk-test",
		OpenAIBaseURL:   srv.URL + "/v1",
		OpenAIModel:     "gpt-4o-mini",
		MaxOutputTokens: 300,
	}, testutil.DiscardLogger())
	require.NotNil(t, p)

	history := []Message{
		{Role: RoleAssistant, Content: "greeting"},
		{Role: RoleUser, Content: "how much?"},
	}
	var fragments []string
	err := p.Stream(context.Background(), "be nice", history, func(s string) {
		fragments = append(fragments, s)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo", "!"}, fragments)

	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 300, req.MaxTokens)
	assert.True(t, req.Stream)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "be nice", req.Messages[0].Content)
	assert.Equal(t, "assistant", req.Messages[1].Role)
	assert.Equal(t, "user", req.Messages[2].Role)
	assert.Equal(t, "how much?", req.Messages[2].Content)
}

func TestOpenAIProvider_EmptyReply(t *testing.T) {
	srv := fakeOpenAI(t, nil, nil)
	p := NewOpenAIProvider(&config.ChatConfig{
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: srv.URL + "/v1",
		OpenAIModel:   "gpt-4o-mini",
	}, testutil.DiscardLogger())

	err := p.Stream(context.Background(), "sys", []Message{{Role: RoleUser, Content: "hi"}}, func(string) {})
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestOpenAIProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	t.Cleanup(srv.Close)

	p := NewOpenAIProvider(&config.ChatConfig{
		OpenAIAPIKey:  "sk-bad",
		OpenAIBaseURL: srv.URL + "/v1",
		OpenAIModel:   "gpt-4o-mini",
	}, testutil.DiscardLogger())

	called := false
	err := p.Stream(context.Background(), "sys", []Message{{Role: RoleUser, Content: "hi"}}, func(string) { called = true })
	require.Error(t, err)
	assert.False(t, called)
}

func TestNewOpenAIProvider_NoKey(t *testing.T) {
	assert.Nil(t, NewOpenAIProvider(&config.ChatConfig{}, testutil.DiscardLogger()))
}
