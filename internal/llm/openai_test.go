package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/common"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid config",
			config: Config{APIKey: "test-key"},
		},
		{
			name:    "missing API key",
			config:  Config{},
			wantErr: true,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "gpt-4o",
				Temperature: 0.5,
				MaxTokens:   400,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newOpenAIClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := newOpenAIClient(Config{APIKey: "test-key"})
	require.NoError(t, err)

	oc := client.(*openAIClient)
	oc.baseURL = server.URL
	return oc
}

func TestOpenAIGenerateInsights(t *testing.T) {
	var gotPrompt string

	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		gotPrompt = req.Messages[1].Content

		resp := map[string]any{
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "1. Revenue is growing."}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	result, err := client.GenerateInsights(context.Background(), "Sales KPI Summary:\nTotal revenue: $50.00")
	require.NoError(t, err)
	assert.Equal(t, "1. Revenue is growing.", result.Text)
	assert.Equal(t, "gpt-4o-mini", result.Model)
	assert.Contains(t, gotPrompt, "Total revenue: $50.00")
}

func TestOpenAIGenerateInsightsErrors(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantRateL bool
	}{
		{
			name: "API error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error": "boom"}`, http.StatusInternalServerError)
			},
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error": "slow down"}`, http.StatusTooManyRequests)
			},
			wantRateL: true,
		},
		{
			name: "malformed JSON",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"choices": []}`))
			},
		},
		{
			name: "empty content",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "  "}}]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestOpenAIClient(t, tt.handler)
			_, err := client.GenerateInsights(context.Background(), "prompt")
			require.Error(t, err)
			if tt.wantRateL {
				assert.True(t, errors.Is(err, common.ErrRateLimit))
			}
		})
	}
}

func TestNewClientFactory(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "openai", provider: "openai"},
		{name: "anthropic", provider: "anthropic"},
		{name: "default is openai", provider: ""},
		{name: "case insensitive", provider: "OpenAI"},
		{name: "unknown provider", provider: "llama-on-a-boat", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(Config{Provider: tt.provider, APIKey: "k"})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}
