package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(provider ProviderType, url string) ProviderConfig {
	cfg := DefaultProviderConfig(provider)
	cfg.APIKey = "test-key"
	cfg.BaseURL = url
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestClaudeClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be brief", req.System)
		assert.Equal(t, "describe", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"# Skill"},{"type":"text","text":" body"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(ProviderClaude, srv.URL))
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), Request{System: "be brief", Prompt: "describe"})
	require.NoError(t, err)
	assert.Equal(t, "# Skill body", text)
	assert.Equal(t, ProviderClaude, client.Provider().Type)
}

func TestOpenAIClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"generated"}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(ProviderOpenAI, srv.URL))
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), Request{System: "sys", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "generated", text)
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(ProviderClaude, srv.URL))
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := testConfig(ProviderOpenAI, srv.URL)
	cfg.MaxRetries = 1
	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.Contains(t, err.Error(), "status 400")
}

func TestNewClient_InvalidConfig(t *testing.T) {
	cfg := DefaultProviderConfig(ProviderClaude)
	cfg.APIKey = ""
	_, err := NewClient(cfg)
	assert.Error(t, err)

	_, err = NewClient(ProviderConfig{Type: "bard", Model: "x", APIKey: "k", Timeout: time.Second})
	assert.Error(t, err)
}

func TestProviderConfig_String(t *testing.T) {
	cfg := ProviderConfig{Type: ProviderOpenAI, Model: "gpt-4o"}
	assert.Equal(t, "openai:gpt-4o", cfg.String())
}
