package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is one generation call.
type Request struct {
	System string
	Prompt string
}

// Client is a unified interface for calling different LLM providers.
type Client interface {
	// Generate sends the request and returns the generated text.
	Generate(ctx context.Context, req Request) (string, error)

	// Provider returns the provider configuration for this client.
	Provider() ProviderConfig
}

// NewClient creates a client for the given provider configuration.
func NewClient(config ProviderConfig) (Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid provider config: %w", err)
	}

	base := transport{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}

	switch config.Type {
	case ProviderClaude:
		return &claudeClient{transport: base}, nil
	case ProviderOpenAI:
		return &openAIClient{transport: base}, nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// transport carries the retry loop and HTTP plumbing shared by providers.
type transport struct {
	config     ProviderConfig
	httpClient *http.Client
}

// Provider returns the provider configuration.
func (t *transport) Provider() ProviderConfig {
	return t.config
}

// withRetry calls attempt until it succeeds, backing off exponentially
// between tries. Context cancellation stops the loop immediately.
func (t *transport) withRetry(ctx context.Context, attempt func() (string, error)) (string, error) {
	var lastErr error
	for i := 0; i <= t.config.MaxRetries; i++ {
		if i > 0 {
			backoff := t.config.RetryDelay << uint(i-1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := attempt()
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", t.config.MaxRetries+1, lastErr)
}

// post sends a JSON body and decodes a JSON response into out.
func (t *transport) post(ctx context.Context, body any, headers map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncateForError(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// truncateForError keeps error messages short and free of echoed secrets.
func truncateForError(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		return s[:200] + "... (truncated)"
	}
	return s
}

type claudeClient struct {
	transport
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Generate sends the request to the Messages API.
func (c *claudeClient) Generate(ctx context.Context, req Request) (string, error) {
	body := claudeRequest{
		Model:     c.config.Model,
		MaxTokens: c.config.maxTokens(),
		System:    req.System,
		Messages:  []claudeMessage{{Role: "user", Content: req.Prompt}},
	}
	headers := map[string]string{
		"x-api-key":         c.config.APIKey,
		"anthropic-version": "2023-06-01",
	}

	return c.withRetry(ctx, func() (string, error) {
		var resp claudeResponse
		if err := c.post(ctx, body, headers, &resp); err != nil {
			return "", err
		}

		var text string
		for _, block := range resp.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}
		if text == "" {
			return "", fmt.Errorf("no text content in response")
		}
		return text, nil
	})
}

type openAIClient struct {
	transport
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Generate sends the request to the Chat Completions API.
func (c *openAIClient) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]openAIMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	body := openAIRequest{
		Model:     c.config.Model,
		Messages:  messages,
		MaxTokens: c.config.maxTokens(),
	}
	headers := map[string]string{"Authorization": "Bearer " + c.config.APIKey}

	return c.withRetry(ctx, func() (string, error) {
		var resp openAIResponse
		if err := c.post(ctx, body, headers, &resp); err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return "", fmt.Errorf("no choices in response")
		}
		return resp.Choices[0].Message.Content, nil
	})
}
