// Package llm provides minimal clients for the hosted language model APIs
// used to synthesize skill documents.
package llm

import (
	"fmt"
	"os"
	"time"
)

// ProviderType represents the type of LLM provider.
type ProviderType string

const (
	// ProviderClaude represents Anthropic's Messages API.
	ProviderClaude ProviderType = "claude"

	// ProviderOpenAI represents OpenAI's Chat Completions API.
	ProviderOpenAI ProviderType = "openai"
)

// Default endpoints per provider.
const (
	claudeURL = "https://api.anthropic.com/v1/messages"
	openAIURL = "https://api.openai.com/v1/chat/completions"
)

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	// Type is the provider type (claude, openai).
	Type ProviderType

	// Model is the model identifier sent with every request.
	Model string

	// APIKey authenticates requests.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Timeout bounds a single API call.
	Timeout time.Duration

	// MaxRetries is the number of times to retry failed requests.
	MaxRetries int

	// MaxTokens caps the response length.
	MaxTokens int

	// RetryDelay is the first backoff delay; it doubles on each retry.
	RetryDelay time.Duration
}

// DefaultProviderConfig returns the defaults for a provider, reading the API
// key from ANTHROPIC_API_KEY or OPENAI_API_KEY.
func DefaultProviderConfig(provider ProviderType) ProviderConfig {
	cfg := ProviderConfig{
		Type:       provider,
		Timeout:    60 * time.Second,
		MaxRetries: 2,
		MaxTokens:  4096,
		RetryDelay: time.Second,
	}

	switch provider {
	case ProviderClaude:
		cfg.Model = "claude-sonnet-4-5"
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case ProviderOpenAI:
		cfg.Model = "gpt-4o"
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg
}

// Validate checks that a provider configuration is usable.
func (p *ProviderConfig) Validate() error {
	if p.Type != ProviderClaude && p.Type != ProviderOpenAI {
		return fmt.Errorf("invalid provider type: %q", p.Type)
	}

	if p.Model == "" {
		return fmt.Errorf("model must be specified")
	}

	if p.APIKey == "" {
		return fmt.Errorf("API key must be provided for %s", p.Type)
	}

	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if p.MaxRetries < 0 {
		return fmt.Errorf("MaxRetries must be non-negative")
	}

	return nil
}

// String returns a human-readable identifier for the provider.
func (p *ProviderConfig) String() string {
	return fmt.Sprintf("%s:%s", p.Type, p.Model)
}

func (p *ProviderConfig) endpoint() string {
	if p.BaseURL != "" {
		return p.BaseURL
	}
	if p.Type == ProviderOpenAI {
		return openAIURL
	}
	return claudeURL
}

func (p *ProviderConfig) maxTokens() int {
	if p.MaxTokens > 0 {
		return p.MaxTokens
	}
	return 4096
}
