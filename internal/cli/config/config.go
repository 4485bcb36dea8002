package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/codervisor/combo-skills/internal/cache"
	"github.com/codervisor/combo-skills/internal/llm"
	"github.com/codervisor/combo-skills/internal/registry"
	"github.com/codervisor/combo-skills/internal/synth"
)

// FileName is the configuration file base name looked up in the working
// directory (combo.yaml or combo.yml).
const FileName = "combo"

// EnvPrefix prefixes every environment override, e.g. COMBO_CACHE_BACKEND.
const EnvPrefix = "COMBO"

// Config represents the combo configuration
type Config struct {
	// Registries maps a source name to its registry base URL.
	Registries map[string]string `mapstructure:"registries"`
	Cache      CacheConfig       `mapstructure:"cache"`
	Synthesis  SynthesisConfig   `mapstructure:"synthesis"`
	Resolve    ResolveConfig     `mapstructure:"resolve"`
	Output     OutputConfig      `mapstructure:"output"`
}

// CacheConfig configures the component metadata cache
type CacheConfig struct {
	Backend string            `mapstructure:"backend"`
	TTL     time.Duration     `mapstructure:"ttl"`
	Prefix  string            `mapstructure:"prefix"`
	Redis   cache.RedisConfig `mapstructure:"redis"`
}

// SynthesisConfig selects the artifact synthesizer
type SynthesisConfig struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ResolveConfig configures component resolution
type ResolveConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// OutputConfig configures artifact emission
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load loads the configuration from combo.yaml in the working directory
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	return load(v)
}

// LoadFile loads the configuration from an explicit path. A missing file is
// an error here, unlike Load.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	// Set defaults
	v.SetDefault("registries", map[string]string{})
	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.prefix", cache.DefaultConfig().Prefix)
	v.SetDefault("cache.redis.addr", cache.DefaultRedisConfig().Addr)
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("synthesis.provider", synth.ProviderTemplate)
	v.SetDefault("synthesis.model", "")
	v.SetDefault("synthesis.base_url", "")
	v.SetDefault("synthesis.timeout", 2*time.Minute)
	v.SetDefault("resolve.concurrency", registry.DefaultConcurrency)
	v.SetDefault("resolve.timeout", 30*time.Second)
	v.SetDefault("output.dir", "")

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func load(v *viper.Viper) (*Config, error) {
	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// CacheOptions converts the cache section into backend options
func (c *Config) CacheOptions() cache.Options {
	base := cache.Config{DefaultTTL: c.Cache.TTL, Prefix: c.Cache.Prefix}
	return cache.Options{
		Backend: c.Cache.Backend,
		Config:  base,
		Redis:   c.Cache.Redis,
	}
}

// LLMProvider reports whether synthesis uses an LLM, and with which
// provider configuration. Unset fields keep the provider defaults.
func (c *Config) LLMProvider() (llm.ProviderConfig, bool) {
	provider := llm.ProviderType(c.Synthesis.Provider)
	if provider != llm.ProviderClaude && provider != llm.ProviderOpenAI {
		return llm.ProviderConfig{}, false
	}

	pc := llm.DefaultProviderConfig(provider)
	if c.Synthesis.Model != "" {
		pc.Model = c.Synthesis.Model
	}
	if c.Synthesis.BaseURL != "" {
		pc.BaseURL = c.Synthesis.BaseURL
	}
	if c.Synthesis.Timeout > 0 {
		pc.Timeout = c.Synthesis.Timeout
	}
	return pc, true
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Cache.Backend {
	case cache.BackendMemory, cache.BackendRedis, cache.BackendNone:
	default:
		return fmt.Errorf("cache.backend must be one of %s, %s, %s, got: %s",
			cache.BackendMemory, cache.BackendRedis, cache.BackendNone, cfg.Cache.Backend)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got: %s", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend == cache.BackendRedis && cfg.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when cache.backend is redis")
	}

	switch cfg.Synthesis.Provider {
	case synth.ProviderTemplate, string(llm.ProviderClaude), string(llm.ProviderOpenAI):
	default:
		return fmt.Errorf("synthesis.provider must be one of %s, %s, %s, got: %s",
			synth.ProviderTemplate, llm.ProviderClaude, llm.ProviderOpenAI, cfg.Synthesis.Provider)
	}

	if cfg.Resolve.Concurrency < 1 {
		return fmt.Errorf("resolve.concurrency must be at least 1, got: %d", cfg.Resolve.Concurrency)
	}

	for name, base := range cfg.Registries {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("registries.%s must be an absolute URL, got: %s", name, base)
		}
	}
	return nil
}
