package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderMock       = "mock"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Config selects and configures a provider.
type Config struct {
	Provider string `mapstructure:"provider"`

	Anthropic  KeyConfig `mapstructure:"anthropic"`
	OpenAI     KeyConfig `mapstructure:"openai"`
	OpenRouter KeyConfig `mapstructure:"openrouter"`
	Gemini     KeyConfig `mapstructure:"gemini"`

	Retry RetryConfig `mapstructure:"retry"`

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration `mapstructure:"timeout"`
}

// KeyConfig is the credentials and model of one provider. BaseURL is only
// used by OpenAI-compatible providers.
type KeyConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// RetryConfig controls the retry decorator.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig returns the defaults used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  KeyConfig{Model: "claude-haiku"},
		OpenAI:     KeyConfig{Model: "gpt-4o-mini"},
		OpenRouter: KeyConfig{Model: "google/gemini-2.0-flash-exp", BaseURL: openRouterBaseURL},
		Gemini:     KeyConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// Discover fills in a provider from the vendors' standard API key variables
// when cfg has no key for its selected provider. Gemini is tried first, then
// OpenAI, Anthropic and OpenRouter. It reports whether a key was found.
func Discover(cfg Config) (Config, bool) {
	if cfg.Provider == ProviderMock || cfg.key() != "" {
		return cfg, true
	}
	for _, c := range []struct {
		env      string
		provider string
		slot     *KeyConfig
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter},
	} {
		if k := os.Getenv(c.env); k != "" {
			cfg.Provider = c.provider
			c.slot.APIKey = k
			return cfg, true
		}
	}
	return cfg, false
}

// Validate checks that the selected provider is known and has a key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
		return nil
	case ProviderAnthropic, ProviderOpenAI, ProviderOpenRouter, ProviderGemini:
		if c.key() == "" {
			return fmt.Errorf("llm.%s.api_key is required for the %s provider", c.Provider, c.Provider)
		}
		return nil
	}
	return fmt.Errorf("unknown llm provider %q", c.Provider)
}

func (c Config) key() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderOpenRouter:
		return c.OpenRouter.APIKey
	case ProviderGemini:
		return c.Gemini.APIKey
	}
	return ""
}
