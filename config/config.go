// Package config provides configuration management for the Guardian AI adapter.
// It includes the model selection, client-side rate limiting, backend retry
// behavior, and logging preferences.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the complete Guardian configuration.
// It combines adapter settings, backend service settings, logging
// preferences, and the optional metrics endpoint into a single structure.
type Config struct {
	AI      AIConfig      `yaml:"ai"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// AIConfig holds the adapter-facing settings. It is read once at client
// construction and never mutated afterwards.
type AIConfig struct {
	// Model is the model identifier sent to the backend (default: gemini-3-pro)
	Model string `yaml:"model" validate:"required"`

	// RateLimit is the client-side ceiling in requests per minute.
	// 0 disables limiting; negative values are rejected at validation time.
	RateLimit int `yaml:"rate_limit" validate:"gte=0"`

	// SystemPrompt is the default system prompt applied when the caller
	// does not supply one
	SystemPrompt string `yaml:"system_prompt"`

	// MaxContextTokens is an advisory ceiling on the estimated size of a
	// combined prompt. Exceeding it only produces a warning; the request
	// is still dispatched.
	MaxContextTokens int `yaml:"max_context_tokens" validate:"gte=0"`
}

// GeminiConfig holds settings for the genai-backed inference service.
// These govern the service boundary only; the adapter itself performs
// no retries and no provider-side throttling.
type GeminiConfig struct {
	// Timeout bounds a single backend call (default: 60s)
	Timeout time.Duration `yaml:"timeout"`

	// RPS is an optional provider-side requests-per-second guard,
	// independent of the adapter's per-minute ceiling. 0 disables it.
	RPS float64 `yaml:"rps" validate:"gte=0"`

	// Burst is the burst capacity of the RPS guard (default: 1)
	Burst int `yaml:"burst" validate:"gte=0"`

	// Retry configuration (optional)
	Retry *RetryConfig `yaml:"retry,omitempty"`

	// CircuitBreaker configuration (optional)
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuit_breaker,omitempty"`
}

// RetryConfig defines the retry behavior for failed backend calls.
// Retries live entirely in the service layer; the adapter propagates
// whatever the service ultimately returns.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 3)
	MaxRetries int `yaml:"max_retries" validate:"gte=0"`

	// InitialDelay is the delay before the first retry (default: 300ms)
	InitialDelay time.Duration `yaml:"initial_delay"`

	// MaxDelay caps the maximum delay between retries (default: 5s)
	MaxDelay time.Duration `yaml:"max_delay"`

	// Multiplier increases the delay after each retry (default: 2)
	Multiplier float64 `yaml:"multiplier" validate:"gte=0"`
}

// CircuitBreakerConfig defines the breaker wrapped around backend dispatch.
type CircuitBreakerConfig struct {
	// MaxRequests is the number of requests allowed through in half-open state
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval is the cyclic period of the closed state
	Interval time.Duration `yaml:"interval"`

	// Timeout is the period of the open state until it becomes half-open
	Timeout time.Duration `yaml:"timeout"`

	// FailureThreshold is the number of consecutive failures needed to trip
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`

	// Format specifies log output format: json or text
	Format string `yaml:"format"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on
	Enabled bool `yaml:"enabled"`

	// Address is the listen address for the endpoint (default: :9090)
	Address string `yaml:"address"`
}

// DefaultConfig returns a configuration with sensible defaults that
// satisfy validation.
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Model:            "gemini-3-pro",
			RateLimit:        60,
			MaxContextTokens: 16384,
		},
		Gemini: GeminiConfig{
			Timeout: 60 * time.Second,
			Burst:   1,
			Retry: &RetryConfig{
				MaxRetries:   3,
				InitialDelay: 300 * time.Millisecond,
				MaxDelay:     5 * time.Second,
				Multiplier:   2,
			},
			CircuitBreaker: &CircuitBreakerConfig{
				MaxRequests:      1,
				Interval:         30 * time.Second,
				Timeout:          time.Minute,
				FailureThreshold: 3,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
		},
	}
}

// LoadFile loads configuration from a YAML file
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// expandEnvVars resolves environment variable references within
// configuration strings. It supports:
//
//  1. Standard substitution: "${GEMINI_API_KEY}"
//  2. Default value syntax: "${PORT:-9090}"
//  3. Nested references, resolved until a fixed point
func expandEnvVars(s string) string {
	result := os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			envKey := key[:i]
			defaultValue := key[i+2:]

			if val := os.Getenv(envKey); val != "" {
				return val
			}
			return defaultValue
		}

		return os.Getenv(key)
	})

	// Recursively expand until no further substitutions happen.
	prev := ""
	for prev != result {
		prev = result
		result = os.Expand(result, os.Getenv)
	}

	return result
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	// Start with defaults, then decode YAML on top of them.
	config := DefaultConfig()

	dec := yaml.NewDecoder(strings.NewReader(expanded))
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

var validate = validator.New()

// Validate checks if the configuration is valid. Range constraints are
// declared as struct tags; the semantic checks that tags cannot express
// live here.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("invalid %s: failed %q constraint", f.Namespace(), f.Tag())
		}
		return err
	}

	if c.Gemini.Timeout < 0 {
		return fmt.Errorf("negative gemini timeout: %v", c.Gemini.Timeout)
	}
	if c.Gemini.Retry != nil {
		if c.Gemini.Retry.InitialDelay < 0 {
			return fmt.Errorf("negative retry initial delay: %v", c.Gemini.Retry.InitialDelay)
		}
		if c.Gemini.Retry.MaxDelay < 0 {
			return fmt.Errorf("negative retry max delay: %v", c.Gemini.Retry.MaxDelay)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}
