package config

import (
	"fmt"
	"time"
)

// GeminiConfig configures the Gemini HTTP transport.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`

	// MaxOutputTokens caps the generated page size.
	MaxOutputTokens int `yaml:"max_output_tokens"`

	// MaxContentBytes truncates file content before prompt substitution so a
	// huge source file cannot blow the request size.
	MaxContentBytes int `yaml:"max_content_bytes"`

	// MaxConcurrent bounds in-flight generateContent calls.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// DefaultGeminiConfig returns transport defaults. The content byte budget
// matches the original pipeline's 100k-character truncation.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Timeout:         "5m",
		MaxOutputTokens: 65536,
		MaxContentBytes: 100000,
		MaxConcurrent:   2,
	}
}

// Validate checks the transport settings.
func (g *GeminiConfig) Validate() error {
	if g.BaseURL == "" {
		return fmt.Errorf("gemini base_url must not be empty")
	}
	if _, err := g.ParsedTimeout(); err != nil {
		return err
	}
	if g.MaxContentBytes <= 0 {
		return fmt.Errorf("gemini max_content_bytes must be positive")
	}
	if g.MaxConcurrent <= 0 {
		return fmt.Errorf("gemini max_concurrent must be positive")
	}
	return nil
}

// ParsedTimeout returns the request timeout as a duration.
func (g *GeminiConfig) ParsedTimeout() (time.Duration, error) {
	if g.Timeout == "" {
		return 5 * time.Minute, nil
	}
	d, err := time.ParseDuration(g.Timeout)
	if err != nil {
		return 0, fmt.Errorf("gemini timeout %q: %w", g.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("gemini timeout must be positive, got %s", g.Timeout)
	}
	return d, nil
}
