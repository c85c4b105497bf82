// Package config holds all defectscope configuration. The on-disk format is
// a single YAML document, by default at .ai-docs/config.yaml, describing the
// wiki targets plus the Gemini, training and logging settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the conventional location of the config file relative to
// the repository root.
const DefaultPath = ".ai-docs/config.yaml"

// Config holds all defectscope configuration.
type Config struct {
	// Project identity
	ProjectName string `yaml:"project_name"`

	// Generative model used for documentation pages.
	Model string `yaml:"model"`

	// Wiki layout
	WikiDir      string `yaml:"wiki_dir"`
	TemplatesDir string `yaml:"templates_dir"`

	// Paths (relative or glob fragments) excluded from scanning.
	IgnorePatterns []string `yaml:"ignore_patterns,omitempty"`

	// Pattern -> template mappings.
	Targets []Target `yaml:"targets"`

	// Extension -> rule mappings consumed by `wiki discover`.
	AutoDiscovery map[string]DiscoveryRule `yaml:"auto_discovery,omitempty"`

	// Gemini transport settings.
	Gemini GeminiConfig `yaml:"gemini"`

	// Wiki publishing settings.
	Publish PublishConfig `yaml:"publish"`

	// Training pipeline settings.
	Train TrainConfig `yaml:"train"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ProjectName:  "defectscope",
		Model:        "gemini-2.5-flash",
		WikiDir:      "wiki_content",
		TemplatesDir: ".ai-docs/templates",
		IgnorePatterns: []string{
			".git", ".defectscope", "node_modules",
			"__pycache__", ".ipynb_checkpoints",
		},
		Gemini:  DefaultGeminiConfig(),
		Publish: DefaultPublishConfig(),
		Train:   DefaultTrainConfig(),
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the config from path, applies env overrides, and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults (with env
// overrides applied) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	return Load(path)
}

// Save writes the config as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets CI environments inject secrets without writing
// them to the config file.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if token := os.Getenv("WIKI_PUSH_TOKEN"); token != "" {
		c.Publish.Token = token
	}
	if model := os.Getenv("DEFECTSCOPE_MODEL"); model != "" {
		c.Model = model
	}
}

// Validate checks internal consistency. It does not require an API key;
// commands that call the API check for one themselves so that offline
// commands (discover, preview, train) work without credentials.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.WikiDir == "" {
		return fmt.Errorf("wiki_dir must not be empty")
	}
	for i, t := range c.Targets {
		if t.Pattern == "" {
			return fmt.Errorf("target %d (%s): pattern must not be empty", i, t.Name)
		}
		if t.Template == "" {
			return fmt.Errorf("target %d (%s): template must not be empty", i, t.Name)
		}
	}
	for ext, rule := range c.AutoDiscovery {
		if rule.Template == "" {
			return fmt.Errorf("auto_discovery %q: template must not be empty", ext)
		}
	}
	if err := c.Gemini.Validate(); err != nil {
		return err
	}
	return c.Train.Validate()
}

// LoggingConfig controls the categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}
