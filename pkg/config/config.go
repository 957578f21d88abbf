// Package config loads and validates the Scribe application configuration.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file
// (~/.scribe/config.yaml by default), environment variables, command-line
// flags (applied by cmd/scribe). Validation failures are fatal at startup:
// a session must not begin with placeholder credentials or an unusable
// notes root.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfig tags fatal configuration errors. Everything wrapped with it
// halts the session before any phase begins.
var ErrConfig = errors.New("invalid configuration")

// Defaults.
const (
	DefaultModel     = "gpt-4o"
	DefaultMaxTokens = 4096
)

// placeholderKeys are template values that ship in example configs. Treating
// them as real credentials would fail later with a confusing provider error.
var placeholderKeys = map[string]bool{
	"sk-your-key-here": true,
	"your-api-key":     true,
	"changeme":         true,
	"REPLACE_ME":       true,
}

// Config holds the application configuration.
type Config struct {
	// NotesRoot is the directory finalized meeting folders are created
	// under. Defaults to ~/MeetingNotes.
	NotesRoot string `yaml:"notes_root"`

	// APIKey authenticates against the completion provider.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider endpoint for OpenAI-compatible APIs.
	BaseURL string `yaml:"base_url"`

	// Model selects the completion model.
	Model string `yaml:"model"`

	// MaxTokens caps completion length.
	MaxTokens int64 `yaml:"max_tokens"`

	// CalendarPath points at the YAML calendar file. Empty disables
	// calendar integration.
	CalendarPath string `yaml:"calendar_path"`

	// OutboxPath is where reply drafts are written. Defaults to
	// ~/.scribe/outbox.
	OutboxPath string `yaml:"outbox_path"`
}

// DefaultPath returns the default config file location, ~/.scribe/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".scribe", "config.yaml"), nil
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist. A file that exists but cannot be parsed is a fatal error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Model:     DefaultModel,
		MaxTokens: DefaultMaxTokens,
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		cfg.NotesRoot = filepath.Join(homeDir, "MeetingNotes")
		cfg.OutboxPath = filepath.Join(homeDir, ".scribe", "outbox")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: cannot read config file %s: %v", ErrConfig, path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: cannot parse config file %s: %v", ErrConfig, path, err)
	}

	return cfg, nil
}

// ApplyEnv overlays environment variables onto the config.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SCRIBE_NOTES_ROOT"); v != "" {
		c.NotesRoot = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("SCRIBE_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("SCRIBE_CALENDAR"); v != "" {
		c.CalendarPath = v
	}
}

// Validate checks the assembled configuration. Every failure is wrapped with
// ErrConfig and halts startup.
func (c *Config) Validate() error {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return fmt.Errorf("%w: API key is missing (set OPENAI_API_KEY or api_key in the config file)", ErrConfig)
	}
	if placeholderKeys[key] {
		return fmt.Errorf("%w: API key is a placeholder value; replace it with a real credential", ErrConfig)
	}

	if strings.TrimSpace(c.NotesRoot) == "" {
		return fmt.Errorf("%w: notes root is not set", ErrConfig)
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive (got %d)", ErrConfig, c.MaxTokens)
	}

	return nil
}
