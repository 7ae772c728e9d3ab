// Package dictate provides the dictation pipeline configuration and
// orchestration.
package dictate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFileName is the name of the config file within ~/.vox
const ConfigFileName = "config.json"

// Transcription modes
const (
	ModeAPI   = "api"
	ModeLocal = "local"
)

// Default values for optional configuration fields
const (
	DefaultMode           = ModeAPI
	DefaultModel          = "whisper-1"
	DefaultCleanupModel   = "gpt-4o-mini"
	DefaultLanguage       = "auto"
	DefaultPasteKey       = "ctrl+v"
	DefaultLocalBinary    = "whisper-cli"
	DefaultTimeoutSeconds = 120
)

// Validation errors
var (
	ErrAPIKeyRequired     = errors.New("OPENAI_API_KEY is required for api mode")
	ErrLocalModelRequired = errors.New("local_model_path is required for local mode")
	ErrInvalidMode        = errors.New(`mode must be "api" or "local"`)
)

// Config is the dictation configuration. It is read fresh on every
// invocation since each hotkey press is a new process.
type Config struct {
	Mode           string `json:"mode"`
	TempDir        string `json:"temp_dir"`
	Model          string `json:"model"`
	CleanupModel   string `json:"cleanup_model"`
	Cleanup        *bool  `json:"cleanup"`
	Language       string `json:"language"`
	PasteKey       string `json:"paste_key"`
	ContextRules   string `json:"context_rules"`
	Journal        *bool  `json:"journal"`
	JournalDir     string `json:"journal_dir"`
	Notifications  *bool  `json:"notifications"`
	RecorderBinary string `json:"recorder_binary"`
	RecorderDevice string `json:"recorder_device"`
	LocalBinary    string `json:"local_binary"`
	LocalModelPath string `json:"local_model_path"`
	TimeoutSeconds int    `json:"timeout_seconds"`

	// APIKey comes from the environment only, never the config file.
	APIKey string `json:"-"`
}

// StateDir returns the vox state directory (~/.vox).
func StateDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".vox"), nil
}

// Load reads ~/.vox/config.json, applies defaults and environment
// overrides. A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	stateDir, err := StateDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(stateDir, ConfigFileName))
}

// LoadFrom reads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()
	cfg.expandPaths()

	return &cfg, nil
}

// applyEnv overlays environment variables onto the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("VOX_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("VOX_TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv("VOX_CLEANUP"); v != "" {
		enabled := parseBool(v)
		c.Cleanup = &enabled
	}
	if v := os.Getenv("VOX_JOURNAL"); v != "" {
		enabled := parseBool(v)
		c.Journal = &enabled
	}
	if v := os.Getenv("VOX_CONTEXT_CONFIG"); v != "" {
		c.ContextRules = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.CleanupModel = v
	}
	c.APIKey = os.Getenv("OPENAI_API_KEY")
}

// ApplyDefaults sets default values for optional fields that are empty.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	if c.TempDir == "" {
		c.TempDir = filepath.Join(os.TempDir(), "vox_records")
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.CleanupModel == "" {
		c.CleanupModel = DefaultCleanupModel
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.PasteKey == "" {
		c.PasteKey = DefaultPasteKey
	}
	if c.ContextRules == "" {
		c.ContextRules = "~/.vox/context.yml"
	}
	if c.RecorderBinary == "" {
		c.RecorderBinary = "ffmpeg"
	}
	if c.RecorderDevice == "" {
		c.RecorderDevice = "default"
	}
	if c.LocalBinary == "" {
		c.LocalBinary = DefaultLocalBinary
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Cleanup == nil {
		enabled := true
		c.Cleanup = &enabled
	}
	if c.Journal == nil {
		enabled := true
		c.Journal = &enabled
	}
	if c.Notifications == nil {
		enabled := true
		c.Notifications = &enabled
	}
}

// Validate checks mode-specific requirements.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAPI:
		if c.APIKey == "" {
			return ErrAPIKeyRequired
		}
	case ModeLocal:
		if c.LocalModelPath == "" {
			return ErrLocalModelRequired
		}
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidMode, c.Mode)
	}
	return nil
}

// Save writes the configuration to the given path with 0644 permissions.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// CleanupEnabled reports whether LLM cleanup should run.
func (c *Config) CleanupEnabled() bool {
	return c.Cleanup == nil || *c.Cleanup
}

// JournalEnabled reports whether dictations are journaled.
func (c *Config) JournalEnabled() bool {
	return c.Journal == nil || *c.Journal
}

// NotificationsEnabled reports whether desktop notifications are shown.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// expandPaths expands ~ to the user's home directory in path fields.
func (c *Config) expandPaths() {
	c.TempDir = expandTilde(c.TempDir)
	c.ContextRules = expandTilde(c.ContextRules)
	c.JournalDir = expandTilde(c.JournalDir)
	c.LocalModelPath = expandTilde(c.LocalModelPath)
}

// expandTilde expands ~ at the beginning of a path to the user's home directory.
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
