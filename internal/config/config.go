package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/statusline/internal/audit"
	"github.com/fakeyudi/statusline/internal/collector"
	"github.com/fakeyudi/statusline/internal/session"
)

// ProjectFile is the per-project config file name, looked up in the working directory.
const ProjectFile = ".statusline.yaml"

// Config holds all configurable statusline settings.
type Config struct {
	LogPath       string        `yaml:"log_path"`
	LogFormat     audit.Format  `yaml:"log_format"` // "array" | "jsonl"
	DisableLog    bool          `yaml:"disable_log"`
	SettingsPath  string        `yaml:"settings_path"` // sandbox settings; default ~/.claude/settings.local.json
	GitTimeout    time.Duration `yaml:"git_timeout"`
	FallbackModel string        `yaml:"fallback_model"`
	EnvFile       string        `yaml:"env_file"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		LogPath:       audit.DefaultPath,
		LogFormat:     audit.FormatArray,
		GitTimeout:    collector.DefaultGitTimeout,
		FallbackModel: session.DefaultModelName,
		EnvFile:       ".env",
	}
}

// LoadGlobal reads ~/.config/statusline/config.yaml.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "statusline", "config.yaml")
	return loadFile(path, true)
}

// LoadProject reads .statusline.yaml in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(ProjectFile, false)
}

// LoadFile reads the config file at path, which must exist.
func LoadFile(path string) (*Config, error) {
	cfg, err := loadFile(path, false)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &ParseError{Path: path, Err: os.ErrNotExist}
	}
	return cfg, nil
}

// loadFile reads and parses a YAML config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults. DisableLog is set if
// either file sets it.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.LogPath != "" {
			result.LogPath = c.LogPath
		}
		if c.LogFormat != "" {
			result.LogFormat = c.LogFormat
		}
		if c.SettingsPath != "" {
			result.SettingsPath = c.SettingsPath
		}
		if c.GitTimeout > 0 {
			result.GitTimeout = c.GitTimeout
		}
		if c.FallbackModel != "" {
			result.FallbackModel = c.FallbackModel
		}
		if c.EnvFile != "" {
			result.EnvFile = c.EnvFile
		}
		result.DisableLog = result.DisableLog || c.DisableLog
	}
	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
