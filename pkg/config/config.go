// Package config loads objscope settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "OBJSCOPE_CONFIG"

// FileName is the config file looked up inside a repository's .git dir.
const FileName = "objscope.toml"

// Config stores user settings. Zero values are replaced by Default's.
type Config struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	Reflog ReflogConfig `toml:"reflog"`
	Ghosts GhostsConfig `toml:"ghosts"`
	Watch  WatchConfig  `toml:"watch"`
}

type ReflogConfig struct {
	// Limit caps listed entries; 0 lists everything.
	Limit int `toml:"limit"`
}

type GhostsConfig struct {
	// Unreachable filters candidates down to commits no ref reaches.
	Unreachable bool `toml:"unreachable"`
}

type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// Duration is a time.Duration read from a Go duration string ("350ms").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Reflog:    ReflogConfig{Limit: 50},
		Watch:     WatchConfig{Debounce: Duration{350 * time.Millisecond}},
	}
}

// Path returns the config path for a repository: $OBJSCOPE_CONFIG when
// set, else <gitDir>/objscope.toml, else "" when gitDir is empty.
func Path(gitDir string) string {
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p
	}
	if gitDir == "" {
		return ""
	}
	return filepath.Join(gitDir, FileName)
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	if c.Reflog.Limit < 0 {
		return fmt.Errorf("reflog.limit must not be negative, got %d", c.Reflog.Limit)
	}
	if c.Watch.Debounce.Duration < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}
