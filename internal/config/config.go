// Package config loads folio settings from defaults, an optional YAML file
// and FOLIO_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "folio.yaml"

// EnvPrefix marks environment overrides: FOLIO_SERVER_ADDR sets server.addr.
const EnvPrefix = "FOLIO_"

// Config holds all folio settings.
type Config struct {
	Site    SiteConfig    `yaml:"site" koanf:"site"`
	Content ContentConfig `yaml:"content" koanf:"content"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Console ConsoleConfig `yaml:"console" koanf:"console"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
}

// SiteConfig describes the page owner.
type SiteConfig struct {
	Title       string `yaml:"title" koanf:"title"`
	Owner       string `yaml:"owner" koanf:"owner"`
	Description string `yaml:"description" koanf:"description"`
	Email       string `yaml:"email" koanf:"email"`
	URL         string `yaml:"url" koanf:"url"`
}

// ContentConfig locates the portfolio document.
type ContentConfig struct {
	// Source is a file path or an http(s) URL.
	Source string `yaml:"source" koanf:"source"`

	// FetchTimeout bounds one load. Zero means no timeout.
	FetchTimeout time.Duration `yaml:"fetch_timeout" koanf:"fetch_timeout"`
}

// ServerConfig configures folio serve.
type ServerConfig struct {
	Addr            string        `yaml:"addr" koanf:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins" koanf:"allowed_origins"`
	Watch           bool          `yaml:"watch" koanf:"watch"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`

	// MaxSessions caps live sessions. /healthz reports degraded at the cap.
	MaxSessions int `yaml:"max_sessions" koanf:"max_sessions"`
}

// ConsoleConfig configures folio console.
type ConsoleConfig struct {
	// PrefsFile keeps the theme preference between runs.
	PrefsFile string `yaml:"prefs_file" koanf:"prefs_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
	File   string `yaml:"file" koanf:"file"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{
			Source: "data.json",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			MaxSessions:     1000,
		},
		Console: ConsoleConfig{
			PrefsFile: defaultPrefsFile(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultPrefsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".folio-prefs"
	}
	return filepath.Join(dir, "golivefolio", "prefs")
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// The first underscore separates the section: FOLIO_SERVER_SHUTDOWN_TIMEOUT
	// -> server.shutdown_timeout.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

var validFormats = map[string]bool{"text": true, "json": true}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Content.Source == "" {
		return fmt.Errorf("content.source is required")
	}
	if c.Content.FetchTimeout < 0 {
		return fmt.Errorf("content.fetch_timeout must be non-negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if c.Server.MaxSessions <= 0 {
		return fmt.Errorf("server.max_sessions must be positive")
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// WatchPath returns the file to watch for content changes, or "" when the
// source is not a local file.
func (c ContentConfig) WatchPath() string {
	lower := strings.ToLower(c.Source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ""
	}
	return c.Source
}
