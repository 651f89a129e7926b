package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the operator's steward configuration after defaults and
// environment overrides.
type Config struct {
	APIBind          string                 `toml:"api_bind" env:"API_BIND"`
	APIToken         string                 `toml:"api_token" env:"API_TOKEN"`
	LogDir           string                 `toml:"log_dir" env:"LOG_DIR"`
	LogLevel         string                 `toml:"log_level" env:"LOG_LEVEL"`
	PageSize         int                    `toml:"page_size" env:"PAGE_SIZE"`
	MaxPageSize      int                    `toml:"max_page_size"`
	SearchDebounceMS int                    `toml:"search_debounce_ms"`
	PollSeconds      int                    `toml:"poll_seconds"`
	Tables           map[string]TableConfig `toml:"tables" env:"-"`
}

// TableConfig overrides per-resource table behaviour.
type TableConfig struct {
	ServerPagination *bool `toml:"server_pagination"`
}

const (
	envPrefix = "STEWARD_"

	defaultConfigPath  = "~/.config/steward/config.toml"
	defaultLogDir      = "~/.local/state/steward"
	defaultAPIBind     = "127.0.0.1:8080"
	defaultLogLevel    = "info"
	defaultPageSize    = 10
	defaultMaxPageSize = 100
	defaultDebounceMS  = 300
	defaultPollSeconds = 30
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBind:          defaultAPIBind,
		LogDir:           mustExpand(defaultLogDir),
		LogLevel:         defaultLogLevel,
		PageSize:         defaultPageSize,
		MaxPageSize:      defaultMaxPageSize,
		SearchDebounceMS: defaultDebounceMS,
		PollSeconds:      defaultPollSeconds,
	}
}

// Load reads the TOML file at path (or the default location), applies
// STEWARD_* environment overrides and fills in defaults. A missing file is
// not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.APIBind = strings.TrimSpace(c.APIBind)
	if c.APIBind == "" {
		c.APIBind = defaultAPIBind
	}
	c.APIToken = strings.TrimSpace(c.APIToken)

	c.LogDir = strings.TrimSpace(c.LogDir)
	if c.LogDir == "" {
		c.LogDir = defaultLogDir
	}
	c.LogDir = mustExpand(c.LogDir)

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	if c.MaxPageSize <= 0 {
		c.MaxPageSize = defaultMaxPageSize
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	c.PageSize = min(c.PageSize, c.MaxPageSize)

	if c.SearchDebounceMS == 0 {
		c.SearchDebounceMS = defaultDebounceMS
	}
	if c.PollSeconds <= 0 {
		c.PollSeconds = defaultPollSeconds
	}
}

// LogPath returns the file steward writes its own log to.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return filepath.Join(mustExpand(defaultLogDir), "steward.log")
	}
	return filepath.Join(c.LogDir, "steward.log")
}

// PollInterval is the refresh period for client-mode resources.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// DebounceWindow is the search quiescence window. Negative disables it.
func (c Config) DebounceWindow() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}

// ServerPagination reports whether resource pages on the server, falling back
// to the resource's built-in default.
func (c Config) ServerPagination(resource string, fallback bool) bool {
	t, ok := c.Tables[resource]
	if !ok || t.ServerPagination == nil {
		return fallback
	}
	return *t.ServerPagination
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
