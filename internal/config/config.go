// ABOUTME: Gymlog configuration management with backend selection.
// ABOUTME: Reads a JSON config file, applies GYMLOG_* environment overrides, opens storage.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/charmbracelet/log"
	"github.com/harperreed/gymlog/internal/storage"
)

// Supported storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultUser is the identity workouts are recorded under when none is configured.
const DefaultUser = "local"

// Config stores gymlog configuration. Every field can be overridden by
// its GYMLOG_* environment variable.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "postgres".
	Backend string `json:"backend,omitempty" env:"GYMLOG_BACKEND"`

	// DataDir is the directory holding gymlog.db for the SQLite backend.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/gymlog.
	DataDir string `json:"data_dir,omitempty" env:"GYMLOG_DATA_DIR"`

	// DatabaseURL is the libpq connection URL for the Postgres backend.
	DatabaseURL string `json:"database_url,omitempty" env:"GYMLOG_DATABASE_URL"`

	// EnforceUniqueIdentity rejects two users sharing a clerk_user_id.
	// Off by default: the store accepts duplicates unless asked otherwise.
	EnforceUniqueIdentity bool `json:"enforce_unique_identity,omitempty" env:"GYMLOG_ENFORCE_UNIQUE_IDENTITY"`

	// User is the clerk_user_id the CLI and MCP server act as.
	User string `json:"user,omitempty" env:"GYMLOG_USER"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `json:"log_level,omitempty" env:"GYMLOG_LOG_LEVEL"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetUser returns the acting identity, defaulting to DefaultUser.
func (c *Config) GetUser() string {
	if c.User == "" {
		return DefaultUser
	}
	return c.User
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns the SQLite database path inside the data directory.
func (c *Config) GetDBPath() string {
	return filepath.Join(c.GetDataDir(), "gymlog.db")
}

// GetLogLevel parses LogLevel, defaulting to info.
func (c *Config) GetLogLevel() (log.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// StorageOptions returns the storage options implied by the config.
func (c *Config) StorageOptions(logger *log.Logger) storage.Options {
	return storage.Options{
		EnforceUniqueIdentity: c.EnforceUniqueIdentity,
		Logger:                logger,
	}
}

// OpenStorage opens the configured backend.
func (c *Config) OpenStorage(ctx context.Context, logger *log.Logger) (*storage.DB, error) {
	opts := c.StorageOptions(logger)

	switch c.GetBackend() {
	case BackendSQLite:
		return storage.Open(c.GetDBPath(), opts)
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires database_url or GYMLOG_DATABASE_URL")
		}
		return storage.OpenPostgres(ctx, c.DatabaseURL, opts)
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "gymlog", "config.json")
}

// Load reads config from disk and applies environment overrides.
// A missing file yields the defaults.
func Load() (*Config, error) {
	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
