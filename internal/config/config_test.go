// ABOUTME: Tests for gymlog configuration management.
// ABOUTME: Covers load, save, environment overrides, backend selection, and path expansion.
package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

// isolate points the config lookup at an empty temp dir and clears GYMLOG_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{
		"GYMLOG_BACKEND",
		"GYMLOG_DATA_DIR",
		"GYMLOG_DATABASE_URL",
		"GYMLOG_ENFORCE_UNIQUE_IDENTITY",
		"GYMLOG_LOG_LEVEL",
		"GYMLOG_USER",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestGetBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    string
	}{
		{"", BackendSQLite},
		{"sqlite", BackendSQLite},
		{"Postgres", BackendPostgres},
	}
	for _, tt := range tests {
		cfg := &Config{Backend: tt.backend}
		if got := cfg.GetBackend(); got != tt.want {
			t.Errorf("GetBackend(%q) = %q, want %q", tt.backend, got, tt.want)
		}
	}
}

func TestGetDataDir(t *testing.T) {
	home, _ := os.UserHomeDir()

	if got := (&Config{}).GetDataDir(); got == "" {
		t.Error("GetDataDir() returned empty string")
	}
	if got := (&Config{DataDir: "/tmp/gymlog-test"}).GetDataDir(); got != "/tmp/gymlog-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/gymlog-test")
	}

	cfg := &Config{DataDir: "~/lifting"}
	if got, want := cfg.GetDataDir(), filepath.Join(home, "lifting"); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
	if got, want := cfg.GetDBPath(), filepath.Join(home, "lifting", "gymlog.db"); got != want {
		t.Errorf("GetDBPath() = %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/gymlog", filepath.Join(home, "data/gymlog")},
		{"data/gymlog", "data/gymlog"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"", log.InfoLevel, false},
		{"debug", log.DebugLevel, false},
		{"warn", log.WarnLevel, false},
		{"loud", log.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := (&Config{LogLevel: tt.in}).GetLogLevel()
		if (err != nil) != tt.wantErr {
			t.Errorf("GetLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("GetLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" || cfg.DataDir != "" || cfg.EnforceUniqueIdentity {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := isolate(t)

	cfg := &Config{
		Backend:               "postgres",
		DatabaseURL:           "postgres://localhost/gymlog",
		DataDir:               "/tmp/gymlog-data",
		EnforceUniqueIdentity: true,
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "gymlog", "config.json"))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded %+v, want %+v", loaded, cfg)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)

	data, _ := json.Marshal(Config{Backend: "sqlite", DataDir: "/from/file", LogLevel: "info"})
	os.MkdirAll(filepath.Join(dir, "gymlog"), 0750)
	if err := os.WriteFile(filepath.Join(dir, "gymlog", "config.json"), data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GYMLOG_DATA_DIR", "/from/env")
	t.Setenv("GYMLOG_ENFORCE_UNIQUE_IDENTITY", "true")
	t.Setenv("GYMLOG_LOG_LEVEL", "debug")
	t.Setenv("GYMLOG_USER", "user_env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("Backend = %q, want file value %q", cfg.Backend, "sqlite")
	}
	if cfg.DataDir != "/from/env" {
		t.Errorf("DataDir = %q, want env value %q", cfg.DataDir, "/from/env")
	}
	if !cfg.EnforceUniqueIdentity {
		t.Error("EnforceUniqueIdentity should be set from env")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.GetUser() != "user_env" {
		t.Errorf("GetUser() = %q, want %q", cfg.GetUser(), "user_env")
	}
}

func TestGetUser(t *testing.T) {
	if got := (&Config{}).GetUser(); got != DefaultUser {
		t.Errorf("GetUser() = %q, want %q", got, DefaultUser)
	}
	if got := (&Config{User: "user_abc"}).GetUser(); got != "user_abc" {
		t.Errorf("GetUser() = %q, want %q", got, "user_abc")
	}
}

func TestLoadInvalidEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("GYMLOG_ENFORCE_UNIQUE_IDENTITY", "sometimes")

	if _, err := Load(); err == nil {
		t.Error("expected error for unparseable boolean")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := isolate(t)

	configDir := filepath.Join(dir, "gymlog")
	os.MkdirAll(configDir, 0755)
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600)

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	dir := isolate(t)

	want := filepath.Join(dir, "gymlog", "config.json")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStorageSQLite(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{Backend: "sqlite", DataDir: tmpDir, EnforceUniqueIdentity: true}
	db, err := cfg.OpenStorage(context.Background(), nil)
	if err != nil {
		t.Fatalf("OpenStorage() for sqlite failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "gymlog.db")); os.IsNotExist(err) {
		t.Error("Expected gymlog.db to be created")
	}
	if !db.UniqueIdentityEnforced() {
		t.Error("expected unique identity to be enforced")
	}
}

func TestOpenStoragePostgresRequiresURL(t *testing.T) {
	cfg := &Config{Backend: "postgres"}
	if _, err := cfg.OpenStorage(context.Background(), nil); err == nil {
		t.Error("expected error when database_url is missing")
	}
}

func TestOpenStorageUnknownBackend(t *testing.T) {
	cfg := &Config{Backend: "markdown", DataDir: t.TempDir()}
	if _, err := cfg.OpenStorage(context.Background(), nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}
