// ABOUTME: Tests for rockfish configuration management.
// ABOUTME: Covers load, save, defaults, database paths, and path expansion.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestGetDataDirDefault(t *testing.T) {
	cfg := &Config{}
	got := cfg.GetDataDir()
	if got == "" {
		t.Error("GetDataDir() returned empty string")
	}
}

func TestGetDataDirExplicit(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/rockfish-test"}
	if got := cfg.GetDataDir(); got != "/tmp/rockfish-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/rockfish-test")
	}
}

func TestGetDBPathDefault(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/rockfish-test"}
	want := filepath.Join("/tmp/rockfish-test", "picks.sqlite")
	if got := cfg.GetDBPath(); got != want {
		t.Errorf("GetDBPath() = %q, want %q", got, want)
	}
}

func TestGetDBPathExplicit(t *testing.T) {
	cfg := &Config{DBPath: "/data/line1.sqlite"}
	if got := cfg.GetDBPath(); got != "/data/line1.sqlite" {
		t.Errorf("GetDBPath() = %q, want %q", got, "/data/line1.sqlite")
	}
}

func TestGetDBPathExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()
	cfg := &Config{DBPath: "~/picks.sqlite"}
	want := filepath.Join(home, "picks.sqlite")
	if got := cfg.GetDBPath(); got != want {
		t.Errorf("GetDBPath() = %q, want %q", got, want)
	}
}

func TestExpandPathEmpty(t *testing.T) {
	if got := ExpandPath(""); got != "" {
		t.Errorf("ExpandPath(\"\") = %q, want %q", got, "")
	}
}

func TestExpandPathAbsolute(t *testing.T) {
	if got := ExpandPath("/tmp/foo"); got != "/tmp/foo" {
		t.Errorf("ExpandPath(\"/tmp/foo\") = %q, want %q", got, "/tmp/foo")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	got := ExpandPath("~")
	if got != home {
		t.Errorf("ExpandPath(\"~\") = %q, want %q", got, home)
	}
}

func TestExpandPathTildeSlash(t *testing.T) {
	home, _ := os.UserHomeDir()

	got := ExpandPath("~/data/picks")
	want := filepath.Join(home, "data/picks")
	if got != want {
		t.Errorf("ExpandPath(\"~/data/picks\") = %q, want %q", got, want)
	}
}

func TestExpandPathRelative(t *testing.T) {
	if got := ExpandPath("data/picks"); got != "data/picks" {
		t.Errorf("ExpandPath(\"data/picks\") = %q, want %q", got, "data/picks")
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.DBPath != "" {
		t.Errorf("Expected empty DBPath, got %q", cfg.DBPath)
	}
	if cfg.DataDir != "" {
		t.Errorf("Expected empty DataDir, got %q", cfg.DataDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg := &Config{
		DBPath:  "/tmp/line1.sqlite",
		DataDir: "/tmp/rockfish-data",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if loaded.DBPath != "/tmp/line1.sqlite" {
		t.Errorf("DBPath mismatch: got %q, want %q", loaded.DBPath, "/tmp/line1.sqlite")
	}
	if loaded.DataDir != "/tmp/rockfish-data" {
		t.Errorf("DataDir mismatch: got %q, want %q", loaded.DataDir, "/tmp/rockfish-data")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "nonexistent"))

	cfg := &Config{DataDir: "/tmp/rockfish-data"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}

	configDir := filepath.Join(tmpDir, "nonexistent", "rockfish")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "rockfish")
	os.MkdirAll(configDir, 0755)
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600)

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	got := GetConfigPath()
	want := filepath.Join(tmpDir, "rockfish", "config.json")
	if got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenDB(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{DataDir: tmpDir}

	db, err := cfg.OpenDB()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	defer db.Close()

	dbPath := filepath.Join(tmpDir, "picks.sqlite")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Expected picks.sqlite to be created")
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	cfg := &Config{}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}
