// ABOUTME: Rockfish configuration management.
// ABOUTME: Locates the pick database and data directory via XDG conventions.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rvbelefonte/rockfish/internal/pickdb"
)

// Config stores rockfish tool configuration.
type Config struct {
	// DBPath is the travel-time pick database. Supports ~ expansion.
	// Defaults to picks.sqlite inside DataDir.
	DBPath string `json:"db_path,omitempty"`

	// DataDir is the root directory for rockfish data files.
	// Supports ~ expansion. Defaults to ~/.local/share/rockfish.
	DataDir string `json:"data_dir,omitempty"`

	// LogLevel sets the minimum log level: debug, info, warn, or error.
	LogLevel string `json:"log_level,omitempty"`
}

// DataDirDefault returns the standard XDG data directory for rockfish.
func DataDirDefault() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, _ := os.UserHomeDir()
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "rockfish")
}

// GetDataDir returns the configured data directory with ~ expanded.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DataDirDefault()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns the configured pick database path with ~ expanded.
func (c *Config) GetDBPath() string {
	if c.DBPath == "" {
		return filepath.Join(c.GetDataDir(), "picks.sqlite")
	}
	return ExpandPath(c.DBPath)
}

// OpenDB opens the configured pick database, creating it if needed.
func (c *Config) OpenDB() (*pickdb.DB, error) {
	db, err := pickdb.Open(c.GetDBPath())
	if err != nil {
		return nil, fmt.Errorf("opening pick database: %w", err)
	}
	return db, nil
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

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "rockfish", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
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
