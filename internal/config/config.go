// Package config manages hrsync configuration and the .hrsync directory
// structure. It handles loading, saving, and initializing the sync
// workspace configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	SyncDir        = ".hrsync"
	ConfigFile     = "config"
	HRDatabaseFile = "hr_system.db"
	PayrollDBFile  = "payroll_system.db"
	PayloadFile    = "sync_payload.json"
)

// Defaults for a freshly initialized workspace.
const (
	DefaultSourceSystem = "hr_system"
	DefaultTargetSystem = "payroll_system"
	DefaultProcessedBy  = "payroll-sync"
)

// Config represents the hrsync configuration
type Config struct {
	SourceSystem string `toml:"source_system"`
	TargetSystem string `toml:"target_system"`
	ProcessedBy  string `toml:"processed_by"` // recorded in payload metadata after apply
	path         string // path to .hrsync directory
}

// FindRoot finds the .hrsync directory by walking up from current directory
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		syncPath := filepath.Join(dir, SyncDir)
		if info, err := os.Stat(syncPath); err == nil && info.IsDir() {
			return syncPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not an hrsync workspace (or any parent up to root)")
		}
		dir = parent
	}
}

// Load loads the configuration from the .hrsync directory
func Load() (*Config, error) {
	syncPath, err := FindRoot()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(syncPath, ConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.path = syncPath
	return &cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configPath := filepath.Join(c.path, ConfigFile)
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// Path returns the path to the .hrsync directory
func (c *Config) Path() string {
	return c.path
}

// HRDatabasePath returns the path to the HR source database
func (c *Config) HRDatabasePath() string {
	return filepath.Join(c.path, HRDatabaseFile)
}

// PayrollDatabasePath returns the path to the payroll target database
func (c *Config) PayrollDatabasePath() string {
	return filepath.Join(c.path, PayrollDBFile)
}

// PayloadPath returns the path to the single sync payload slot
func (c *Config) PayloadPath() string {
	return filepath.Join(c.path, PayloadFile)
}

// Initialize creates a new .hrsync directory with initial configuration
func Initialize() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	syncPath := filepath.Join(cwd, SyncDir)

	// Check if already initialized
	if _, err := os.Stat(syncPath); err == nil {
		return nil, fmt.Errorf("hrsync workspace already exists")
	}

	if err := os.MkdirAll(syncPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .hrsync directory: %w", err)
	}

	cfg := &Config{
		SourceSystem: DefaultSourceSystem,
		TargetSystem: DefaultTargetSystem,
		ProcessedBy:  DefaultProcessedBy,
		path:         syncPath,
	}

	if err := cfg.Save(); err != nil {
		// Cleanup on failure
		os.RemoveAll(syncPath)
		return nil, err
	}

	return cfg, nil
}
