// Package config loads Elysium settings from a TOML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"

	"github.com/nathoo/elysium/engine"
	"github.com/nathoo/elysium/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ELYSIUM_"

// Store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds all settings. Empty paths resolve relative to DataDir.
type Config struct {
	DataDir string        `toml:"data_dir" env:"DATA_DIR"`
	Game    GameConfig    `toml:"game"`
	Store   StoreConfig   `toml:"store" envPrefix:"STORE_"`
	Catalog CatalogConfig `toml:"catalog" envPrefix:"CATALOG_"`
	Log     LogConfig     `toml:"log" envPrefix:"LOG_"`
}

// GameConfig holds engine settings.
type GameConfig struct {
	HandSize int `toml:"hand_size" env:"HAND_SIZE"` // Cards drawn after a new game or a cast
}

// StoreConfig selects where snapshots are kept.
type StoreConfig struct {
	Backend string `toml:"backend" env:"BACKEND"` // "json" or "sqlite"
	Path    string `toml:"path" env:"PATH"`       // Save directory (json) or database file (sqlite)
	Slot    string `toml:"slot" env:"SLOT"`       // Autosave slot
}

// CatalogConfig locates the deck templates.
type CatalogConfig struct {
	Path  string `toml:"path" env:"PATH"`   // .json, .yaml, .lua or a directory of .lua files
	Watch bool   `toml:"watch" env:"WATCH"` // Reload when the file changes
}

// LogConfig controls the log file. The terminal belongs to the UI, so logs
// never go to stderr.
type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`
	File  string `toml:"file" env:"FILE"`
}

// DefaultDataDir returns ~/.elysium, or .elysium when there is no home
// directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".elysium"
	}
	return filepath.Join(home, ".elysium")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Game: GameConfig{
			HandSize: engine.DefaultHandSize,
		},
		Store: StoreConfig{
			Backend: BackendJSON,
			Slot:    store.DefaultSlot,
		},
		Catalog: CatalogConfig{
			Watch: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "config.toml")
}

// Load reads the config file at path over the defaults, applies
// environment overrides and validates the result. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from ELYSIUM_* environment variables. Unset
// variables leave fields untouched.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes the configuration to path as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.Game.HandSize < 0 {
		return fmt.Errorf("hand size cannot be negative: %d", c.Game.HandSize)
	}
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q (want %q or %q)", c.Store.Backend, BackendJSON, BackendSQLite)
	}
	if !store.ValidSlot(c.Store.Slot) {
		return fmt.Errorf("invalid autosave slot %q", c.Store.Slot)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// StorePath returns the save directory or database file.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Backend == BackendSQLite {
		return filepath.Join(c.DataDir, "elysium.db")
	}
	return filepath.Join(c.DataDir, "saves")
}

// CatalogPath returns the deck template location.
func (c *Config) CatalogPath() string {
	if c.Catalog.Path != "" {
		return c.Catalog.Path
	}
	return filepath.Join(c.DataDir, "deck.json")
}

// LogFile returns the log file location.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "elysium.log")
}
