// Package config handles configuration loading and validation for taproom.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/taproom/internal/core/styles"
)

// SourceKind selects where pages of recipes come from.
type SourceKind string

const (
	// SourcePunkAPI reads pages from a Punk API compatible HTTP service.
	SourcePunkAPI SourceKind = "punkapi"
	// SourceFixture serves a generated catalogue without touching the network.
	SourceFixture SourceKind = "fixture"
)

// IsValid reports whether k names a supported source.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourcePunkAPI, SourceFixture:
		return true
	default:
		return false
	}
}

// MaxPerPage is the largest page the Punk API will serve.
const MaxPerPage = 80

// Config holds the application configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Source   SourceConfig   `yaml:"source"`
	Cache    CacheConfig    `yaml:"cache"`
	Exclude  []string       `yaml:"exclude"` // glob patterns matched against recipe names
	TUI      TUIConfig      `yaml:"tui"`
	Database DatabaseConfig `yaml:"database"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// WindowConfig controls the render window.
type WindowConfig struct {
	Size      int `yaml:"size"`       // items held at once, rounded down to a multiple of parts
	Parts     int `yaml:"parts"`      // steps the window is divided into
	StartPage int `yaml:"start_page"` // page the first window is built from
}

// SourceConfig controls the page source.
type SourceConfig struct {
	Kind         SourceKind    `yaml:"kind"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	RetryMax     int           `yaml:"retry_max"`
	PerPage      int           `yaml:"per_page"`
	FixtureItems int           `yaml:"fixture_items"`
}

// CacheConfig controls the persistent page cache.
type CacheConfig struct {
	Disabled      bool          `yaml:"disabled"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `yaml:"theme"` // built-in palette name
}

// DatabaseConfig holds SQLite connection pool options.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Size:      15,
			Parts:     3,
			StartPage: 1,
		},
		Source: SourceConfig{
			Kind:         SourcePunkAPI,
			BaseURL:      "https://api.punkapi.com/v2",
			Timeout:      10 * time.Second,
			RetryMax:     3,
			PerPage:      25,
			FixtureItems: 325,
		},
		Cache: CacheConfig{
			TTL:           time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Exclude: []string{},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Window.Size == 0 {
		c.Window.Size = defaults.Window.Size
	}
	if c.Window.Parts == 0 {
		c.Window.Parts = defaults.Window.Parts
	}
	if c.Window.StartPage == 0 {
		c.Window.StartPage = defaults.Window.StartPage
	}

	if c.Source.Kind == "" {
		c.Source.Kind = defaults.Source.Kind
	}
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = defaults.Source.BaseURL
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = defaults.Source.Timeout
	}
	if c.Source.PerPage == 0 {
		c.Source.PerPage = defaults.Source.PerPage
	}
	if c.Source.FixtureItems == 0 {
		c.Source.FixtureItems = defaults.Source.FixtureItems
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaults.Cache.TTL
	}
	if c.Cache.SweepInterval == 0 {
		c.Cache.SweepInterval = defaults.Cache.SweepInterval
	}

	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Window.Parts < 2 {
		return fmt.Errorf("window.parts must be at least 2")
	}
	if c.Window.Size < c.Window.Parts {
		return fmt.Errorf("window.size must be at least window.parts (%d)", c.Window.Parts)
	}
	if c.Window.StartPage < 1 {
		return fmt.Errorf("window.start_page must be at least 1")
	}

	if !c.Source.Kind.IsValid() {
		return fmt.Errorf("source.kind %q is not supported", c.Source.Kind)
	}
	if c.Source.PerPage < 1 || c.Source.PerPage > MaxPerPage {
		return fmt.Errorf("source.per_page must be between 1 and %d", MaxPerPage)
	}
	if c.Source.RetryMax < 0 {
		return fmt.Errorf("source.retry_max cannot be negative")
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout cannot be negative")
	}
	if c.Source.FixtureItems < 0 {
		return fmt.Errorf("source.fixture_items cannot be negative")
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("cache.sweep_interval cannot be negative")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	return nil
}

// DefaultLogFile returns the log file path used when none is configured.
func DefaultLogFile(dataDir string) string {
	return filepath.Join(dataDir, "taproom.log")
}
