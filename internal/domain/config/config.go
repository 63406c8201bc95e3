// Package config provides application configuration models.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/whhaicheng/racesim/internal/domain/race"
	"github.com/whhaicheng/racesim/internal/domain/racer"
)

var (
	// ErrInvalidConfiguration is returned when configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// CurrentVersion is the settings file version written by this build.
const CurrentVersion = 1

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Path is the path to the SQLite database file holding presets.
	Path string `json:"path"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfiguration)
	}

	dir := filepath.Dir(c.Path)
	if dir != "" && dir != "." {
		if _, err := os.Stat(dir); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("check database directory: %w", err)
			}
		}
	}

	return nil
}

// RaceConfig holds the default race parameters.
type RaceConfig struct {
	// RacerCount is the default number of racers.
	RacerCount int `json:"racer_count"`

	// RaceLength is the default race length.
	RaceLength int `json:"race_length"`

	// TickIntervalMS is the default polling interval in milliseconds.
	TickIntervalMS int `json:"tick_interval_ms"`

	// FactorPolicy is the default speed-adjustment policy (per_slice, fixed).
	FactorPolicy string `json:"factor_policy"`

	// StopWhenFinished stops polling once all racers completed.
	StopWhenFinished bool `json:"stop_when_finished"`
}

// Parameters converts the defaults into race parameters.
func (c *RaceConfig) Parameters() race.Parameters {
	return race.Parameters{
		RacerCount:       c.RacerCount,
		RaceLength:       c.RaceLength,
		TickInterval:     time.Duration(c.TickIntervalMS) * time.Millisecond,
		FactorPolicy:     racer.FactorPolicy(c.FactorPolicy),
		StopWhenFinished: c.StopWhenFinished,
	}
}

// Validate validates the race defaults.
func (c *RaceConfig) Validate() error {
	if err := c.Parameters().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

// RenderConfig represents progress rendering configuration.
type RenderConfig struct {
	// Format is the renderer used for frames (console, json, markdown).
	Format string `json:"format"`

	// Width is the width of a full progress bar in columns.
	Width int `json:"width"`

	// ClearScreen scrolls the previous frame away before drawing.
	ClearScreen bool `json:"clear_screen"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	validFormats := map[string]bool{
		"console":  true,
		"json":     true,
		"markdown": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("%w: invalid render format: %s", ErrInvalidConfiguration, c.Format)
	}

	if c.Width < 10 || c.Width > 500 {
		return fmt.Errorf("%w: width must be between 10 and 500", ErrInvalidConfiguration)
	}

	return nil
}

// AdvancedConfig represents advanced configuration.
type AdvancedConfig struct {
	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string `json:"log_level"`

	// LogDir is the directory for dated log files.
	LogDir string `json:"log_dir"`

	// InboxSize is the capacity of every racer and controller inbox.
	InboxSize int `json:"inbox_size"`
}

// Validate validates the advanced configuration.
func (c *AdvancedConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.LogLevel] {
		return fmt.Errorf("%w: invalid log level: %s", ErrInvalidConfiguration, c.LogLevel)
	}

	if c.LogDir == "" {
		return fmt.Errorf("%w: log_dir is required", ErrInvalidConfiguration)
	}

	if c.InboxSize < 1 || c.InboxSize > 65536 {
		return fmt.Errorf("%w: inbox_size must be between 1 and 65536", ErrInvalidConfiguration)
	}

	return nil
}

// Config represents the complete application configuration.
type Config struct {
	// Version is the configuration version.
	Version int `json:"version"`

	// Database is the database configuration.
	Database DatabaseConfig `json:"database"`

	// Race holds the default race parameters.
	Race RaceConfig `json:"race"`

	// Render is the render configuration.
	Render RenderConfig `json:"render"`

	// Advanced is the advanced configuration.
	Advanced AdvancedConfig `json:"advanced"`
}

// Validate validates the complete configuration.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported configuration version: %d", ErrInvalidConfiguration, c.Version)
	}

	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := c.Race.Validate(); err != nil {
		return fmt.Errorf("race: %w", err)
	}

	if err := c.Render.Validate(); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := c.Advanced.Validate(); err != nil {
		return fmt.Errorf("advanced: %w", err)
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	userHomeDir, _ := os.UserHomeDir()
	baseDir := filepath.Join(userHomeDir, ".racesim")
	defaults := race.DefaultParameters()

	return &Config{
		Version: CurrentVersion,
		Database: DatabaseConfig{
			Path: filepath.Join(baseDir, "racesim.db"),
		},
		Race: RaceConfig{
			RacerCount:       defaults.RacerCount,
			RaceLength:       defaults.RaceLength,
			TickIntervalMS:   int(defaults.TickInterval / time.Millisecond),
			FactorPolicy:     defaults.FactorPolicy.String(),
			StopWhenFinished: defaults.StopWhenFinished,
		},
		Render: RenderConfig{
			Format:      "console",
			Width:       160,
			ClearScreen: true,
		},
		Advanced: AdvancedConfig{
			LogLevel:  "info",
			LogDir:    filepath.Join(baseDir, "logs"),
			InboxSize: 64,
		},
	}
}

// SetRaceParameters stores p as the default race parameters.
func (c *Config) SetRaceParameters(p race.Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.Race = RaceConfig{
		RacerCount:       p.RacerCount,
		RaceLength:       p.RaceLength,
		TickIntervalMS:   int(p.TickInterval / time.Millisecond),
		FactorPolicy:     p.FactorPolicy.String(),
		StopWhenFinished: p.StopWhenFinished,
	}
	return nil
}
