package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides holds values taken from the environment.
// Unset variables leave their field nil.
type EnvOverrides struct {
	RacerCount       *int           `env:"RACESIM_RACERS"`
	RaceLength       *int           `env:"RACESIM_RACE_LENGTH"`
	TickInterval     *time.Duration `env:"RACESIM_TICK_INTERVAL"`
	FactorPolicy     *string        `env:"RACESIM_FACTOR_POLICY"`
	StopWhenFinished *bool          `env:"RACESIM_STOP_WHEN_FINISHED"`
	Format           *string        `env:"RACESIM_FORMAT"`
	DBPath           *string        `env:"RACESIM_DB_PATH"`
	LogDir           *string        `env:"RACESIM_LOG_DIR"`
	LogLevel         *string        `env:"RACESIM_LOG_LEVEL"`
}

// ParseEnv loads overrides from environment variables.
func ParseEnv() (EnvOverrides, error) {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return EnvOverrides{}, fmt.Errorf("parse env: %w", err)
	}
	if o.TickInterval != nil && *o.TickInterval%time.Millisecond != 0 {
		return EnvOverrides{}, fmt.Errorf("%w: RACESIM_TICK_INTERVAL must be a whole number of milliseconds, got %s",
			ErrInvalidConfiguration, *o.TickInterval)
	}
	return o, nil
}

// Apply copies every set override into cfg.
func (o EnvOverrides) Apply(cfg *Config) {
	if o.RacerCount != nil {
		cfg.Race.RacerCount = *o.RacerCount
	}
	if o.RaceLength != nil {
		cfg.Race.RaceLength = *o.RaceLength
	}
	if o.TickInterval != nil {
		cfg.Race.TickIntervalMS = int(*o.TickInterval / time.Millisecond)
	}
	if o.FactorPolicy != nil {
		cfg.Race.FactorPolicy = *o.FactorPolicy
	}
	if o.StopWhenFinished != nil {
		cfg.Race.StopWhenFinished = *o.StopWhenFinished
	}
	if o.Format != nil {
		cfg.Render.Format = *o.Format
	}
	if o.DBPath != nil {
		cfg.Database.Path = *o.DBPath
	}
	if o.LogDir != nil {
		cfg.Advanced.LogDir = *o.LogDir
	}
	if o.LogLevel != nil {
		cfg.Advanced.LogLevel = *o.LogLevel
	}
}

// ApplyEnv parses the environment and applies it to cfg.
func ApplyEnv(cfg *Config) error {
	o, err := ParseEnv()
	if err != nil {
		return err
	}
	o.Apply(cfg)
	return nil
}
