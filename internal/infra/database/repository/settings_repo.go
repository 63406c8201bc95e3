package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/whhaicheng/racesim/internal/domain/config"
	"github.com/whhaicheng/racesim/internal/domain/race"
)

// SettingsRepository provides configuration persistence in a JSON file.
type SettingsRepository struct {
	configPath string
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(configPath string) *SettingsRepository {
	return &SettingsRepository{
		configPath: configPath,
	}
}

// GetConfig loads the complete configuration.
// A missing file yields the default configuration.
func (r *SettingsRepository) GetConfig(ctx context.Context) (*config.Config, error) {
	if _, err := os.Stat(r.configPath); os.IsNotExist(err) {
		return config.DefaultConfig(), nil
	}

	data, err := os.ReadFile(r.configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Fields missing from the file keep their defaults.
	cfg := config.DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the complete configuration.
func (r *SettingsRepository) SaveConfig(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	dir := filepath.Dir(r.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(r.configPath, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// GetRaceParameters returns the default race parameters.
func (r *SettingsRepository) GetRaceParameters(ctx context.Context) (race.Parameters, error) {
	cfg, err := r.GetConfig(ctx)
	if err != nil {
		return race.Parameters{}, err
	}
	return cfg.Race.Parameters(), nil
}

// SetRaceParameters stores p as the default race parameters.
func (r *SettingsRepository) SetRaceParameters(ctx context.Context, p race.Parameters) error {
	cfg, err := r.GetConfig(ctx)
	if err != nil {
		return err
	}

	if err := cfg.SetRaceParameters(p); err != nil {
		return err
	}

	return r.SaveConfig(ctx, cfg)
}

// SetRenderFormat sets the default render format.
func (r *SettingsRepository) SetRenderFormat(ctx context.Context, format string) error {
	cfg, err := r.GetConfig(ctx)
	if err != nil {
		return err
	}

	cfg.Render.Format = format

	return r.SaveConfig(ctx, cfg)
}

// ResetToDefaults resets configuration to defaults.
func (r *SettingsRepository) ResetToDefaults(ctx context.Context) error {
	if err := os.Remove(r.configPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove config file: %w", err)
	}
	return nil
}

// GetConfigPath returns the configuration file path.
func (r *SettingsRepository) GetConfigPath() string {
	return r.configPath
}
