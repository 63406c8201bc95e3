package usecase

import (
	"context"

	"github.com/whhaicheng/racesim/internal/domain/config"
	"github.com/whhaicheng/racesim/internal/domain/race"
)

// =============================================================================
// Preset Repository Interface
// =============================================================================

// PresetRepository defines the interface for preset persistence operations.
// It is implemented by the infrastructure layer.
type PresetRepository interface {
	// Save saves a preset. If the preset already exists (by ID), it will be updated.
	// Returns race.ErrPresetNameTaken if another preset uses the name.
	Save(ctx context.Context, p *race.Preset) error

	// FindByID finds a preset by its ID.
	// Returns race.ErrPresetNotFound if it does not exist.
	FindByID(ctx context.Context, id string) (*race.Preset, error)

	// FindByName finds a preset by its unique name.
	// Returns race.ErrPresetNotFound if it does not exist.
	FindByName(ctx context.Context, name string) (*race.Preset, error)

	// FindAll returns all presets ordered by name, or an empty slice.
	FindAll(ctx context.Context) ([]*race.Preset, error)

	// Delete deletes a preset by its ID.
	// Returns race.ErrPresetNotFound if nothing was deleted.
	Delete(ctx context.Context, id string) error

	// ExistsByName reports whether a preset other than excludeID uses name.
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
}

// =============================================================================
// Settings Repository Interface
// =============================================================================

// SettingsRepository defines the interface for settings persistence operations.
type SettingsRepository interface {
	// GetConfig retrieves the current configuration, or defaults if none is stored.
	GetConfig(ctx context.Context) (*config.Config, error)

	// SaveConfig saves the configuration.
	SaveConfig(ctx context.Context, cfg *config.Config) error

	// GetRaceParameters retrieves the stored default race parameters.
	GetRaceParameters(ctx context.Context) (race.Parameters, error)

	// SetRaceParameters stores new default race parameters.
	SetRaceParameters(ctx context.Context, p race.Parameters) error

	// SetRenderFormat stores the default render format.
	SetRenderFormat(ctx context.Context, format string) error

	// ResetToDefaults replaces the stored configuration with defaults.
	ResetToDefaults(ctx context.Context) error

	// GetConfigPath returns the settings file location.
	GetConfigPath() string
}
