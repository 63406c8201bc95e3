package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/whhaicheng/racesim/internal/domain/config"
	"github.com/whhaicheng/racesim/internal/domain/race"
	"github.com/whhaicheng/racesim/internal/domain/racer"
)

// ParameterOverrides holds explicitly requested race parameters.
// Nil fields keep the value resolved so far.
type ParameterOverrides struct {
	RacerCount       *int
	RaceLength       *int
	TickInterval     *time.Duration
	FactorPolicy     *string
	StopWhenFinished *bool
}

func (o ParameterOverrides) apply(p *race.Parameters) {
	if o.RacerCount != nil {
		p.RacerCount = *o.RacerCount
	}
	if o.RaceLength != nil {
		p.RaceLength = *o.RaceLength
	}
	if o.TickInterval != nil {
		p.TickInterval = *o.TickInterval
	}
	if o.FactorPolicy != nil {
		p.FactorPolicy = racer.FactorPolicy(*o.FactorPolicy)
	}
	if o.StopWhenFinished != nil {
		p.StopWhenFinished = *o.StopWhenFinished
	}
}

// SettingsUseCase provides settings management business operations.
type SettingsUseCase struct {
	settingsRepo SettingsRepository
	presets      *PresetUseCase
	applyEnv     func(*config.Config) error
}

// NewSettingsUseCase creates a new settings use case. presets may be nil
// when no preset storage is available.
func NewSettingsUseCase(settingsRepo SettingsRepository, presets *PresetUseCase) *SettingsUseCase {
	return &SettingsUseCase{
		settingsRepo: settingsRepo,
		presets:      presets,
		applyEnv:     config.ApplyEnv,
	}
}

// GetConfig retrieves the stored configuration.
func (uc *SettingsUseCase) GetConfig(ctx context.Context) (*config.Config, error) {
	return uc.settingsRepo.GetConfig(ctx)
}

// EffectiveConfig returns the stored configuration with environment overrides applied.
func (uc *SettingsUseCase) EffectiveConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}

	if err := uc.applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// UpdateConfig updates the configuration.
func (uc *SettingsUseCase) UpdateConfig(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return uc.settingsRepo.SaveConfig(ctx, cfg)
}

// SetRaceDefaults stores new default race parameters.
func (uc *SettingsUseCase) SetRaceDefaults(ctx context.Context, p race.Parameters) error {
	return uc.settingsRepo.SetRaceParameters(ctx, p)
}

// SetRenderFormat stores the default render format.
func (uc *SettingsUseCase) SetRenderFormat(ctx context.Context, format string) error {
	return uc.settingsRepo.SetRenderFormat(ctx, format)
}

// ResetSettings resets all settings to defaults.
func (uc *SettingsUseCase) ResetSettings(ctx context.Context) error {
	return uc.settingsRepo.ResetToDefaults(ctx)
}

// ResolveParameters builds the parameters for one race. Later layers win:
// built-in defaults, the settings file, the environment, the named preset
// (if any), then overrides.
func (uc *SettingsUseCase) ResolveParameters(ctx context.Context, presetName string, overrides ParameterOverrides) (race.Parameters, error) {
	cfg, err := uc.EffectiveConfig(ctx)
	if err != nil {
		return race.Parameters{}, err
	}
	params := cfg.Race.Parameters()

	if presetName != "" {
		if uc.presets == nil {
			return race.Parameters{}, fmt.Errorf("%w: %s", race.ErrPresetNotFound, presetName)
		}
		p, err := uc.presets.GetPreset(ctx, presetName)
		if err != nil {
			return race.Parameters{}, err
		}
		params = p.Parameters
	}

	overrides.apply(&params)

	if err := params.Validate(); err != nil {
		return race.Parameters{}, err
	}
	return params, nil
}
