// Package repository provides unit tests for settings repository.
package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/whhaicheng/racesim/internal/domain/config"
	"github.com/whhaicheng/racesim/internal/domain/race"
	"github.com/whhaicheng/racesim/internal/domain/racer"
)

// setupSettingsTestPath returns a settings file path inside a temp directory.
func setupSettingsTestPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "settings", "config.json")
}

// TestSettingsRepository_GetConfig_Default tests getting default config.
func TestSettingsRepository_GetConfig_Default(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(setupSettingsTestPath(t))

	cfg, err := repo.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig() failed: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Database.Path == "" {
		t.Error("Database path should not be empty in default config")
	}
	if cfg.Race.RacerCount != 10 {
		t.Errorf("RacerCount = %d, want 10", cfg.Race.RacerCount)
	}
}

// TestSettingsRepository_SaveConfig tests saving configuration.
func TestSettingsRepository_SaveConfig(t *testing.T) {
	ctx := context.Background()
	configPath := setupSettingsTestPath(t)
	repo := NewSettingsRepository(configPath)

	cfg := config.DefaultConfig()
	cfg.Render.Format = "markdown"
	cfg.Render.Width = 80

	if err := repo.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveConfig() failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	loaded, err := repo.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig() after save failed: %v", err)
	}
	if loaded.Render.Format != "markdown" {
		t.Errorf("Format = %s, want markdown", loaded.Render.Format)
	}
	if loaded.Render.Width != 80 {
		t.Errorf("Width = %d, want 80", loaded.Render.Width)
	}
}

// TestSettingsRepository_SaveConfig_Invalid tests that invalid config is rejected.
func TestSettingsRepository_SaveConfig_Invalid(t *testing.T) {
	ctx := context.Background()
	configPath := setupSettingsTestPath(t)
	repo := NewSettingsRepository(configPath)

	cfg := config.DefaultConfig()
	cfg.Race.RacerCount = 0

	if err := repo.SaveConfig(ctx, cfg); err == nil {
		t.Error("SaveConfig() should fail for invalid config")
	}
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Error("Config file should not be written for invalid config")
	}
}

// TestSettingsRepository_GetConfig_Corrupt tests a malformed settings file.
func TestSettingsRepository_GetConfig_Corrupt(t *testing.T) {
	configPath := setupSettingsTestPath(t)
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(configPath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewSettingsRepository(configPath).GetConfig(context.Background()); err == nil {
		t.Error("GetConfig() should fail for corrupt file")
	}
}

// TestSettingsRepository_RaceParameters tests storing default race parameters.
func TestSettingsRepository_RaceParameters(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(setupSettingsTestPath(t))

	want := race.Parameters{
		RacerCount:       4,
		RaceLength:       500,
		TickInterval:     100 * time.Millisecond,
		FactorPolicy:     racer.FactorFixed,
		StopWhenFinished: false,
	}
	if err := repo.SetRaceParameters(ctx, want); err != nil {
		t.Fatalf("SetRaceParameters() failed: %v", err)
	}

	got, err := repo.GetRaceParameters(ctx)
	if err != nil {
		t.Fatalf("GetRaceParameters() failed: %v", err)
	}
	if got != want {
		t.Errorf("GetRaceParameters() = %+v, want %+v", got, want)
	}
}

// TestSettingsRepository_SetRenderFormat tests the render format setter.
func TestSettingsRepository_SetRenderFormat(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(setupSettingsTestPath(t))

	if err := repo.SetRenderFormat(ctx, "json"); err != nil {
		t.Fatalf("SetRenderFormat() failed: %v", err)
	}
	if err := repo.SetRenderFormat(ctx, "pdf"); err == nil {
		t.Error("SetRenderFormat() should reject unknown formats")
	}

	cfg, err := repo.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig() failed: %v", err)
	}
	if cfg.Render.Format != "json" {
		t.Errorf("Format = %s, want json", cfg.Render.Format)
	}
}

// TestSettingsRepository_ResetToDefaults tests resetting configuration.
func TestSettingsRepository_ResetToDefaults(t *testing.T) {
	ctx := context.Background()
	configPath := setupSettingsTestPath(t)
	repo := NewSettingsRepository(configPath)

	cfg := config.DefaultConfig()
	cfg.Race.RaceLength = 999
	if err := repo.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveConfig() failed: %v", err)
	}

	if err := repo.ResetToDefaults(ctx); err != nil {
		t.Fatalf("ResetToDefaults() failed: %v", err)
	}
	if err := repo.ResetToDefaults(ctx); err != nil {
		t.Fatalf("second ResetToDefaults() failed: %v", err)
	}

	loaded, err := repo.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig() failed: %v", err)
	}
	if loaded.Race.RaceLength != 100 {
		t.Errorf("RaceLength = %d, want 100", loaded.Race.RaceLength)
	}
	if repo.GetConfigPath() != configPath {
		t.Errorf("GetConfigPath() = %s, want %s", repo.GetConfigPath(), configPath)
	}
}
