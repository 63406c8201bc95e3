package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/whhaicheng/racesim/internal/domain/race"
)

// presetFileVersion is written into exported preset files.
const presetFileVersion = 1

// ErrPresetFileInvalid is returned when an imported file cannot be used.
var ErrPresetFileInvalid = errors.New("invalid preset file")

// presetFile is the YAML document exchanged by Export and Import.
type presetFile struct {
	Version int            `yaml:"version"`
	Presets []presetRecord `yaml:"presets"`
}

type presetRecord struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Parameters  race.Parameters `yaml:"parameters"`
}

// PresetUseCase manages named race parameter presets.
type PresetUseCase struct {
	repo PresetRepository
	now  func() time.Time
}

// NewPresetUseCase creates a new preset use case.
func NewPresetUseCase(repo PresetRepository) *PresetUseCase {
	return &PresetUseCase{repo: repo, now: time.Now}
}

// SavePreset creates the named preset or replaces the parameters of an
// existing one with the same name.
func (uc *PresetUseCase) SavePreset(ctx context.Context, name, description string, params race.Parameters) (*race.Preset, error) {
	name = strings.TrimSpace(name)

	existing, err := uc.repo.FindByName(ctx, name)
	switch {
	case err == nil:
		existing.Description = description
		existing.Parameters = params
		existing.UpdatedAt = uc.now()
		if err := existing.Validate(); err != nil {
			return nil, err
		}
		if err := uc.repo.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("save preset: %w", err)
		}
		return existing, nil

	case errors.Is(err, race.ErrPresetNotFound):
		p := race.NewPreset(name, params)
		p.Description = description
		p.CreatedAt = uc.now()
		p.UpdatedAt = p.CreatedAt
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if err := uc.repo.Save(ctx, p); err != nil {
			return nil, fmt.Errorf("save preset: %w", err)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("find preset: %w", err)
	}
}

// GetPreset retrieves a preset by name.
func (uc *PresetUseCase) GetPreset(ctx context.Context, name string) (*race.Preset, error) {
	p, err := uc.repo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, race.ErrPresetNotFound) {
			return nil, fmt.Errorf("%w: %s", race.ErrPresetNotFound, name)
		}
		return nil, fmt.Errorf("get preset: %w", err)
	}
	return p, nil
}

// ListPresets lists all presets ordered by name.
func (uc *PresetUseCase) ListPresets(ctx context.Context) ([]*race.Preset, error) {
	return uc.repo.FindAll(ctx)
}

// DeletePreset deletes a preset by name.
func (uc *PresetUseCase) DeletePreset(ctx context.Context, name string) error {
	p, err := uc.GetPreset(ctx, name)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, p.ID)
}

// ExportPresets writes the named presets, or all of them when names is
// empty, as a YAML document.
func (uc *PresetUseCase) ExportPresets(ctx context.Context, w io.Writer, names ...string) error {
	var presets []*race.Preset
	if len(names) == 0 {
		all, err := uc.repo.FindAll(ctx)
		if err != nil {
			return fmt.Errorf("list presets: %w", err)
		}
		presets = all
	} else {
		for _, name := range names {
			p, err := uc.GetPreset(ctx, name)
			if err != nil {
				return err
			}
			presets = append(presets, p)
		}
	}

	doc := presetFile{Version: presetFileVersion, Presets: make([]presetRecord, 0, len(presets))}
	for _, p := range presets {
		doc.Presets = append(doc.Presets, presetRecord{
			Name:        p.Name,
			Description: p.Description,
			Parameters:  p.Parameters,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	return enc.Close()
}

// ImportPresets reads a YAML document written by ExportPresets. Presets whose
// name already exists are replaced when overwrite is set and rejected otherwise.
// Nothing is stored unless every preset in the document is valid.
func (uc *PresetUseCase) ImportPresets(ctx context.Context, r io.Reader, overwrite bool) ([]*race.Preset, error) {
	var doc presetFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPresetFileInvalid, err)
	}
	if doc.Version != presetFileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrPresetFileInvalid, doc.Version)
	}

	seen := make(map[string]bool, len(doc.Presets))
	for i, rec := range doc.Presets {
		name := strings.TrimSpace(rec.Name)
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate preset %q", ErrPresetFileInvalid, name)
		}
		seen[name] = true

		p := race.NewPreset(name, rec.Parameters)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %d (%q): %w", i, name, err)
		}
		if !overwrite {
			exists, err := uc.repo.ExistsByName(ctx, name, "")
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("%w: %s", race.ErrPresetNameTaken, name)
			}
		}
	}

	imported := make([]*race.Preset, 0, len(doc.Presets))
	for _, rec := range doc.Presets {
		p, err := uc.SavePreset(ctx, rec.Name, rec.Description, rec.Parameters)
		if err != nil {
			return imported, err
		}
		imported = append(imported, p)
	}
	return imported, nil
}
