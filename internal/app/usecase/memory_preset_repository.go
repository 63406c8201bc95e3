package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/whhaicheng/racesim/internal/domain/race"
)

// MemoryPresetRepository is an in-memory PresetRepository for tests and
// for running without a database file.
type MemoryPresetRepository struct {
	presets map[string]*race.Preset
	mu      sync.RWMutex
}

// NewMemoryPresetRepository creates an empty repository.
func NewMemoryPresetRepository() *MemoryPresetRepository {
	return &MemoryPresetRepository{presets: make(map[string]*race.Preset)}
}

// Save saves a preset to the repository.
func (r *MemoryPresetRepository) Save(ctx context.Context, p *race.Preset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, other := range r.presets {
		if id != p.ID && other.Name == p.Name {
			return fmt.Errorf("%w: %s", race.ErrPresetNameTaken, p.Name)
		}
	}

	cp := *p
	r.presets[p.ID] = &cp
	slog.Debug("MemoryPresetRepository: Saved preset", "id", p.ID, "name", p.Name)
	return nil
}

// FindByID finds a preset by its ID.
func (r *MemoryPresetRepository) FindByID(ctx context.Context, id string) (*race.Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.presets[id]
	if !ok {
		return nil, race.ErrPresetNotFound
	}
	cp := *p
	return &cp, nil
}

// FindByName finds a preset by name.
func (r *MemoryPresetRepository) FindByName(ctx context.Context, name string) (*race.Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.presets {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, race.ErrPresetNotFound
}

// FindAll returns all presets ordered by name.
func (r *MemoryPresetRepository) FindAll(ctx context.Context) ([]*race.Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	presets := make([]*race.Preset, 0, len(r.presets))
	for _, p := range r.presets {
		cp := *p
		presets = append(presets, &cp)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

// Delete deletes a preset by its ID.
func (r *MemoryPresetRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.presets[id]; !ok {
		return race.ErrPresetNotFound
	}
	delete(r.presets, id)
	return nil
}

// ExistsByName reports whether a preset other than excludeID uses name.
func (r *MemoryPresetRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, p := range r.presets {
		if id != excludeID && p.Name == name {
			return true, nil
		}
	}
	return false, nil
}
