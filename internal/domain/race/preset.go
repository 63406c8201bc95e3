package race

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrPresetNotFound is returned when a preset does not exist.
	ErrPresetNotFound = errors.New("preset not found")

	// ErrPresetNameTaken is returned when another preset already uses the name.
	ErrPresetNameTaken = errors.New("preset name already in use")
)

// Preset is a named, stored set of race parameters.
type Preset struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  Parameters `json:"parameters" yaml:"parameters"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
}

// NewPreset creates a preset with a fresh ID.
func NewPreset(name string, params Parameters) *Preset {
	now := time.Now()
	return &Preset{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(name),
		Parameters: params,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate validates the preset.
func (p *Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: preset name is required", ErrInvalidConfiguration)
	}
	if len(p.Name) > 100 {
		return fmt.Errorf("%w: preset name must be at most 100 characters", ErrInvalidConfiguration)
	}
	return p.Parameters.Validate()
}
