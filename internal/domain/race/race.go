// Package race provides the race protocol, parameters and snapshot models.
package race

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/whhaicheng/racesim/internal/domain/racer"
)

var (
	// ErrInvalidConfiguration is returned when race parameters are invalid.
	ErrInvalidConfiguration = errors.New("invalid race configuration")
)

const (
	// DefaultRacerCount is the number of racers spawned per race.
	DefaultRacerCount = 10
	// DefaultRaceLength is the distance to the finish line.
	DefaultRaceLength = 100
	// DefaultTickInterval is how often the controller polls its racers.
	DefaultTickInterval = time.Second

	// MaxRacerCount caps the number of racer goroutines per race.
	MaxRacerCount = 10000

	// Tick intervals are stored in whole milliseconds within these bounds.
	MinTickInterval = 10 * time.Millisecond
	MaxTickInterval = time.Minute
)

// RaceID identifies one race instance.
type RaceID string

// RacerID identifies one racer within a race.
type RacerID string

// NewRaceID generates a new race ID.
func NewRaceID() RaceID {
	return RaceID(uuid.New().String())
}

// NewRacerID generates a new racer ID.
func NewRacerID() RacerID {
	return RacerID(uuid.New().String())
}

// Parameters configures one race.
type Parameters struct {
	// RacerCount is the number of racers to spawn.
	RacerCount int `json:"racer_count" yaml:"racer_count"`

	// RaceLength is the distance every racer has to cover.
	RaceLength int `json:"race_length" yaml:"race_length"`

	// TickInterval is the polling period of the controller.
	TickInterval time.Duration `json:"tick_interval" yaml:"tick_interval"`

	// FactorPolicy selects when speed-adjustment factors are drawn.
	FactorPolicy racer.FactorPolicy `json:"factor_policy" yaml:"factor_policy"`

	// StopWhenFinished stops polling once every racer has completed.
	// When false the controller keeps polling finished racers until stopped.
	StopWhenFinished bool `json:"stop_when_finished" yaml:"stop_when_finished"`
}

// DefaultParameters returns the reference race: 10 racers over 100 units, polled every second.
func DefaultParameters() Parameters {
	return Parameters{
		RacerCount:       DefaultRacerCount,
		RaceLength:       DefaultRaceLength,
		TickInterval:     DefaultTickInterval,
		FactorPolicy:     racer.FactorPerSlice,
		StopWhenFinished: true,
	}
}

// Validate validates race parameters.
func (p Parameters) Validate() error {
	if p.RacerCount <= 0 {
		return fmt.Errorf("%w: racer count must be positive, got %d", ErrInvalidConfiguration, p.RacerCount)
	}
	if p.RacerCount > MaxRacerCount {
		return fmt.Errorf("%w: racer count must not exceed %d, got %d", ErrInvalidConfiguration, MaxRacerCount, p.RacerCount)
	}
	if p.RaceLength <= 0 {
		return fmt.Errorf("%w: race length must be positive, got %d", ErrInvalidConfiguration, p.RaceLength)
	}
	if p.TickInterval < MinTickInterval || p.TickInterval > MaxTickInterval {
		return fmt.Errorf("%w: tick interval must be between %s and %s, got %s",
			ErrInvalidConfiguration, MinTickInterval, MaxTickInterval, p.TickInterval)
	}
	if p.TickInterval%time.Millisecond != 0 {
		return fmt.Errorf("%w: tick interval must be a whole number of milliseconds, got %s",
			ErrInvalidConfiguration, p.TickInterval)
	}
	if err := p.FactorPolicy.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return nil
}
