package racer

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRaceLength is returned when a race is started with a non-positive length.
var ErrInvalidRaceLength = errors.New("race length must be positive")

// State is the private simulation state of one racer.
// It is owned by exactly one goroutine and never shared.
type State struct {
	Phase      Phase
	RaceLength float64
	Policy     FactorPolicy

	// SpeedAdjustmentFactor is drawn at StartRace and never changes.
	// Under FactorPerSlice each slice draws its own factor instead.
	SpeedAdjustmentFactor int

	CurrentSpeed    float64
	CurrentPosition float64
	Slices          int
}

// SliceResult describes what happened during one time-slice.
type SliceResult struct {
	Factor   int
	MaxSpeed float64
	Speed    float64
	Distance float64
	Position float64
	Phase    Phase
}

// New returns a racer that has not started yet.
func New() *State {
	return &State{Phase: PhaseNotStarted}
}

// Start moves the racer from NotStarted to Running.
// The initial speed is computed from standstill at position zero.
func (s *State) Start(raceLength float64, policy FactorPolicy, rnd RandomSource) error {
	if !s.Phase.CanTransitionTo(PhaseRunning) {
		return &InvalidPhaseTransitionError{From: s.Phase, To: PhaseRunning}
	}
	if raceLength <= 0 || math.IsNaN(raceLength) || math.IsInf(raceLength, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRaceLength, raceLength)
	}
	if policy == "" {
		policy = FactorPerSlice
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	factor := DrawAdjustmentFactor(rnd)

	s.RaceLength = raceLength
	s.Policy = policy
	s.SpeedAdjustmentFactor = factor
	s.CurrentPosition = 0
	s.CurrentSpeed = NextSpeed(0, 0, raceLength, MaxSpeed(factor), rnd)
	return s.SetPhase(PhaseRunning)
}

// SetPhase sets the phase with validation.
// Returns an error if the transition is invalid.
func (s *State) SetPhase(target Phase) error {
	if !target.IsValid() || !s.Phase.CanTransitionTo(target) {
		return &InvalidPhaseTransitionError{From: s.Phase, To: target}
	}
	s.Phase = target
	return nil
}

// Advance runs one time-slice. NotStarted and Completed racers do not change.
func (s *State) Advance(rnd RandomSource) SliceResult {
	if s.Phase.IsTerminal() {
		return SliceResult{
			Factor:   s.SpeedAdjustmentFactor,
			MaxSpeed: MaxSpeed(s.SpeedAdjustmentFactor),
			Speed:    s.CurrentSpeed,
			Position: s.RaceLength,
			Phase:    s.Phase,
		}
	}
	// Only a running racer may finish.
	if !s.Phase.CanTransitionTo(PhaseCompleted) {
		return SliceResult{Phase: s.Phase}
	}

	factor := s.SpeedAdjustmentFactor
	if s.Policy == FactorPerSlice {
		factor = DrawAdjustmentFactor(rnd)
	}
	maxSpeed := MaxSpeed(factor)

	speed := NextSpeed(s.CurrentSpeed, s.CurrentPosition, s.RaceLength, maxSpeed, rnd)
	distance := DistancePerSlice(speed)
	next := s.CurrentPosition + distance

	s.CurrentSpeed = speed
	s.Slices++
	if next >= s.RaceLength {
		next = s.RaceLength
		_ = s.SetPhase(PhaseCompleted) // checked above
	}
	s.CurrentPosition = next

	return SliceResult{
		Factor:   factor,
		MaxSpeed: maxSpeed,
		Speed:    speed,
		Distance: distance,
		Position: next,
		Phase:    s.Phase,
	}
}

// ReportedPosition is the integer position sent to the controller.
func (s *State) ReportedPosition() int {
	switch s.Phase {
	case PhaseCompleted:
		return int(s.RaceLength)
	case PhaseRunning:
		return int(s.CurrentPosition)
	default:
		return 0
	}
}
