// Package racer provides the racer state machine and speed model.
package racer

import "fmt"

// Phase represents the lifecycle stage of a racer.
type Phase string

const (
	PhaseNotStarted Phase = "not_started" // Created, waiting for StartRace
	PhaseRunning    Phase = "running"     // Advancing one slice per position request
	PhaseCompleted  Phase = "completed"   // Reached the finish line
)

// IsValid checks if the phase is valid.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseNotStarted, PhaseRunning, PhaseCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal checks if the phase is terminal (no further transitions possible).
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted
}

// CanTransitionTo checks if a transition from the current phase to target is valid.
// A slice that does not finish the race is not a transition.
func (p Phase) CanTransitionTo(target Phase) bool {
	transitions := map[Phase][]Phase{
		PhaseNotStarted: {PhaseRunning},
		PhaseRunning:    {PhaseCompleted},
	}

	allowed, ok := transitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// String implements Stringer interface.
func (p Phase) String() string {
	return string(p)
}

// FactorPolicy selects when the speed-adjustment factor is drawn.
type FactorPolicy string

const (
	// FactorPerSlice redraws the factor on every time-slice.
	FactorPerSlice FactorPolicy = "per_slice"
	// FactorFixed draws the factor once at StartRace and keeps it.
	FactorFixed FactorPolicy = "fixed"
)

// Validate checks if the policy is known.
func (p FactorPolicy) Validate() error {
	switch p {
	case FactorPerSlice, FactorFixed:
		return nil
	default:
		return fmt.Errorf("unknown factor policy: %q", string(p))
	}
}

// String implements Stringer interface.
func (p FactorPolicy) String() string {
	return string(p)
}

// InvalidPhaseTransitionError represents an invalid phase transition.
type InvalidPhaseTransitionError struct {
	From Phase
	To   Phase
}

func (e *InvalidPhaseTransitionError) Error() string {
	return fmt.Sprintf("invalid phase transition: %s -> %s", e.From, e.To)
}
