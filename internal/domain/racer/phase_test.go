// Package racer provides unit tests for the racer phase machine.
package racer

import (
	"testing"
)

// TestPhase_IsValid tests valid phase detection.
func TestPhase_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		phase Phase
		want  bool
	}{
		{"not_started is valid", PhaseNotStarted, true},
		{"running is valid", PhaseRunning, true},
		{"completed is valid", PhaseCompleted, true},
		{"invalid phase", Phase("invalid"), false},
		{"empty phase", Phase(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.phase.IsValid(); got != tt.want {
				t.Errorf("Phase.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPhase_IsTerminal tests terminal phase detection.
func TestPhase_IsTerminal(t *testing.T) {
	if !PhaseCompleted.IsTerminal() {
		t.Error("completed should be terminal")
	}
	if PhaseRunning.IsTerminal() || PhaseNotStarted.IsTerminal() {
		t.Error("only completed should be terminal")
	}
}

// TestPhase_CanTransitionTo tests valid phase transitions.
func TestPhase_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   Phase
		to     Phase
		wantOk bool
	}{
		{"not_started -> running", PhaseNotStarted, PhaseRunning, true},
		{"running -> running", PhaseRunning, PhaseRunning, false},
		{"running -> completed", PhaseRunning, PhaseCompleted, true},
		{"not_started -> completed", PhaseNotStarted, PhaseCompleted, false},
		{"completed -> running", PhaseCompleted, PhaseRunning, false},
		{"completed -> not_started", PhaseCompleted, PhaseNotStarted, false},
		{"running -> not_started", PhaseRunning, PhaseNotStarted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.wantOk {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.wantOk)
			}
		})
	}
}

// TestFactorPolicy_Validate tests policy validation.
func TestFactorPolicy_Validate(t *testing.T) {
	if err := FactorPerSlice.Validate(); err != nil {
		t.Errorf("per_slice: unexpected error %v", err)
	}
	if err := FactorFixed.Validate(); err != nil {
		t.Errorf("fixed: unexpected error %v", err)
	}
	if err := FactorPolicy("sometimes").Validate(); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestInvalidPhaseTransitionError(t *testing.T) {
	err := &InvalidPhaseTransitionError{From: PhaseCompleted, To: PhaseRunning}
	want := "invalid phase transition: completed -> running"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
