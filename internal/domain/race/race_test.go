// Package race provides unit tests for race parameters and frames.
package race

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/racesim/internal/domain/racer"
)

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()

	assert.Equal(t, 10, p.RacerCount)
	assert.Equal(t, 100, p.RaceLength)
	assert.Equal(t, time.Second, p.TickInterval)
	assert.Equal(t, racer.FactorPerSlice, p.FactorPolicy)
	assert.True(t, p.StopWhenFinished)
	require.NoError(t, p.Validate())
}

func TestParameters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *Parameters)
		wantErr bool
	}{
		{"defaults are valid", func(p *Parameters) {}, false},
		{"single racer", func(p *Parameters) { p.RacerCount = 1 }, false},
		{"fixed policy", func(p *Parameters) { p.FactorPolicy = racer.FactorFixed }, false},
		{"zero racers", func(p *Parameters) { p.RacerCount = 0 }, true},
		{"negative racers", func(p *Parameters) { p.RacerCount = -3 }, true},
		{"too many racers", func(p *Parameters) { p.RacerCount = MaxRacerCount + 1 }, true},
		{"zero length", func(p *Parameters) { p.RaceLength = 0 }, true},
		{"negative length", func(p *Parameters) { p.RaceLength = -100 }, true},
		{"zero interval", func(p *Parameters) { p.TickInterval = 0 }, true},
		{"shortest interval", func(p *Parameters) { p.TickInterval = MinTickInterval }, false},
		{"longest interval", func(p *Parameters) { p.TickInterval = MaxTickInterval }, false},
		{"sub-millisecond interval", func(p *Parameters) { p.TickInterval = 500 * time.Microsecond }, true},
		{"fractional millisecond interval", func(p *Parameters) { p.TickInterval = 10500 * time.Microsecond }, true},
		{"interval too long", func(p *Parameters) { p.TickInterval = MaxTickInterval + time.Millisecond }, true},
		{"unknown policy", func(p *Parameters) { p.FactorPolicy = "wild" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.modify(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewIDs_Unique(t *testing.T) {
	assert.NotEqual(t, NewRaceID(), NewRaceID())
	assert.NotEqual(t, NewRacerID(), NewRacerID())
}

func TestFrame_Helpers(t *testing.T) {
	f := Frame{
		RaceLength: 100,
		Entries: []Entry{
			{Index: 0, RacerID: "a", Position: 40},
			{Index: 1, RacerID: "b", Position: 100, Finished: true},
			{Index: 2, RacerID: "c", Position: 100, Finished: true},
		},
	}

	assert.Equal(t, []int{40, 100, 100}, f.Positions())
	assert.Equal(t, 2, f.FinishedCount())

	leader, ok := f.Leader()
	require.True(t, ok)
	assert.Equal(t, RacerID("b"), leader.RacerID)

	_, ok = Frame{}.Leader()
	assert.False(t, ok)
}

func TestPreset_Validate(t *testing.T) {
	p := NewPreset("  sprint  ", DefaultParameters())
	require.NoError(t, p.Validate())
	assert.Equal(t, "sprint", p.Name)
	assert.NotEmpty(t, p.ID)

	p.Name = " "
	assert.ErrorIs(t, p.Validate(), ErrInvalidConfiguration)

	p.Name = strings.Repeat("x", 101)
	assert.ErrorIs(t, p.Validate(), ErrInvalidConfiguration)

	p.Name = "bad"
	p.Parameters.RaceLength = 0
	assert.ErrorIs(t, p.Validate(), ErrInvalidConfiguration)
}
