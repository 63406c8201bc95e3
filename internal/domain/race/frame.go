package race

import "time"

// Entry is one racer's line in a frame.
type Entry struct {
	Index    int     `json:"index" yaml:"index"`
	RacerID  RacerID `json:"racer_id" yaml:"racer_id"`
	Position int     `json:"position" yaml:"position"`
	Finished bool    `json:"finished" yaml:"finished"`
}

// Standing records when a racer was first seen at the finish line.
type Standing struct {
	Place      int     `json:"place" yaml:"place"`
	Index      int     `json:"index" yaml:"index"`
	RacerID    RacerID `json:"racer_id" yaml:"racer_id"`
	FinishTick uint64  `json:"finish_tick" yaml:"finish_tick"`
}

// Frame is the read-only snapshot handed to a renderer once per tick.
// Entries are in spawn order.
type Frame struct {
	RaceID         RaceID        `json:"race_id" yaml:"race_id"`
	Tick           uint64        `json:"tick" yaml:"tick"`
	ElapsedSeconds int           `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	Elapsed        time.Duration `json:"-" yaml:"-"`
	RaceLength     int           `json:"race_length" yaml:"race_length"`
	Entries        []Entry       `json:"entries" yaml:"entries"`
	Standings      []Standing    `json:"standings,omitempty" yaml:"standings,omitempty"`
	Finished       bool          `json:"finished" yaml:"finished"`
}

// Positions returns the positions in spawn order.
func (f Frame) Positions() []int {
	out := make([]int, len(f.Entries))
	for i, e := range f.Entries {
		out[i] = e.Position
	}
	return out
}

// FinishedCount returns how many racers have reached the finish line.
func (f Frame) FinishedCount() int {
	n := 0
	for _, e := range f.Entries {
		if e.Finished {
			n++
		}
	}
	return n
}

// Leader returns the entry furthest along; ties go to the earlier spawn.
func (f Frame) Leader() (Entry, bool) {
	if len(f.Entries) == 0 {
		return Entry{}, false
	}
	best := f.Entries[0]
	for _, e := range f.Entries[1:] {
		if e.Position > best.Position {
			best = e
		}
	}
	return best, true
}
