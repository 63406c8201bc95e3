package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/whhaicheng/racesim/internal/domain/race"
)

// scrollLines is how many blank lines push the previous frame off screen.
const scrollLines = 50

// ConsoleRenderer draws one progress bar per racer.
type ConsoleRenderer struct {
	w    io.Writer
	opts Options
}

// NewConsoleRenderer creates a console renderer.
func NewConsoleRenderer(w io.Writer, opts Options) *ConsoleRenderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	return &ConsoleRenderer{w: w, opts: opts}
}

// Format returns the format this renderer produces.
func (r *ConsoleRenderer) Format() Format {
	return FormatConsole
}

// Render writes the frame.
func (r *ConsoleRenderer) Render(ctx context.Context, frame race.Frame) error {
	var sb strings.Builder

	if r.opts.ClearScreen {
		sb.WriteString(strings.Repeat("\n", scrollLines))
	}

	fmt.Fprintf(&sb, "Race has been running for %d seconds.\n", frame.ElapsedSeconds)
	sb.WriteString("    ")
	sb.WriteString(strings.Repeat("=", r.opts.Width))
	sb.WriteString("\n")

	for _, e := range frame.Entries {
		fmt.Fprintf(&sb, "%d : %s\n", e.Index, strings.Repeat("*", barLength(e.Position, frame.RaceLength, r.opts.Width)))
	}

	if frame.Finished {
		sb.WriteString("\nRace finished.\n")
		for _, s := range frame.Standings {
			fmt.Fprintf(&sb, "%s place: racer %d (tick %d)\n", ordinal(s.Place), s.Index, s.FinishTick)
		}
	}

	if _, err := io.WriteString(r.w, sb.String()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
