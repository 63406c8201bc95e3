package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/whhaicheng/racesim/internal/domain/race"
)

// MarkdownRenderer writes a section per frame and the standings once the race is over.
type MarkdownRenderer struct {
	w       io.Writer
	current race.RaceID
}

// NewMarkdownRenderer creates a Markdown renderer.
func NewMarkdownRenderer(w io.Writer) *MarkdownRenderer {
	return &MarkdownRenderer{w: w}
}

// Format returns the format this renderer produces.
func (r *MarkdownRenderer) Format() Format {
	return FormatMarkdown
}

// Render writes the frame.
func (r *MarkdownRenderer) Render(ctx context.Context, frame race.Frame) error {
	var sb strings.Builder

	if frame.RaceID != r.current {
		r.current = frame.RaceID
		r.writeTitle(&sb, frame)
	}

	r.writeTick(&sb, frame)

	if frame.Finished {
		r.writeStandings(&sb, frame)
	}

	if _, err := io.WriteString(r.w, sb.String()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (r *MarkdownRenderer) writeTitle(sb *strings.Builder, frame race.Frame) {
	fmt.Fprintf(sb, "# Race %s\n\n", frame.RaceID)
	fmt.Fprintf(sb, "- **Racers**: %d\n", len(frame.Entries))
	fmt.Fprintf(sb, "- **Length**: %d\n\n", frame.RaceLength)
}

func (r *MarkdownRenderer) writeTick(sb *strings.Builder, frame race.Frame) {
	fmt.Fprintf(sb, "## Tick %d (%ds)\n\n", frame.Tick, frame.ElapsedSeconds)
	sb.WriteString("| Racer | Position | Progress |\n")
	sb.WriteString("|-------|----------|----------|\n")

	for _, e := range frame.Entries {
		pct := barLength(e.Position, frame.RaceLength, 100)
		mark := ""
		if e.Finished {
			mark = " 🏁"
		}
		fmt.Fprintf(sb, "| %d | %d | %d%%%s |\n", e.Index, e.Position, pct, mark)
	}
	sb.WriteString("\n")

	if leader, ok := frame.Leader(); ok && leader.Position > 0 {
		fmt.Fprintf(sb, "**Leader**: racer %d at %d\n\n", leader.Index, leader.Position)
	}
}

func (r *MarkdownRenderer) writeStandings(sb *strings.Builder, frame race.Frame) {
	sb.WriteString("## Final Standings\n\n")
	if len(frame.Standings) == 0 {
		sb.WriteString("No racer finished.\n\n")
		return
	}

	sb.WriteString("| Place | Racer | Finish Tick |\n")
	sb.WriteString("|-------|-------|-------------|\n")
	for _, s := range frame.Standings {
		fmt.Fprintf(sb, "| %d | %d | %d |\n", s.Place, s.Index, s.FinishTick)
	}
	sb.WriteString("\n")
}
