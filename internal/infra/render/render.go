// Package render turns race frames into text: progress bars for a terminal,
// newline-delimited JSON for pipes, or a Markdown log.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/whhaicheng/racesim/internal/domain/race"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown render format")

// Format is an output format.
type Format string

const (
	FormatConsole  Format = "console"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// IsValid reports whether f is a supported format.
func (f Format) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatMarkdown:
		return true
	default:
		return false
	}
}

// String implements Stringer interface.
func (f Format) String() string {
	return string(f)
}

// Options controls text layout.
type Options struct {
	// Width is the number of columns of a full progress bar.
	Width int

	// ClearScreen scrolls the previous console frame out of view.
	ClearScreen bool
}

// DefaultWidth is the width of a full progress bar.
const DefaultWidth = 160

// DefaultOptions returns the console defaults.
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, ClearScreen: true}
}

// Renderer writes frames in one format.
type Renderer interface {
	Render(ctx context.Context, frame race.Frame) error
	Format() Format
}

// NewRenderer creates the renderer for format writing to w.
func NewRenderer(format Format, w io.Writer, opts Options) (Renderer, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}

	switch format {
	case FormatConsole:
		return NewConsoleRenderer(w, opts), nil
	case FormatJSON:
		return NewJSONRenderer(w), nil
	case FormatMarkdown:
		return NewMarkdownRenderer(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}

// barLength scales position onto width columns, clamped to [0, width].
func barLength(position, raceLength, width int) int {
	if raceLength <= 0 || position <= 0 {
		return 0
	}
	if position >= raceLength {
		return width
	}
	return position * width / raceLength
}
