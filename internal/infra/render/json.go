package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/whhaicheng/racesim/internal/domain/race"
)

// JSONRenderer writes one JSON object per frame, newline delimited.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer creates a JSON renderer.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

// Format returns the format this renderer produces.
func (r *JSONRenderer) Format() Format {
	return FormatJSON
}

// Render writes the frame.
func (r *JSONRenderer) Render(ctx context.Context, frame race.Frame) error {
	if err := r.enc.Encode(frame); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}
