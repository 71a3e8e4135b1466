package game

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	StrokeStart = "start"
	StrokeDraw  = "draw"
	StrokeEnd   = "end"
	StrokeFill  = "fill"
)

const (
	maxCoordinate = 1000
	maxBrushSize  = 50
)

// Stroke is one drawing event. Coordinates are normalized to a 0..1000 grid.
type Stroke struct {
	Type          string `json:"type"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Size          int    `json:"size,omitempty"`
	Tool          string `json:"tool,omitempty"`
	Color         string `json:"color,omitempty"`
	ParticipantID string `json:"participant_id,omitempty"`
}

type penStroke struct {
	X     int    `validate:"min=0,max=1000"`
	Y     int    `validate:"min=0,max=1000"`
	Size  int    `validate:"min=1,max=50"`
	Tool  string `validate:"oneof=pen eraser"`
	Color string `validate:"omitempty,hexcolor"`
}

type fillStroke struct {
	Color string `validate:"required,hexcolor"`
}

var (
	strokeValidatorOnce sync.Once
	strokeValidator     *validator.Validate
)

func strokeValidation() *validator.Validate {
	strokeValidatorOnce.Do(func() {
		strokeValidator = validator.New()
	})
	return strokeValidator
}

// ValidateStrokes drops malformed entries and keeps the rest in order.
func ValidateStrokes(strokes []Stroke) []Stroke {
	valid := make([]Stroke, 0, len(strokes))
	for _, stroke := range strokes {
		if cleaned, ok := validateStroke(stroke); ok {
			valid = append(valid, cleaned)
		}
	}
	return valid
}

func validateStroke(stroke Stroke) (Stroke, bool) {
	v := strokeValidation()
	switch stroke.Type {
	case StrokeStart, StrokeDraw:
		entry := penStroke{X: stroke.X, Y: stroke.Y, Size: stroke.Size, Tool: stroke.Tool, Color: stroke.Color}
		if err := v.Struct(entry); err != nil {
			return Stroke{}, false
		}
		return Stroke{Type: stroke.Type, X: stroke.X, Y: stroke.Y, Size: stroke.Size, Tool: stroke.Tool, Color: stroke.Color}, true
	case StrokeFill:
		if err := v.Struct(fillStroke{Color: stroke.Color}); err != nil {
			return Stroke{}, false
		}
		return Stroke{Type: StrokeFill, Tool: StrokeFill, Color: stroke.Color}, true
	case StrokeEnd:
		return Stroke{Type: StrokeEnd}, true
	default:
		return Stroke{}, false
	}
}
