package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Style holds the overlay colours.
type Style struct {
	Background color.NRGBA
	Text       color.NRGBA
	Outline    color.NRGBA
}

// DefaultStyle is white bold text with a black outline on a half transparent
// black box.
func DefaultStyle() Style {
	return Style{
		Background: color.NRGBA{A: 128},
		Text:       color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Outline:    color.NRGBA{A: 255},
	}
}

// ParseColor parses "#rrggbb" with an alpha in [0,1]. The "#" is optional.
func ParseColor(hex string, alpha float64) (color.NRGBA, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse colour %q: %w", hex, err)
	}
	if alpha < 0 || alpha > 1 || math.IsNaN(alpha) {
		return color.NRGBA{}, fmt.Errorf("alpha %v out of range [0,1]", alpha)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}, nil
}

// NewStyle builds a Style from hex strings. Empty strings keep the default.
func NewStyle(background string, backgroundAlpha float64, text, outline string) (Style, error) {
	s := DefaultStyle()
	var err error
	if background != "" {
		if s.Background, err = ParseColor(background, backgroundAlpha); err != nil {
			return s, err
		}
	} else {
		s.Background.A = uint8(math.Round(clamp01(backgroundAlpha) * 255))
	}
	if text != "" {
		if s.Text, err = ParseColor(text, 1); err != nil {
			return s, err
		}
	}
	if outline != "" {
		if s.Outline, err = ParseColor(outline, 1); err != nil {
			return s, err
		}
	}
	return s, nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
