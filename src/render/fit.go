package render

import (
	"fmt"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

const (
	minSize   = 1.0
	maxSize   = 1000.0
	tolerance = 0.5
	dpi       = 72
)

// Layout is the result of fitting text into a box. Width and Height are the
// pixel size of the laid out text block.
type Layout struct {
	Size       float64
	Lines      []string
	Width      int
	Height     int
	LineHeight int
	Ascent     int
	Wrapped    bool
	Vertical   bool
}

// Fits reports whether the text block fits a w×h box.
func (l Layout) Fits(w, h int) bool { return l.Width <= w && l.Height <= h }

// Fitter measures text in one font.
type Fitter struct {
	font *opentype.Font
}

// NewFitter parses a TrueType or OpenType font.
func NewFitter(ttf []byte) (*Fitter, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Fitter{font: f}, nil
}

// DefaultFitter uses the embedded Go Bold font.
func DefaultFitter() *Fitter {
	f, err := NewFitter(gobold.TTF)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Fitter) face(size float64) (font.Face, error) {
	return opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
}

// Fit finds the largest font size, to within tolerance, at which text fits a
// w×h box on one line per hard line break. When that line is shorter than a
// third of the box it retries with word wrapping and keeps whichever size is
// larger. Text that does not fit even at the minimum size comes back at the
// minimum size.
func (f *Fitter) Fit(text string, w, h int) Layout {
	text = strings.TrimSpace(text)
	if text == "" || w <= 0 || h <= 0 {
		return Layout{}
	}
	single := f.search(text, w, h, false)
	if single.LineHeight*3 >= h {
		return single
	}
	if wrapped := f.search(text, w, h, true); wrapped.Size > single.Size {
		return wrapped
	}
	return single
}

func (f *Fitter) search(text string, w, h int, wrap bool) Layout {
	lo, hi := minSize, maxSize
	best := f.Measure(text, minSize, w, wrap)
	for hi-lo > tolerance {
		mid := (lo + hi) / 2
		l := f.Measure(text, mid, w, wrap)
		if l.Fits(w, h) {
			best, lo = l, mid
		} else {
			hi = mid
		}
	}
	return best
}

// Measure lays text out at size. With wrap set, lines are greedily broken
// on spaces so they stay within maxWidth where a single word allows it.
func (f *Fitter) Measure(text string, size float64, maxWidth int, wrap bool) Layout {
	face, err := f.face(size)
	if err != nil {
		return Layout{Size: size}
	}
	defer face.Close()

	m := face.Metrics()
	l := Layout{
		Size:       size,
		Ascent:     m.Ascent.Ceil(),
		LineHeight: (m.Ascent + m.Descent).Ceil(),
		Wrapped:    wrap,
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if wrap {
			l.Lines = append(l.Lines, wrapLine(face, line, maxWidth)...)
		} else {
			l.Lines = append(l.Lines, line)
		}
	}
	for _, line := range l.Lines {
		if w := font.MeasureString(face, line).Ceil(); w > l.Width {
			l.Width = w
		}
	}
	l.Height = l.LineHeight * len(l.Lines)
	return l
}

func wrapLine(face font.Face, line string, maxWidth int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}
	var out []string
	cur := words[0]
	for _, w := range words[1:] {
		next := cur + " " + w
		if font.MeasureString(face, next).Ceil() <= maxWidth {
			cur = next
			continue
		}
		out = append(out, cur)
		cur = w
	}
	return append(out, cur)
}
