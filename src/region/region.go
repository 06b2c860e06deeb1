package region

import (
	"fmt"
	"image"
)

// Region is a rectangle on the captured frame plus the text last recognized
// or translated inside it. Coordinates are relative to the target's monitor.
type Region struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Text   string `json:"text,omitempty"`
}

type Point struct {
	X int
	Y int
}

// New returns a normalized region. Negative width or height flips the origin.
func New(x, y, width, height int) Region {
	return Region{X: x, Y: y, Width: width, Height: height}.Normalize()
}

// FromDrag builds the rectangle spanned by a drag gesture.
func FromDrag(start, delta Point) Region {
	return New(start.X, start.Y, delta.X, delta.Y)
}

func (r Region) Normalize() Region {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Contains is inclusive on every edge so a click on the border hits the region.
func (r Region) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Overlaps uses half-open intervals on each axis; regions that only share an
// edge do not overlap.
func (r Region) Overlaps(o Region) bool {
	return intervalsOverlap(r.X, r.X+r.Width, o.X, o.X+o.Width) &&
		intervalsOverlap(r.Y, r.Y+r.Height, o.Y, o.Y+o.Height)
}

func (r Region) Translate(dx, dy int) Region {
	r.X += dx
	r.Y += dy
	return r
}

// WithText returns a copy carrying text.
func (r Region) WithText(text string) Region {
	r.Text = text
	return r
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

func intervalsOverlap(a0, a1, b0, b1 int) bool {
	return a0 < b1 && b0 < a1
}

// Clone copies the slice so callers can mutate text without aliasing.
func Clone(regions []Region) []Region {
	if regions == nil {
		return nil
	}
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// Texts returns the text of each region in order.
func Texts(regions []Region) []string {
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.Text
	}
	return out
}

// AnyOverlap reports the first pair of overlapping regions, if any. Profiles
// loaded from disk are not re-validated, so callers use this for warnings only.
func AnyOverlap(regions []Region) (int, int, bool) {
	for i := range regions {
		for j := i + 1; j < len(regions); j++ {
			if regions[i].Overlaps(regions[j]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}
