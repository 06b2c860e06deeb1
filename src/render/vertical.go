package render

import (
	"strings"
	"unicode/utf8"
)

// FitVertical lays text out top to bottom, one rune per cell. Each hard line
// is a column and columns advance left to right. The cell is the largest
// square that fits the longest column and every column side by side.
func (f *Fitter) FitVertical(text string, w, h int) Layout {
	text = strings.TrimSpace(text)
	if text == "" || w <= 0 || h <= 0 {
		return Layout{}
	}
	var cols []string
	longest := 0
	for _, c := range strings.Split(text, "\n") {
		c = strings.Join(strings.Fields(c), "")
		if c == "" {
			continue
		}
		cols = append(cols, c)
		if n := utf8.RuneCountInString(c); n > longest {
			longest = n
		}
	}
	cell := min(w/len(cols), h/longest)
	if cell < int(minSize) {
		cell = int(minSize)
	}
	l := Layout{
		Size:       float64(cell),
		Lines:      cols,
		Width:      cell * len(cols),
		Height:     cell * longest,
		LineHeight: cell,
		Vertical:   true,
	}
	if face, err := f.face(l.Size); err == nil {
		l.Ascent = face.Metrics().Ascent.Ceil()
		face.Close()
	}
	return l
}
