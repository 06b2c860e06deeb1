package ocr

import (
	"strings"

	"game-translator/src/region"
)

// Reconstruct groups word tokens into one region per visual line. A token
// with confidence <= 0 closes the current line; empty lines are dropped.
func Reconstruct(tokens []Token) []region.Region {
	var (
		out  []region.Region
		line region.Region
		text strings.Builder
	)
	for _, tk := range tokens {
		if tk.Confidence <= 0 {
			if t := strings.TrimSpace(text.String()); t != "" {
				line.Text = t
				out = append(out, line)
			}
			line = region.Region{}
			text.Reset()
			continue
		}
		if strings.TrimSpace(text.String()) == "" {
			line.X = tk.Box.Min.X
			line.Y = tk.Box.Min.Y
		}
		if h := tk.Box.Dy(); h > line.Height {
			line.Height = h
		}
		line.Width += tk.Box.Dx()
		text.WriteString(tk.Text)
		text.WriteByte(' ')
	}
	return out
}
