package render

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"game-translator/src/region"
)

// Frame is one rendered overlay. Image has the size of Bounds, which is the
// capture canvas in screen coordinates.
type Frame struct {
	Image   *image.NRGBA
	Bounds  image.Rectangle
	Regions []region.Region
}

// Text joins the non-empty region texts, one per line.
func (f *Frame) Text() string {
	var lines []string
	for _, t := range region.Texts(f.Regions) {
		if t = strings.TrimSpace(t); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// Composite draws the frame over base, which must have the frame's size.
func (f *Frame) Composite(base image.Image) *image.NRGBA {
	return imaging.Overlay(base, f.Image, image.Pt(0, 0), 1.0)
}

func (f *Frame) Save(path string) error {
	if err := imaging.Save(f.Image, path); err != nil {
		return fmt.Errorf("save frame %s: %w", path, err)
	}
	return nil
}

// SaveDebug writes the frame into dir with a timestamped name.
func (f *Frame) SaveDebug(dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("frame_%s.png", time.Now().Format("20060102_150405.000")))
	return path, f.Save(path)
}
