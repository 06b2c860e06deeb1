package ocr

import (
	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// Tesseract is most accurate with glyphs around 30px tall.
const minCropHeight = 48

// preprocessFile rewrites a crop in place: more contrast, grayscale, and
// upscaling for short crops.
func preprocessFile(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	gray := effect.Grayscale(adjust.Contrast(img, 0.3))
	b := gray.Bounds()
	if h := b.Dy(); h > 0 && h < minCropHeight {
		scale := (minCropHeight + h - 1) / h
		return imaging.Save(transform.Resize(gray, b.Dx()*scale, h*scale, transform.Linear), path)
	}
	return imaging.Save(gray, path)
}
