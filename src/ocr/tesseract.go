package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Token is one recognized word. Tokens with Confidence <= 0 are line
// delimiters and carry no text.
type Token struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Engine runs recognition on image files.
type Engine interface {
	Text(path, lang string) (string, error)
	Tokens(path, lang string) ([]Token, error)
	Probe(lang string) error
}

// Tesseract drives libtesseract through gosseract. A client is created per
// call; gosseract clients are not safe for concurrent use.
type Tesseract struct {
	// TessdataPrefix overrides the tessdata directory when set.
	TessdataPrefix string
}

func (t Tesseract) client(lang string) (*gosseract.Client, error) {
	c := gosseract.NewClient()
	if t.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			c.Close()
			return nil, err
		}
	}
	if err := c.SetLanguage(lang); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (t Tesseract) Text(path, lang string) (string, error) {
	c, err := t.client(lang)
	if err != nil {
		return "", err
	}
	defer c.Close()
	if err := c.SetImage(path); err != nil {
		return "", err
	}
	return c.Text()
}

// Tokens returns word tokens in reading order with a delimiter token inserted
// whenever the block, paragraph or line changes, and one at the end.
func (t Tesseract) Tokens(path, lang string) ([]Token, error) {
	c, err := t.client(lang)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	if err := c.SetImage(path); err != nil {
		return nil, err
	}
	boxes, err := c.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, err
	}
	out := make([]Token, 0, len(boxes)+8)
	type lineKey struct{ block, par, line int }
	var prev lineKey
	for i, b := range boxes {
		key := lineKey{b.BlockNum, b.ParNum, b.LineNum}
		if i > 0 && key != prev {
			out = append(out, Token{Confidence: -1})
		}
		prev = key
		out = append(out, Token{Text: b.Word, Box: b.Box, Confidence: b.Confidence})
	}
	if len(boxes) > 0 {
		out = append(out, Token{Confidence: -1})
	}
	return out, nil
}

// Probe recognizes a blank image to confirm the engine and language load.
func (t Tesseract) Probe(lang string) error {
	c, err := t.client(lang)
	if err != nil {
		return err
	}
	defer c.Close()
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = color.White.Y
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return err
	}
	_, err = c.Text()
	return err
}
