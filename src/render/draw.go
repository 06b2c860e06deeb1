package render

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"game-translator/src/region"
)

// outline offset, 1.5px in 26.6 fixed point
const outlineOffset = fixed.Int26_6(96)

// Renderer draws translated regions onto overlay frames.
type Renderer struct {
	Style  Style
	fitter *Fitter
}

func NewRenderer(style Style, fitter *Fitter) *Renderer {
	if fitter == nil {
		fitter = DefaultFitter()
	}
	return &Renderer{Style: style, fitter: fitter}
}

func (r *Renderer) Fitter() *Fitter { return r.fitter }

// Render draws every region onto a transparent canvas of the given bounds.
// Region coordinates are relative to the canvas origin.
func (r *Renderer) Render(bounds image.Rectangle, regions []region.Region, vertical bool) *Frame {
	canvas := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for _, reg := range regions {
		r.FitAndDraw(canvas, reg, vertical)
	}
	return &Frame{Image: canvas, Bounds: bounds, Regions: region.Clone(regions)}
}

// FitAndDraw fills the region's box with the background colour and draws its
// text centered at the largest size that fits. Blank regions are skipped.
func (r *Renderer) FitAndDraw(dst draw.Image, reg region.Region, vertical bool) Layout {
	reg = reg.Normalize()
	if strings.TrimSpace(reg.Text) == "" || reg.Empty() {
		return Layout{}
	}
	box := reg.Rect()
	draw.Draw(dst, box, image.NewUniform(r.Style.Background), image.Point{}, draw.Over)

	var l Layout
	if vertical {
		l = r.fitter.FitVertical(reg.Text, reg.Width, reg.Height)
	} else {
		l = r.fitter.Fit(reg.Text, reg.Width, reg.Height)
	}
	face, err := r.fitter.face(l.Size)
	if err != nil {
		log.Printf("render: face at %.1f: %v", l.Size, err)
		return l
	}
	defer face.Close()

	top := box.Min.Y + (reg.Height-l.Height)/2
	left := box.Min.X + (reg.Width-l.Width)/2
	for _, pass := range r.passes() {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(pass.c), Face: face}
		if vertical {
			drawColumns(d, l, left, top, pass.dx, pass.dy)
		} else {
			drawLines(d, l, box, top, pass.dx, pass.dy)
		}
	}
	return l
}

type pass struct {
	dx, dy fixed.Int26_6
	c      color.NRGBA
}

// passes returns the four outline offsets followed by the text itself.
func (r *Renderer) passes() []pass {
	var ps []pass
	for _, dx := range []fixed.Int26_6{-outlineOffset, outlineOffset} {
		for _, dy := range []fixed.Int26_6{-outlineOffset, outlineOffset} {
			ps = append(ps, pass{dx: dx, dy: dy, c: r.Style.Outline})
		}
	}
	return append(ps, pass{c: r.Style.Text})
}

func drawLines(d *font.Drawer, l Layout, box image.Rectangle, top int, dx, dy fixed.Int26_6) {
	for i, line := range l.Lines {
		w := d.MeasureString(line).Ceil()
		x := box.Min.X + (box.Dx()-w)/2
		y := top + i*l.LineHeight + l.Ascent
		d.Dot = fixed.Point26_6{X: fixed.I(x) + dx, Y: fixed.I(y) + dy}
		d.DrawString(line)
	}
}

func drawColumns(d *font.Drawer, l Layout, left, top int, dx, dy fixed.Int26_6) {
	for c, col := range l.Lines {
		i := 0
		for _, ch := range col {
			s := string(ch)
			w := d.MeasureString(s).Ceil()
			x := left + c*l.LineHeight + (l.LineHeight-w)/2
			y := top + i*l.LineHeight + l.Ascent
			d.Dot = fixed.Point26_6{X: fixed.I(x) + dx, Y: fixed.I(y) + dy}
			d.DrawString(s)
			i++
		}
	}
}
