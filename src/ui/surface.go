package ui

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"

	"game-translator/src/region"
)

var (
	regionFill   = color.NRGBA{R: 0, G: 120, B: 212, A: 70}
	regionBorder = color.NRGBA{R: 0, G: 120, B: 212, A: 230}
	dragFill     = color.NRGBA{R: 255, G: 255, B: 255, A: 60}
)

const borderWidth = 2

// dragTracker turns fyne's incremental drag events into one gesture.
type dragTracker struct {
	active bool
	start  region.Point
	last   region.Point
}

// move records a drag step. prev is where the pointer was before this step.
func (d *dragTracker) move(prev, cur region.Point) {
	if !d.active {
		d.active = true
		d.start = prev
	}
	d.last = cur
}

// end finishes the gesture and returns its start and total delta.
func (d *dragTracker) end() (start, delta region.Point, ok bool) {
	if !d.active {
		return region.Point{}, region.Point{}, false
	}
	d.active = false
	return d.start, region.Point{X: d.last.X - d.start.X, Y: d.last.Y - d.start.Y}, true
}

func (d *dragTracker) rect() (region.Region, bool) {
	if !d.active {
		return region.Region{}, false
	}
	return region.FromDrag(d.start, region.Point{X: d.last.X - d.start.X, Y: d.last.Y - d.start.Y}), true
}

// toPoint converts a fyne position to pixels at the given canvas scale.
func toPoint(pos fyne.Position, scale float32) region.Point {
	if scale <= 0 {
		scale = 1
	}
	return region.Point{X: int(pos.X * scale), Y: int(pos.Y * scale)}
}

// drawRegions paints the editor view: every region filled and outlined, plus
// the rectangle being dragged.
func drawRegions(w, h int, regions []region.Region, pending *region.Region) *image.NRGBA {
	dst := imaging.New(w, h, color.NRGBA{})
	for _, r := range regions {
		dst = paintRect(dst, r, regionFill, regionBorder)
	}
	if pending != nil && !pending.Empty() {
		dst = paintRect(dst, *pending, dragFill, regionBorder)
	}
	return dst
}

func paintRect(dst *image.NRGBA, r region.Region, fill, border color.NRGBA) *image.NRGBA {
	rect := r.Rect().Intersect(dst.Bounds())
	if rect.Empty() {
		return dst
	}
	dst = imaging.Overlay(dst, imaging.New(rect.Dx(), rect.Dy(), fill), rect.Min, 1)
	bw := min(borderWidth, rect.Dx(), rect.Dy())
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+bw),
		image.Rect(rect.Min.X, rect.Max.Y-bw, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+bw, rect.Max.Y),
		image.Rect(rect.Max.X-bw, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, e := range edges {
		dst = imaging.Paste(dst, imaging.New(e.Dx(), e.Dy(), border), e.Min)
	}
	return dst
}

// editSurface is the drawing area of the region editor. Finished gestures
// go to onGesture; the controller decides what they mean.
type editSurface struct {
	widget.BaseWidget

	raster    *canvas.Raster
	scale     func() float32
	onGesture func(start, delta region.Point)

	mu      sync.Mutex
	regions []region.Region
	drag    dragTracker
}

func newEditSurface(scale func() float32, onGesture func(start, delta region.Point)) *editSurface {
	s := &editSurface{scale: scale, onGesture: onGesture}
	s.raster = canvas.NewRaster(s.draw)
	s.raster.ScaleMode = canvas.ImageScalePixels
	s.ExtendBaseWidget(s)
	return s
}

func (s *editSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.raster)
}

func (s *editSurface) SetRegions(regions []region.Region) {
	s.mu.Lock()
	s.regions = region.Clone(regions)
	s.mu.Unlock()
	s.raster.Refresh()
}

func (s *editSurface) draw(w, h int) image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending *region.Region
	if r, ok := s.drag.rect(); ok {
		pending = &r
	}
	return drawRegions(w, h, s.regions, pending)
}

func (s *editSurface) Dragged(ev *fyne.DragEvent) {
	scale := s.scale()
	prev := fyne.NewPos(ev.Position.X-ev.Dragged.DX, ev.Position.Y-ev.Dragged.DY)
	s.mu.Lock()
	s.drag.move(toPoint(prev, scale), toPoint(ev.Position, scale))
	s.mu.Unlock()
	s.raster.Refresh()
}

func (s *editSurface) DragEnd() {
	s.mu.Lock()
	start, delta, ok := s.drag.end()
	s.mu.Unlock()
	s.raster.Refresh()
	if ok && s.onGesture != nil {
		s.onGesture(start, delta)
	}
}

// Tapped is a zero-length drag: it deletes the region under the pointer.
func (s *editSurface) Tapped(ev *fyne.PointEvent) {
	if s.onGesture != nil {
		s.onGesture(toPoint(ev.Position, s.scale()), region.Point{})
	}
}
