package ui

import (
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"game-translator/src/region"
	"game-translator/src/render"
)

const defaultEditSize = 800

// Overlay shows rendered frames and hosts the region editor in one window.
// It implements session.Overlay; every method may be called from any
// goroutine and hands its work to the fyne thread.
type Overlay struct {
	app      fyne.App
	onDrag   func(start, delta region.Point)
	backdrop func() (image.Image, error)
	win      fyne.Window
	preview *canvas.Image
	surface *editSurface
	bounds  image.Rectangle
	// bumped by every Show, Edit and Close; a backdrop that arrives after
	// the editor moved on is dropped
	editGen int
}

// NewOverlay creates the overlay. onDrag receives finished editor gestures in
// window pixels, which match target coordinates when the window covers the
// captured monitor. backdrop, when set, supplies a fresh capture of the
// target to draw under the editor; it is called off the fyne thread.
func (a *App) NewOverlay(onDrag func(start, delta region.Point), backdrop func() (image.Image, error)) *Overlay {
	return &Overlay{app: a.fyne, onDrag: onDrag, backdrop: backdrop}
}

func (o *Overlay) ensureWindow() {
	if o.win != nil {
		return
	}
	o.win = o.app.NewWindow("game-translator overlay")
	o.win.SetPadded(false)
	o.win.SetCloseIntercept(func() { o.win.Hide() })

	o.preview = canvas.NewImageFromImage(nil)
	o.preview.FillMode = canvas.ImageFillOriginal
	o.preview.ScaleMode = canvas.ImageScalePixels
	o.surface = newEditSurface(o.win.Canvas().Scale, o.onDrag)
	o.win.SetContent(container.NewStack(o.preview, o.surface))
}

// Show displays frame and hides the editor.
func (o *Overlay) Show(frame *render.Frame) {
	if frame == nil || frame.Image == nil {
		return
	}
	fyne.Do(func() {
		o.ensureWindow()
		o.editGen++
		o.bounds = frame.Bounds
		o.surface.Hide()
		o.preview.Image = frame.Image
		o.preview.Refresh()
		o.preview.Show()
		o.fit(frame.Image.Bounds())
		o.win.Show()
	})
}

// Edit opens the editor with regions drawn on it, over a capture of the
// target once one arrives.
func (o *Overlay) Edit(regions []region.Region) {
	regions = region.Clone(regions)
	fyne.Do(func() {
		o.ensureWindow()
		o.editGen++
		if o.backdrop != nil {
			go o.loadBackdrop(o.editGen)
		}
		o.preview.Hide()
		o.surface.SetRegions(regions)
		o.surface.Show()
		if o.bounds.Empty() {
			o.fit(image.Rect(0, 0, defaultEditSize, defaultEditSize*9/16))
		} else {
			o.fit(o.bounds)
		}
		o.win.Show()
	})
}

func (o *Overlay) Close() {
	fyne.Do(func() {
		o.editGen++
		if o.win != nil {
			o.win.Hide()
		}
	})
}

func (o *Overlay) loadBackdrop(gen int) {
	img, err := o.backdrop()
	if err != nil {
		log.Printf("ui: editor backdrop: %v", err)
		return
	}
	fyne.Do(func() {
		if gen != o.editGen || o.win == nil {
			return
		}
		o.bounds = img.Bounds()
		o.preview.Image = img
		o.preview.Refresh()
		o.preview.Show()
		o.fit(o.bounds)
	})
}

// fit sizes the window so one canvas pixel is one screen pixel.
func (o *Overlay) fit(r image.Rectangle) {
	scale := o.win.Canvas().Scale()
	if scale <= 0 {
		scale = 1
	}
	o.win.Resize(fyne.NewSize(float32(r.Dx())/scale, float32(r.Dy())/scale))
}
