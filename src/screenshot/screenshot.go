package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/disintegration/imaging"

	"game-translator/src/region"
)

// ErrTargetNotFound means the window or display behind a Target is gone.
var ErrTargetNotFound = errors.New("capture target not found")

// CaptureError wraps failures while copying or cropping pixels.
type CaptureError struct {
	Op  string
	Err error
}

func (e *CaptureError) Error() string { return fmt.Sprintf("capture %s: %v", e.Op, e.Err) }
func (e *CaptureError) Unwrap() error { return e.Err }

// Target identifies what to capture. ID is a process id for windows and a
// display index when Display is set.
type Target struct {
	ID      int    `json:"id"`
	AppName string `json:"app_name"`
	Title   string `json:"title"`
	Display bool   `json:"display,omitempty"`
}

func (t Target) String() string {
	if t.Display {
		return fmt.Sprintf("display %d", t.ID)
	}
	return fmt.Sprintf("%s [%d] %q", t.AppName, t.ID, t.Title)
}

// Platform is the OS-facing part of capture.
type Platform interface {
	Displays() []image.Rectangle
	WindowBounds(t Target) (image.Rectangle, error)
	CaptureRect(rect image.Rectangle) (*image.RGBA, error)
	Windows(app string) ([]Target, error)
}

// Service captures a target's monitor-sized frame and cuts it into crops.
type Service struct {
	platform Platform
	tempDir  string
}

func NewService(p Platform) *Service {
	return &Service{platform: p, tempDir: defaultTempDir()}
}

// NewDesktop returns a service backed by the real screen.
func NewDesktop() *Service { return NewService(desktopPlatform{}) }

// SetTempDir overrides where crop files are written.
func (s *Service) SetTempDir(dir string) { s.tempDir = dir }

// Displays returns the monitor rectangles captures are clamped to.
func (s *Service) Displays() []image.Rectangle { return s.platform.Displays() }

// Exists reports whether the target can still be resolved.
func (s *Service) Exists(t Target) bool {
	_, _, err := s.locate(t)
	return err == nil
}

// ListTargets returns windows whose process name matches app (all windows
// when app is empty) followed by every display.
func (s *Service) ListTargets(app string) ([]Target, error) {
	wins, err := s.platform.Windows(app)
	if err != nil {
		return nil, err
	}
	for i := range s.platform.Displays() {
		wins = append(wins, Target{ID: i, AppName: "Display", Title: fmt.Sprintf("Display %d", i+1), Display: true})
	}
	return wins, nil
}

// Capture returns a buffer the size of the target's monitor with the visible
// part of the window copied at its monitor-relative position.
func (s *Service) Capture(ctx context.Context, t Target) (*image.NRGBA, error) {
	canvas, _, err := s.capture(ctx, t)
	return canvas, err
}

func (s *Service) capture(ctx context.Context, t Target) (*image.NRGBA, image.Rectangle, error) {
	if err := ctx.Err(); err != nil {
		return nil, image.Rectangle{}, err
	}
	monitor, win, err := s.locate(t)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	canvas := imaging.New(monitor.Dx(), monitor.Dy(), color.NRGBA{})
	visible := win.Intersect(monitor)
	if visible.Empty() {
		return canvas, monitor, nil
	}
	shot, err := s.platform.CaptureRect(visible)
	if err != nil {
		return nil, image.Rectangle{}, &CaptureError{Op: "screen", Err: err}
	}
	return imaging.Paste(canvas, shot, visible.Min.Sub(monitor.Min)), monitor, nil
}

// CaptureRegions captures the target and writes one crop per region.
// Region coordinates are relative to the monitor.
func (s *Service) CaptureRegions(ctx context.Context, t Target, regions []region.Region) (*CropSet, error) {
	frame, monitor, err := s.capture(ctx, t)
	if err != nil {
		return nil, err
	}
	set, err := s.CropImage(frame, regions)
	if err != nil {
		return nil, err
	}
	set.Bounds = monitor
	return set, nil
}

// CaptureFull captures the target and writes the whole frame as a single crop.
func (s *Service) CaptureFull(ctx context.Context, t Target) (*CropSet, error) {
	frame, monitor, err := s.capture(ctx, t)
	if err != nil {
		return nil, err
	}
	set, err := s.FrameFile(frame)
	if err != nil {
		return nil, err
	}
	set.Bounds = monitor
	return set, nil
}

// locate resolves the target to its monitor and window rectangles.
func (s *Service) locate(t Target) (image.Rectangle, image.Rectangle, error) {
	displays := s.platform.Displays()
	if len(displays) == 0 {
		return image.Rectangle{}, image.Rectangle{}, &CaptureError{Op: "displays", Err: errors.New("no active displays found")}
	}
	if t.Display {
		if t.ID < 0 || t.ID >= len(displays) {
			return image.Rectangle{}, image.Rectangle{}, fmt.Errorf("%w: %s", ErrTargetNotFound, t)
		}
		return displays[t.ID], displays[t.ID], nil
	}
	win, err := s.platform.WindowBounds(t)
	if err != nil {
		return image.Rectangle{}, image.Rectangle{}, err
	}
	if win.Empty() {
		return image.Rectangle{}, image.Rectangle{}, fmt.Errorf("%w: %s has no visible area", ErrTargetNotFound, t)
	}
	monitor := monitorFor(displays, win)
	log.Printf("screenshot: %s window=%v monitor=%v", t, win, monitor)
	return monitor, win, nil
}

// monitorFor picks the display holding the window's top-left corner, then the
// one with the largest overlap, then the primary display.
func monitorFor(displays []image.Rectangle, win image.Rectangle) image.Rectangle {
	for _, d := range displays {
		if win.Min.In(d) {
			return d
		}
	}
	best, bestArea := displays[0], 0
	for _, d := range displays {
		in := d.Intersect(win)
		if a := in.Dx() * in.Dy(); a > bestArea {
			best, bestArea = d, a
		}
	}
	return best
}
