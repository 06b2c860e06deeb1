package screenshot

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"testing"

	"game-translator/src/region"
)

type fakePlatform struct {
	displays []image.Rectangle
	windows  map[int]image.Rectangle
	captured []image.Rectangle
}

func (f *fakePlatform) Displays() []image.Rectangle { return f.displays }

func (f *fakePlatform) WindowBounds(t Target) (image.Rectangle, error) {
	r, ok := f.windows[t.ID]
	if !ok {
		return image.Rectangle{}, ErrTargetNotFound
	}
	return r, nil
}

func (f *fakePlatform) CaptureRect(rect image.Rectangle) (*image.RGBA, error) {
	f.captured = append(f.captured, rect)
	img := image.NewRGBA(rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	return img, nil
}

func (f *fakePlatform) Windows(app string) ([]Target, error) {
	var out []Target
	for id := range f.windows {
		out = append(out, Target{ID: id, AppName: app, Title: "win"})
	}
	return out, nil
}

func newTestService(t *testing.T, p Platform) *Service {
	s := NewService(p)
	s.SetTempDir(t.TempDir())
	return s
}

func TestCaptureClampsToMonitor(t *testing.T) {
	p := &fakePlatform{
		displays: []image.Rectangle{image.Rect(0, 0, 100, 80), image.Rect(100, 0, 300, 150)},
		windows:  map[int]image.Rectangle{7: image.Rect(60, -10, 110, 40)},
	}
	s := newTestService(t, p)

	frame, err := s.Capture(context.Background(), Target{ID: 7})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if got := frame.Bounds(); got != image.Rect(0, 0, 100, 80) {
		t.Errorf("frame bounds = %v, want monitor 0 size", got)
	}
	if len(p.captured) != 1 || p.captured[0] != image.Rect(60, 0, 100, 40) {
		t.Errorf("captured %v, want only the visible part", p.captured)
	}
	if c := frame.NRGBAAt(95, 10); c.R != 255 || c.A != 255 {
		t.Errorf("expected window pixels at (95,10), got %v", c)
	}
	if c := frame.NRGBAAt(10, 10); c.A != 0 {
		t.Errorf("expected transparent pixel outside window, got %v", c)
	}
}

func TestCaptureMissingTarget(t *testing.T) {
	s := newTestService(t, &fakePlatform{displays: []image.Rectangle{image.Rect(0, 0, 10, 10)}})
	if _, err := s.Capture(context.Background(), Target{ID: 1}); !errors.Is(err, ErrTargetNotFound) {
		t.Errorf("expected ErrTargetNotFound, got %v", err)
	}
	if _, err := s.Capture(context.Background(), Target{ID: 3, Display: true}); !errors.Is(err, ErrTargetNotFound) {
		t.Errorf("expected ErrTargetNotFound for display, got %v", err)
	}
	if s.Exists(Target{ID: 1}) {
		t.Errorf("Exists reported a missing window")
	}
}

func TestCaptureRegionsWritesAndReleases(t *testing.T) {
	p := &fakePlatform{
		displays: []image.Rectangle{image.Rect(0, 0, 200, 100)},
		windows:  map[int]image.Rectangle{1: image.Rect(0, 0, 200, 100)},
	}
	s := newTestService(t, p)
	regions := []region.Region{
		region.New(10, 10, 50, 20),
		region.New(500, 500, 10, 10),
		region.New(190, 90, 50, 50),
	}
	set, err := s.CaptureRegions(context.Background(), Target{ID: 1}, regions)
	if err != nil {
		t.Fatalf("CaptureRegions: %v", err)
	}
	if len(set.Crops) != 3 {
		t.Fatalf("expected 3 crops, got %d", len(set.Crops))
	}
	if !set.Crops[1].Skipped || set.Crops[1].Path != "" {
		t.Errorf("out-of-frame crop should be skipped: %+v", set.Crops[1])
	}
	paths := set.Paths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %d", len(paths))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("crop file missing: %v", err)
		}
	}

	set.Release()
	set.Release()
	for _, path := range paths {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("crop file %s not removed", path)
		}
	}
}

func TestCaptureHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newTestService(t, &fakePlatform{})
	if _, err := s.Capture(ctx, Target{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestListTargetsIncludesDisplays(t *testing.T) {
	p := &fakePlatform{
		displays: []image.Rectangle{image.Rect(0, 0, 10, 10), image.Rect(10, 0, 20, 10)},
		windows:  map[int]image.Rectangle{4: image.Rect(0, 0, 5, 5)},
	}
	targets, err := newTestService(t, p).ListTargets("game")
	if err != nil {
		t.Fatalf("ListTargets: %v", err)
	}
	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(targets))
	}
	if !targets[2].Display || targets[2].ID != 1 {
		t.Errorf("last target should be display 1: %+v", targets[2])
	}
}

func TestDesktopCapture(t *testing.T) {
	s := NewDesktop()
	s.SetTempDir(t.TempDir())
	if len(desktopPlatform{}.Displays()) == 0 {
		t.Skip("no display available")
	}
	if _, err := s.Capture(context.Background(), Target{ID: 0, Display: true}); err != nil {
		t.Logf("Failed to capture display (expected in headless environment): %v", err)
	}
}
