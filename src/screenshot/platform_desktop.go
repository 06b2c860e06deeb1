package screenshot

import (
	"fmt"
	"image"
	"log"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

// desktopPlatform reads pixels with kbinani/screenshot and resolves windows
// through robotgo, which addresses them by process id.
type desktopPlatform struct{}

func (desktopPlatform) Displays() []image.Rectangle {
	n := screenshot.NumActiveDisplays()
	out := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, screenshot.GetDisplayBounds(i))
	}
	return out
}

func (desktopPlatform) WindowBounds(t Target) (image.Rectangle, error) {
	ok, err := robotgo.PidExists(t.ID)
	if err != nil || !ok {
		return image.Rectangle{}, fmt.Errorf("%w: %s", ErrTargetNotFound, t)
	}
	x, y, w, h := robotgo.GetBounds(t.ID)
	return image.Rect(x, y, x+w, y+h), nil
}

func (desktopPlatform) CaptureRect(rect image.Rectangle) (*image.RGBA, error) {
	return screenshot.CaptureRect(rect)
}

func (desktopPlatform) Windows(app string) ([]Target, error) {
	pids, err := robotgo.FindIds(app)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	out := make([]Target, 0, len(pids))
	for _, pid := range pids {
		title := robotgo.GetTitle(pid)
		if title == "" {
			continue
		}
		name, err := robotgo.FindName(pid)
		if err != nil {
			log.Printf("screenshot: no process name for pid %d: %v", pid, err)
			name = app
		}
		out = append(out, Target{ID: pid, AppName: name, Title: title})
	}
	return out, nil
}
