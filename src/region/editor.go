package region

import (
	"errors"
	"log"
)

// ErrEditRejected is returned when a gesture would produce a degenerate region
// or one overlapping an existing region. UI callers ignore it.
var ErrEditRejected = errors.New("region edit rejected")

// Editor turns drag gestures into edits of an ordered region list.
// It is not safe for concurrent use; the session controller owns it.
type Editor struct {
	regions []Region
}

func NewEditor(regions []Region) *Editor {
	return &Editor{regions: Clone(regions)}
}

// Regions returns a copy of the current list.
func (e *Editor) Regions() []Region { return Clone(e.regions) }

// Reset replaces the list, e.g. after a profile switch.
func (e *Editor) Reset(regions []Region) { e.regions = Clone(regions) }

// OnDragEnd applies a gesture that started at start and moved by delta.
// On rejection the list is left unchanged and ErrEditRejected is returned
// alongside the unchanged list.
func (e *Editor) OnDragEnd(start, delta Point) ([]Region, error) {
	next, err := ApplyDrag(e.regions, start, delta)
	if err != nil {
		log.Printf("region: drag start=%v delta=%v rejected: %v", start, delta, err)
		return e.Regions(), err
	}
	e.regions = next
	return e.Regions(), nil
}

// ApplyDrag is the pure form of Editor.OnDragEnd. The input slice is never
// modified.
//
//   - zero delta over a region removes it
//   - a drag starting inside a region moves it by delta
//   - any other drag creates a new region unless it is degenerate or overlaps
func ApplyDrag(regions []Region, start, delta Point) ([]Region, error) {
	hit := hitIndex(regions, start)

	if delta.X == 0 && delta.Y == 0 {
		if hit < 0 {
			return nil, ErrEditRejected
		}
		out := make([]Region, 0, len(regions)-1)
		out = append(out, regions[:hit]...)
		return append(out, regions[hit+1:]...), nil
	}

	if hit >= 0 {
		moved := regions[hit].Translate(delta.X, delta.Y)
		for i, r := range regions {
			if i != hit && moved.Overlaps(r) {
				return nil, ErrEditRejected
			}
		}
		out := Clone(regions)
		out[hit] = moved
		return out, nil
	}

	candidate := FromDrag(start, delta)
	if candidate.Empty() {
		return nil, ErrEditRejected
	}
	for _, r := range regions {
		if candidate.Overlaps(r) {
			return nil, ErrEditRejected
		}
	}
	out := make([]Region, 0, len(regions)+1)
	out = append(out, regions...)
	return append(out, candidate), nil
}

// hitIndex returns the last region containing p so the topmost drawn region wins.
func hitIndex(regions []Region, p Point) int {
	for i := len(regions) - 1; i >= 0; i-- {
		if regions[i].Contains(p) {
			return i
		}
	}
	return -1
}
