// Package geometry resolves the fixed set of display rectangles a session
// tracks and attributes focus positions to them.
package geometry

import (
	"github.com/pkg/errors"

	"screenbalance/pkg/window"
)

// NoDisplay is the index returned when a position lies on no display.
const NoDisplay = -1

// ErrNoDisplays is returned when the environment reports zero displays.
var ErrNoDisplays = errors.New("no displays found")

// Source is the environment query for display geometry.
type Source interface {
	Displays() ([]window.Rect, error)
}

// Resolve queries src once. Index order of the result is the display
// identity for the rest of the session.
func Resolve(src Source) ([]window.Rect, error) {
	rects, err := src.Displays()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query display geometry")
	}
	if len(rects) == 0 {
		return nil, ErrNoDisplays
	}

	out := make([]window.Rect, len(rects))
	copy(out, rects)
	return out, nil
}

// Locate returns the index of the first rectangle containing p, or NoDisplay.
func Locate(rects []window.Rect, p window.Point) int {
	for i, r := range rects {
		if r.Contains(p) {
			return i
		}
	}
	return NoDisplay
}
