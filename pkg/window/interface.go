package window

import "errors"

// ErrNoFocus is returned when the environment reports no focused window or pointer.
var ErrNoFocus = errors.New("no focus position available")

// Point is a position in screen coordinates
type Point struct {
	X int
	Y int
}

// Rect is a display or window rectangle in screen coordinates
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether p lies inside r using half-open intervals,
// so a point on the right or bottom edge belongs to the neighbouring display.
func (r Rect) Contains(p Point) bool {
	return r.X <= p.X && p.X < r.X+r.Width &&
		r.Y <= p.Y && p.Y < r.Y+r.Height
}

// Origin returns the top-left corner of r
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// FocusSource selects which proxy for attention a detector reports.
type FocusSource string

const (
	// FocusWindow reports the origin of the active window.
	FocusWindow FocusSource = "window"
	// FocusPointer reports the pointer position.
	FocusPointer FocusSource = "pointer"
)

// Valid reports whether s is a known focus source
func (s FocusSource) Valid() bool {
	return s == FocusWindow || s == FocusPointer
}

// Detector is the interface that all display server integrations must satisfy
type Detector interface {
	// Displays returns the display rectangles in a stable order
	Displays() ([]Rect, error)

	// ActiveWindow returns the bounds of the focused window
	ActiveWindow() (Rect, error)

	// Pointer returns the current pointer position
	Pointer() (Point, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type ("x11" or "wayland")
	GetDisplayServer() string

	// Close cleans up any resources used by the detector
	Close() error
}

// FocusPosition queries d for the configured attention proxy.
// A window is reduced to its origin, which is what gets attributed to a display.
func FocusPosition(d Detector, source FocusSource) (Point, error) {
	if source == FocusPointer {
		return d.Pointer()
	}
	bounds, err := d.ActiveWindow()
	if err != nil {
		return Point{}, err
	}
	return bounds.Origin(), nil
}
