package hybrid

import (
	"github.com/pkg/errors"

	"screenbalance/pkg/window"
)

// Detector answers each query from the primary detector and falls back to
// the secondary one when the primary fails. Under sway, whose IPC has no
// pointer query, XWayland is the only pointer source.
type Detector struct {
	primary  window.Detector
	fallback window.Detector
}

// NewDetector combines two detectors. fallback may be nil.
func NewDetector(primary, fallback window.Detector) *Detector {
	return &Detector{primary: primary, fallback: fallback}
}

func (d *Detector) Displays() ([]window.Rect, error) {
	rects, err := d.primary.Displays()
	if err == nil || d.fallback == nil {
		return rects, err
	}
	rects, fbErr := d.fallback.Displays()
	if fbErr != nil {
		return nil, errors.Wrapf(err, "fallback %s also failed: %v", d.fallback.GetDisplayServer(), fbErr)
	}
	return rects, nil
}

func (d *Detector) ActiveWindow() (window.Rect, error) {
	bounds, err := d.primary.ActiveWindow()
	if err == nil || d.fallback == nil || errors.Is(err, window.ErrNoFocus) {
		return bounds, err
	}
	bounds, fbErr := d.fallback.ActiveWindow()
	if fbErr != nil {
		return window.Rect{}, errors.Wrapf(err, "fallback %s also failed: %v", d.fallback.GetDisplayServer(), fbErr)
	}
	return bounds, nil
}

func (d *Detector) Pointer() (window.Point, error) {
	p, err := d.primary.Pointer()
	if err == nil || d.fallback == nil {
		return p, err
	}
	p, fbErr := d.fallback.Pointer()
	if fbErr != nil {
		return window.Point{}, errors.Wrapf(err, "fallback %s also failed: %v", d.fallback.GetDisplayServer(), fbErr)
	}
	return p, nil
}

func (d *Detector) IsAvailable() bool {
	return d.primary.IsAvailable() || (d.fallback != nil && d.fallback.IsAvailable())
}

// GetDisplayServer reports the primary display server
func (d *Detector) GetDisplayServer() string {
	return d.primary.GetDisplayServer()
}

func (d *Detector) Close() error {
	err := d.primary.Close()
	if d.fallback != nil {
		if fbErr := d.fallback.Close(); err == nil {
			err = fbErr
		}
	}
	return err
}
