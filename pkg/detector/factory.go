package detector

import (
	"os"
	"time"

	"github.com/pkg/errors"

	"screenbalance/pkg/integrations/hybrid"
	"screenbalance/pkg/integrations/wayland"
	"screenbalance/pkg/integrations/x11"
	"screenbalance/pkg/window"
)

// New returns a detector for the running display server. Under Wayland the
// compositor IPC is preferred and XWayland answers what the IPC cannot.
// queryTimeout bounds each compositor IPC call.
func New(queryTimeout time.Duration) (window.Detector, error) {
	var tried []string

	if DetectDisplayServer() == "wayland" {
		det := wayland.NewDetector(queryTimeout)
		if det.IsAvailable() {
			if os.Getenv("DISPLAY") != "" {
				if xdet, err := x11.NewDetector(); err == nil {
					return hybrid.NewDetector(det, xdet), nil
				}
			}
			return det, nil
		}
		tried = append(tried, "wayland: no supported compositor IPC")
	}

	if os.Getenv("DISPLAY") != "" {
		det, err := x11.NewDetector()
		if err == nil {
			return det, nil
		}
		tried = append(tried, "x11: "+err.Error())
	}

	if len(tried) == 0 {
		return nil, errors.New("no display server detected (DISPLAY and WAYLAND_DISPLAY are unset)")
	}
	return nil, errors.Errorf("no usable display detector: %v", tried)
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
