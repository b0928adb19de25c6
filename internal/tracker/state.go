package tracker

// TrackingState is the sampler's gate. Only Active ticks are attributed.
//
// Transitions:
//
//	Active -> Idle    focus unchanged for longer than the idle threshold
//	Idle   -> Active  focus moved
//	Active <-> Paused user toggle
//	Idle   -> Paused  user toggle; resuming returns to Idle until focus moves
//
// Paused never transitions to Idle on its own.
type TrackingState int

const (
	Active TrackingState = iota
	Paused
	Idle
)

func (s TrackingState) String() string {
	switch s {
	case Active:
		return "active"
	case Paused:
		return "paused"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

// IsTracking reports whether ticks are attributed in this state
func (s TrackingState) IsTracking() bool {
	return s == Active
}

// MarshalText lets the state appear by name in JSON output
func (s TrackingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
