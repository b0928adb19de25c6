package utils

import "fmt"

// FormatTime renders seconds as "<v> sec" below a minute, "<v> min" below an
// hour and "<v> hrs" otherwise, with one decimal place.
func FormatTime(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1f sec", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%.1f min", seconds/60)
	}
	return fmt.Sprintf("%.1f hrs", seconds/3600)
}

func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds > 3600 {
		return fmt.Sprintf("%dh", int64(seconds/3600))
	}
	return fmt.Sprintf("%dm", int64(seconds/60))
}
