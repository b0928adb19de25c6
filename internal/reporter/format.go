package reporter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"screenbalance/internal/balance"
	"screenbalance/internal/tracker"
	"screenbalance/pkg/utils"
)

// Labels shown next to the pause control
const (
	ControlPause  = "Pause"
	ControlResume = "Resume"
	ControlIdle   = "Idle..."
)

// Glyphs for the one-token state marker
const (
	GlyphStopped  = "| |"
	GlyphBalanced = ":)"
)

// BalancedStatus is shown when no display needs catching up
const BalancedStatus = "All screens are balanced: 0 sec"

// FormatStatus names the display that needs catching up and for how long
func FormatStatus(report balance.Report) string {
	if !report.HasTarget() {
		return BalancedStatus
	}
	return fmt.Sprintf("Screen %d needs %s to reach balance",
		report.TargetDisplay+1, utils.FormatTime(report.CatchUpSeconds))
}

// FormatControl returns the label of the pause control for state
func FormatControl(state tracker.TrackingState) string {
	switch state {
	case tracker.Paused:
		return ControlResume
	case tracker.Idle:
		return ControlIdle
	default:
		return ControlPause
	}
}

// Glyph is "| |" when not tracking, ":)" when balanced, otherwise the
// 1-based screen number that needs catching up
func Glyph(state tracker.TrackingState, report balance.Report) string {
	if !state.IsTracking() {
		return GlyphStopped
	}
	if !report.HasTarget() {
		return GlyphBalanced
	}
	return strconv.Itoa(report.TargetDisplay + 1)
}

// Slice is one display's share as a sink renders it
type Slice struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
	Seconds float64 `json:"seconds"`
}

// Slices returns one entry per display. With no usage recorded yet it
// returns an equal split labelled as having no data.
func Slices(update Update) []Slice {
	n := len(update.Report.Percentages)
	slices := make([]Slice, n)

	if update.Report.TotalTicks == 0 {
		for i := range slices {
			slices[i] = Slice{
				Label:   fmt.Sprintf("Screen %d (No Data)", i+1),
				Percent: 100 / float64(n),
			}
		}
		return slices
	}

	for i, p := range update.Report.Percentages {
		slices[i] = Slice{
			Label:   fmt.Sprintf("Screen %d", i+1),
			Percent: p,
		}
		if i < len(update.Seconds) {
			slices[i].Seconds = update.Seconds[i]
		}
	}
	return slices
}

// FormatReportText formats the update as human-readable text
func FormatReportText(update Update) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Screen Balance - %s\n", update.State))
	sb.WriteString(fmt.Sprintf("%-22s %10s %10s\n", "Display", "Time", "Percent"))
	sb.WriteString(strings.Repeat("-", 44) + "\n")

	slices := Slices(update)
	if len(slices) == 0 {
		sb.WriteString("No displays.\n")
	}
	for _, s := range slices {
		sb.WriteString(fmt.Sprintf("%-22s %10s %9.1f%%\n",
			s.Label, utils.FormatTime(s.Seconds), s.Percent))
	}

	sb.WriteString("\n" + update.Status + "\n")
	return sb.String()
}

// FormatReportJSON formats the update as JSON
func FormatReportJSON(update Update) (string, error) {
	data, err := json.MarshalIndent(update, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}
