// Package balance derives the usage distribution and the time-to-balance
// projection from a snapshot of per-display counters.
package balance

// NoTarget marks a report in which no display needs catching up.
const NoTarget = -1

// Report is recomputed from scratch on every report tick.
type Report struct {
	Percentages    []float64 `json:"percentages"`
	TargetDisplay  int       `json:"target_display"`
	CatchUpSeconds float64   `json:"catch_up_seconds"`
	TotalTicks     int64     `json:"total_ticks"`
}

// HasTarget reports whether some display needs exclusive use to reach balance
func (r Report) HasTarget() bool {
	return r.TargetDisplay != NoTarget
}

// Analyze normalizes counters to percentages and picks the single display
// that needs the most exclusive ticks before all displays hold equal totals.
//
// With n displays and total T, display i needs x_i = (T - n*c_i) / (n - 1)
// more ticks. Only the largest positive x_i is reported; simultaneous
// catch-up on several displays is not modelled.
func Analyze(counters []int64) Report {
	n := len(counters)
	report := Report{
		Percentages:   make([]float64, n),
		TargetDisplay: NoTarget,
	}

	var total int64
	for _, c := range counters {
		total += c
	}
	report.TotalTicks = total

	if n == 0 || total == 0 {
		return report
	}

	normalize(counters, total, report.Percentages)

	if n < 2 {
		return report
	}

	maxX := 0.0
	for i, c := range counters {
		x := float64(total-int64(n)*c) / float64(n-1)
		if x > maxX {
			maxX = x
			report.TargetDisplay = i
		}
	}
	report.CatchUpSeconds = maxX

	return report
}

// normalize writes raw shares rescaled by 100/sum(raw). The rescale is a
// no-op in exact arithmetic; it is kept so rounding matches reference output.
func normalize(counters []int64, total int64, out []float64) {
	raw := make([]float64, len(counters))
	var sum float64
	for i, c := range counters {
		raw[i] = float64(c) / float64(total)
		sum += raw[i]
	}

	factor := 100 / sum
	for i, p := range raw {
		out[i] = p * factor
	}
}
