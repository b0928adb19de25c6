// Package metrics exposes the usage distribution and sampler health as
// Prometheus collectors.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"screenbalance/internal/balance"
)

// Tick results for TicksTotal
const (
	TickAttributed   = "attributed"
	TickUnattributed = "unattributed"
	TickSkipped      = "skipped"
	TickFailed       = "failed"
)

var (
	// Sampler metrics
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screenbalance_ticks_total",
			Help: "Sampling ticks by outcome",
		},
		[]string{"result"},
	)

	IdleCorrections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "screenbalance_idle_corrections_total",
			Help: "Retroactive idle corrections applied",
		},
	)

	TrackingState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "screenbalance_tracking_state",
			Help: "Sampler state: 0 active, 1 paused, 2 idle",
		},
	)

	// Distribution metrics
	DisplaySeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "screenbalance_display_seconds",
			Help: "Usage attributed to each display in seconds",
		},
		[]string{"display"},
	)

	DisplayPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "screenbalance_display_percent",
			Help: "Share of total usage per display",
		},
		[]string{"display"},
	)

	CatchUpSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "screenbalance_catch_up_seconds",
			Help: "Exclusive use the target display needs to reach balance",
		},
	)

	TargetDisplay = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "screenbalance_target_display",
			Help: "1-based screen number that needs catching up, 0 when balanced",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal,
		IdleCorrections,
		TrackingState,
		DisplaySeconds,
		DisplayPercent,
		CatchUpSeconds,
		TargetDisplay,
	)
}

// DisplayLabel is the label value for display index i
func DisplayLabel(i int) string {
	return strconv.Itoa(i + 1)
}

// RecordReport publishes one report tick. seconds is indexed like the
// report's percentages.
func RecordReport(seconds []float64, report balance.Report, state int) {
	for i, s := range seconds {
		DisplaySeconds.WithLabelValues(DisplayLabel(i)).Set(s)
	}
	for i, p := range report.Percentages {
		DisplayPercent.WithLabelValues(DisplayLabel(i)).Set(p)
	}

	CatchUpSeconds.Set(report.CatchUpSeconds)
	if report.HasTarget() {
		TargetDisplay.Set(float64(report.TargetDisplay + 1))
	} else {
		TargetDisplay.Set(0)
	}
	TrackingState.Set(float64(state))
}
