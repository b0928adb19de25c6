// Package reporter reads the sampler's counters on its own schedule, derives
// the balance report and publishes it to every registered sink.
package reporter

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"screenbalance/internal/balance"
	"screenbalance/internal/config"
	"screenbalance/internal/tracker"
)

// Source is the read side of the sampler
type Source interface {
	Snapshot() []int64
	State() tracker.TrackingState
}

// Sink receives one Update per report tick
type Sink interface {
	Publish(update Update)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(update Update)

// Publish calls f(update)
func (f SinkFunc) Publish(update Update) {
	f(update)
}

// Update is everything a sink needs to render one report tick
type Update struct {
	Report  balance.Report        `json:"report"`
	Seconds []float64             `json:"seconds"`
	State   tracker.TrackingState `json:"state"`
	Status  string                `json:"status"`
	Control string                `json:"control"`
	Glyph   string                `json:"glyph"`
	At      time.Time             `json:"at"`
}

// Reporter publishes the distribution every report interval
type Reporter struct {
	config *config.Config
	source Source
	logger zerolog.Logger

	mu    sync.RWMutex
	sinks []Sink
}

// New creates a new reporter
func New(cfg *config.Config, source Source, logger zerolog.Logger, sinks ...Sink) *Reporter {
	return &Reporter{
		config: cfg,
		source: source,
		logger: logger.With().Str("component", "reporter").Logger(),
		sinks:  sinks,
	}
}

// AddSink registers another sink for subsequent ticks
func (r *Reporter) AddSink(sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, sink)
}

// Build takes a snapshot and derives the update without publishing it
func (r *Reporter) Build() Update {
	counts := r.source.Snapshot()
	state := r.source.State()

	tick := r.config.Tracker.SampleInterval.Seconds()
	report := balance.Analyze(counts)
	report.CatchUpSeconds *= tick

	seconds := make([]float64, len(counts))
	for i, c := range counts {
		seconds[i] = float64(c) * tick
	}

	return Update{
		Report:  report,
		Seconds: seconds,
		State:   state,
		Status:  FormatStatus(report),
		Control: FormatControl(state),
		Glyph:   Glyph(state, report),
		At:      time.Now(),
	}
}

// ReportOnce builds an update and publishes it to every sink
func (r *Reporter) ReportOnce() Update {
	update := r.Build()

	r.mu.RLock()
	sinks := make([]Sink, len(r.sinks))
	copy(sinks, r.sinks)
	r.mu.RUnlock()

	for _, sink := range sinks {
		sink.Publish(update)
	}

	r.logger.Debug().
		Str("state", update.State.String()).
		Int("target", update.Report.TargetDisplay).
		Float64("catch_up_seconds", update.Report.CatchUpSeconds).
		Msg("Report published")
	return update
}

// Run publishes on every report tick until ctx is cancelled
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.config.Tracker.ReportInterval)
	defer ticker.Stop()

	r.ReportOnce()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.ReportOnce()
		}
	}
}
