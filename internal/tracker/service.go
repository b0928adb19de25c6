package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"screenbalance/internal/config"
	"screenbalance/internal/geometry"
	"screenbalance/internal/metrics"
	"screenbalance/internal/models"
	"screenbalance/pkg/window"
)

// ErrAlreadyRunning is returned by Start when the loop is already active.
var ErrAlreadyRunning = errors.New("tracker is already running")

// ErrorStore receives failed environment queries
type ErrorStore interface {
	CreateErrorLog(errorLog *models.ErrorLog) error
	SetRepeats(id uint, repeats int64) error
}

// TickResult describes what one sampling cycle did
type TickResult struct {
	Display   int           // attributed display, or geometry.NoDisplay
	State     TrackingState // state after the tick
	Corrected bool          // an idle correction was applied this tick
	Err       error         // focus query failure; nothing else happened
}

// Service samples focus once per interval and attributes ticks to displays.
type Service struct {
	config   *config.Config
	detector window.Detector
	displays []window.Rect
	counters *Counters
	store    ErrorStore
	clock    Clock
	logger   zerolog.Logger

	source     window.FocusSource
	correction int64

	mu             sync.Mutex
	state          TrackingState
	pausedFromIdle bool
	lastFocus      window.Point
	hasFocus       bool
	lastPointer    window.Point
	hasPointer     bool
	lastChange     time.Time
	lastActive     int

	// failure run, touched only by Tick
	failures  int64
	failLogID uint

	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
}

// NewService creates a sampler over a fixed display list. store may be nil.
func NewService(cfg *config.Config, detector window.Detector, displays []window.Rect, store ErrorStore, logger zerolog.Logger) *Service {
	return &Service{
		config:     cfg,
		detector:   detector,
		displays:   displays,
		counters:   NewCounters(len(displays)),
		store:      store,
		clock:      RealClock{},
		logger:     logger.With().Str("component", "tracker").Logger(),
		source:     cfg.Source(),
		correction: cfg.IdleCorrectionTicks(),
		lastActive: geometry.NoDisplay,
		stopChan:   make(chan struct{}),
	}
}

// SetClock replaces the time source used for idle detection
func (s *Service) SetClock(clock Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Displays returns the display rectangles the counters are indexed by
func (s *Service) Displays() []window.Rect {
	out := make([]window.Rect, len(s.displays))
	copy(out, s.displays)
	return out
}

// Counters exposes the shared counter set for readers
func (s *Service) Counters() *Counters {
	return s.counters
}

// Snapshot copies the current per-display tick counts
func (s *Service) Snapshot() []int64 {
	return s.counters.Snapshot()
}

// State returns the current tracking state
func (s *Service) State() TrackingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TogglePause flips between paused and not paused and returns the new state.
// Resuming restarts the idle timer so paused time is never read as idle.
func (s *Service) TogglePause() TrackingState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Active:
		s.state = Paused
		s.pausedFromIdle = false
	case Idle:
		s.state = Paused
		s.pausedFromIdle = true
	case Paused:
		if s.pausedFromIdle {
			s.state = Idle
		} else {
			s.state = Active
		}
		s.pausedFromIdle = false
		s.lastChange = s.clock.Now()
	}

	s.logger.Info().Str("state", s.state.String()).Msg("Pause toggled")
	metrics.TrackingState.Set(float64(s.state))
	return s.state
}

// Tick runs one sampling cycle. It must not be called concurrently with itself.
func (s *Service) Tick() TickResult {
	p, err := window.FocusPosition(s.detector, s.source)
	if errors.Is(err, window.ErrNoFocus) {
		s.logger.Debug().Msg("No focus, skipping tick")
		metrics.TicksTotal.WithLabelValues(metrics.TickUnattributed).Inc()
		return TickResult{Display: geometry.NoDisplay, State: s.State(), Err: err}
	}
	if err != nil {
		s.recordFailure(err)
		metrics.TicksTotal.WithLabelValues(metrics.TickFailed).Inc()
		return TickResult{Display: geometry.NoDisplay, State: s.State(), Err: err}
	}
	s.recordRecovery()
	ptr, ptrOK := s.pointerActivity()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := TickResult{Display: geometry.NoDisplay}
	now := s.clock.Now()

	moved := !s.hasFocus || p != s.lastFocus
	if ptrOK {
		moved = moved || (s.hasPointer && ptr != s.lastPointer)
		s.lastPointer = ptr
		s.hasPointer = true
	}

	if moved {
		s.lastFocus = p
		s.hasFocus = true
		s.lastChange = now
		switch s.state {
		case Idle:
			s.state = Active
			s.logger.Info().Msg("Focus moved, tracking resumed")
		case Paused:
			s.pausedFromIdle = false
		}
	} else if s.config.Tracker.IdleDetection && s.state == Active &&
		now.Sub(s.lastChange) > s.config.Tracker.IdleThreshold {
		s.state = Idle
		result.Corrected = s.correctIdle()
	}

	result.State = s.state
	if !s.state.IsTracking() {
		metrics.TicksTotal.WithLabelValues(metrics.TickSkipped).Inc()
		return result
	}

	idx := geometry.Locate(s.displays, p)
	if idx == geometry.NoDisplay {
		metrics.TicksTotal.WithLabelValues(metrics.TickUnattributed).Inc()
		return result
	}

	s.counters.Increment(idx)
	s.lastActive = idx
	result.Display = idx
	metrics.TicksTotal.WithLabelValues(metrics.TickAttributed).Inc()
	return result
}

// pointerActivity samples the pointer as an extra presence signal when
// attributing by window origin. Maximized windows all share one origin, so
// the origin alone cannot tell a busy user from an absent one. Pointer
// failures are ignored here; sway has no pointer query at all.
func (s *Service) pointerActivity() (window.Point, bool) {
	if s.source != window.FocusWindow {
		return window.Point{}, false
	}
	p, err := s.detector.Pointer()
	if err != nil {
		return window.Point{}, false
	}
	return p, true
}

// correctIdle removes the ticks credited while the user was already away.
// Caller holds s.mu.
func (s *Service) correctIdle() bool {
	event := s.logger.Info().Dur("threshold", s.config.Tracker.IdleThreshold)
	if s.lastActive == geometry.NoDisplay {
		event.Msg("Idle detected, nothing to correct")
		return false
	}

	remaining := s.counters.Subtract(s.lastActive, s.correction)
	metrics.IdleCorrections.Inc()
	event.Int("display", s.lastActive).
		Int64("ticks", s.correction).
		Int64("remaining", remaining).
		Msg("Idle detected, correction applied")
	return true
}

// Start runs the sampling loop until ctx is cancelled or Stop is called
func (s *Service) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	interval := s.config.Tracker.SampleInterval
	s.logger.Info().
		Dur("interval", interval).
		Int("displays", len(s.displays)).
		Str("focus_source", string(s.source)).
		Msg("Starting tracker")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Tick()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Tracker stopped by context")
			return ctx.Err()

		case <-s.stopChan:
			s.logger.Info().Msg("Tracker stopped")
			return nil

		case <-ticker.C:
			s.Tick()
		}
	}
}

// Stop ends the loop started by Start. The service cannot be restarted.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// IsRunning reports whether the sampling loop is active
func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// recordFailure stores only the first failure of a consecutive run
func (s *Service) recordFailure(err error) {
	s.failures++
	if s.failures > 1 {
		s.logger.Debug().Err(err).Int64("consecutive", s.failures).Msg("Focus query failed")
		return
	}

	s.logger.Warn().Err(err).Msg("Focus query failed, skipping tick")
	if s.store == nil {
		return
	}

	entry := &models.ErrorLog{
		Timestamp: s.clock.Now(),
		Component: "sampler",
		ErrorMsg:  err.Error(),
	}
	if dbErr := s.store.CreateErrorLog(entry); dbErr != nil {
		s.logger.Error().Err(dbErr).AnErr("original", err).Msg("Failed to store error in database")
		return
	}
	s.failLogID = entry.ID
}

func (s *Service) recordRecovery() {
	if s.failures == 0 {
		return
	}

	s.logger.Info().Int64("failed_ticks", s.failures).Msg("Focus query recovered")
	if s.store != nil && s.failLogID != 0 && s.failures > 1 {
		if err := s.store.SetRepeats(s.failLogID, s.failures-1); err != nil {
			s.logger.Error().Err(err).Msg("Failed to update error log")
		}
	}
	s.failures = 0
	s.failLogID = 0
}
