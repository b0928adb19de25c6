package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"screenbalance/internal/config"
	"screenbalance/internal/models"
	"screenbalance/internal/reporter"
	"screenbalance/internal/tracker"
	"screenbalance/pkg/utils"
	"screenbalance/pkg/window"
)

const (
	defaultErrorLimit = 50
	maxErrorLimit     = 500
)

// Controller is the sampler surface the handler drives
type Controller interface {
	State() tracker.TrackingState
	TogglePause() tracker.TrackingState
	Displays() []window.Rect
}

// ErrorLister reads and clears the stored query failures
type ErrorLister interface {
	GetRecentErrors(limit int) ([]*models.ErrorLog, error)
	CountErrorsSince(since time.Time) (int64, error)
	Clear() error
}

// Handler serves the latest report it was given and the pause control.
// It is a reporter.Sink.
type Handler struct {
	config  *config.Config
	ctrl    Controller
	errors  ErrorLister
	logger  zerolog.Logger
	started time.Time

	mu     sync.RWMutex
	latest *reporter.Update
}

type displayView struct {
	Index  int    `json:"index"`
	Label  string `json:"label"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// NewHandler creates a handler. errs may be nil when no database is open.
func NewHandler(cfg *config.Config, ctrl Controller, errs ErrorLister, logger zerolog.Logger) *Handler {
	return &Handler{
		config:  cfg,
		ctrl:    ctrl,
		errors:  errs,
		logger:  logger.With().Str("component", "web").Logger(),
		started: time.Now(),
	}
}

// Publish stores the update served by /api/report
func (h *Handler) Publish(update reporter.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = &update
}

func (h *Handler) latestUpdate() (reporter.Update, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return reporter.Update{}, false
	}
	return *h.latest, true
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/pause", h.handlePause)
	mux.HandleFunc("/api/displays", h.handleDisplays)
	mux.HandleFunc("/api/errors", h.handleErrors)

	mux.HandleFunc("/health", h.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/", h.handleIndex)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	update, ok := h.latestUpdate()
	if !ok {
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(`<div class="loading">Waiting for the first report...</div>`))
			return
		}
		http.Error(w, "No report yet", http.StatusServiceUnavailable)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		h.respondReportHTML(w, update)
		return
	}

	respondJSON(w, map[string]interface{}{
		"report":  update.Report,
		"slices":  reporter.Slices(update),
		"state":   update.State,
		"status":  update.Status,
		"control": update.Control,
		"glyph":   update.Glyph,
		"at":      update.At,
	})
}

func (h *Handler) respondReportHTML(w http.ResponseWriter, update reporter.Update) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	slices := reporter.Slices(update)
	if len(slices) == 0 {
		w.Write([]byte(`<div class="loading">No displays</div>`))
		return
	}

	html := `<div class="listing">`
	for _, s := range slices {
		timeStr := utils.FormatRoundedUnit(int64(s.Seconds))

		percentStr := fmt.Sprintf("%.1f%%", s.Percent)
		if s.Percent < 10 {
			percentStr = "&nbsp;&nbsp;" + percentStr
		} else if s.Percent < 100 {
			percentStr = "&nbsp;" + percentStr
		}

		html += fmt.Sprintf(`
		<div class="screen-item" style="--bar-width: %.1f%%">
			<span class="screen-name">%s</span>
			<div>
				<span class="screen-time">%s</span>
				<span class="screen-percentage">%s</span>
			</div>
		</div>`, s.Percent, s.Label, timeStr, percentStr)
	}
	html += `</div>`

	html += fmt.Sprintf(`<div class="total"><span class="glyph">%s</span> %s</div>`, update.Glyph, update.Status)

	w.Write([]byte(html))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := h.ctrl.State()
	status := map[string]interface{}{
		"running":         true,
		"state":           state,
		"control":         reporter.FormatControl(state),
		"sample_interval": h.config.Tracker.SampleInterval.String(),
		"report_interval": h.config.Tracker.ReportInterval.String(),
		"idle_threshold":  h.config.Tracker.IdleThreshold.String(),
		"idle_detection":  h.config.Tracker.IdleDetection,
		"focus_source":    h.config.Tracker.FocusSource,
		"displays":        len(h.ctrl.Displays()),
		"uptime":          time.Since(h.started).Round(time.Second).String(),
	}

	if h.errors != nil {
		if n, err := h.errors.CountErrorsSince(time.Now().Add(-time.Hour)); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to count recent errors")
		} else {
			status["errors_last_hour"] = n
		}
	}

	if update, ok := h.latestUpdate(); ok {
		status["status"] = update.Status
		status["glyph"] = update.Glyph
	}

	respondJSON(w, status)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := h.ctrl.TogglePause()
	control := reporter.FormatControl(state)
	h.logger.Info().Str("state", state.String()).Str("remote", r.RemoteAddr).Msg("Pause toggled over HTTP")

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(control))
		return
	}

	respondJSON(w, map[string]interface{}{
		"state":   state,
		"control": control,
	})
}

func (h *Handler) handleDisplays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rects := h.ctrl.Displays()
	views := make([]displayView, len(rects))
	for i, rect := range rects {
		views[i] = displayView{
			Index:  i,
			Label:  fmt.Sprintf("Screen %d", i+1),
			X:      rect.X,
			Y:      rect.Y,
			Width:  rect.Width,
			Height: rect.Height,
		}
	}

	respondJSON(w, views)
}

func (h *Handler) handleErrors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodDelete:
		h.clearErrors(w)
		return
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.errors == nil {
		respondJSON(w, []*models.ErrorLog{})
		return
	}

	limit := defaultErrorLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if l > maxErrorLimit {
			l = maxErrorLimit
		}
		limit = l
	}

	logs, err := h.errors.GetRecentErrors(limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch errors: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, logs)
}

func (h *Handler) clearErrors(w http.ResponseWriter) {
	if h.errors == nil {
		http.Error(w, "No error log database", http.StatusServiceUnavailable)
		return
	}
	if err := h.errors.Clear(); err != nil {
		http.Error(w, fmt.Sprintf("Failed to clear errors: %v", err), http.StatusInternalServerError)
		return
	}
	h.logger.Info().Msg("Error log cleared over HTTP")
	respondJSON(w, map[string]bool{"cleared": true})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(fmt.Sprintf(indexHTML, reporter.FormatControl(h.ctrl.State()))))
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
