package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"screenbalance/internal/balance"
	"screenbalance/internal/config"
	"screenbalance/internal/models"
	"screenbalance/internal/reporter"
	"screenbalance/internal/tracker"
	"screenbalance/pkg/window"
)

type fakeController struct {
	state    tracker.TrackingState
	displays []window.Rect
}

func (f *fakeController) State() tracker.TrackingState { return f.state }

func (f *fakeController) TogglePause() tracker.TrackingState {
	if f.state == tracker.Paused {
		f.state = tracker.Active
	} else {
		f.state = tracker.Paused
	}
	return f.state
}

func (f *fakeController) Displays() []window.Rect { return f.displays }

type fakeErrors struct {
	logs      []*models.ErrorLog
	err       error
	lastLimit int
	since     time.Time
	cleared   bool
}

func (f *fakeErrors) GetRecentErrors(limit int) ([]*models.ErrorLog, error) {
	f.lastLimit = limit
	return f.logs, f.err
}

func (f *fakeErrors) CountErrorsSince(since time.Time) (int64, error) {
	f.since = since
	return int64(len(f.logs)), f.err
}

func (f *fakeErrors) Clear() error {
	if f.err != nil {
		return f.err
	}
	f.cleared = true
	f.logs = nil
	return nil
}

func newTestMux(t *testing.T, errs ErrorLister) (*http.ServeMux, *Handler, *fakeController) {
	t.Helper()

	ctrl := &fakeController{displays: []window.Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 0, Width: 2560, Height: 1440},
	}}
	h := NewHandler(config.Default(), ctrl, errs, zerolog.Nop())
	mux := http.NewServeMux()
	h.SetupRoutes(mux)
	return mux, h, ctrl
}

func sampleUpdate() reporter.Update {
	report := balance.Analyze([]int64{10, 0})
	return reporter.Update{
		Report:  report,
		Seconds: []float64{10, 0},
		State:   tracker.Active,
		Status:  reporter.FormatStatus(report),
		Control: reporter.FormatControl(tracker.Active),
		Glyph:   reporter.Glyph(tracker.Active, report),
		At:      time.Now(),
	}
}

func TestReportBeforeFirstPublish(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestReportJSON(t *testing.T) {
	mux, h, _ := newTestMux(t, nil)
	h.Publish(sampleUpdate())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Report balance.Report   `json:"report"`
		Slices []reporter.Slice `json:"slices"`
		State  string           `json:"state"`
		Status string           `json:"status"`
		Glyph  string           `json:"glyph"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Report.TargetDisplay != 1 || body.Report.CatchUpSeconds != 10 {
		t.Errorf("report = %+v", body.Report)
	}
	if body.State != "active" || body.Glyph != "2" {
		t.Errorf("state %q glyph %q", body.State, body.Glyph)
	}
	if body.Status != "Screen 2 needs 10.0 sec to reach balance" {
		t.Errorf("status = %q", body.Status)
	}
	if len(body.Slices) != 2 || body.Slices[0].Label != "Screen 1" {
		t.Errorf("slices = %+v", body.Slices)
	}
}

func TestReportHTMX(t *testing.T) {
	mux, h, _ := newTestMux(t, nil)
	h.Publish(sampleUpdate())

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{"Screen 1", "10s", "100.0%", "needs 10.0 sec"} {
		if !strings.Contains(body, want) {
			t.Errorf("fragment missing %q:\n%s", want, body)
		}
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestReportHTMXPlaceholder(t *testing.T) {
	mux, h, _ := newTestMux(t, nil)
	update := sampleUpdate()
	update.Report = balance.Analyze([]int64{0, 0})
	h.Publish(update)

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "Screen 2 (No Data)") {
		t.Errorf("placeholder missing:\n%s", rec.Body.String())
	}
}

func TestPause(t *testing.T) {
	mux, _, ctrl := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pause", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ctrl.state != tracker.Paused {
		t.Errorf("controller state = %v, want paused", ctrl.state)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["state"] != "paused" || body["control"] != "Resume" {
		t.Errorf("body = %v", body)
	}
}

func TestPauseRejectsGet(t *testing.T) {
	mux, _, ctrl := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pause", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if ctrl.state != tracker.Active {
		t.Error("GET must not toggle pause")
	}
}

func TestPauseHTMX(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pause", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Body.String() != "Resume" {
		t.Errorf("body = %q, want Resume", rec.Body.String())
	}
}

func TestStatus(t *testing.T) {
	mux, h, _ := newTestMux(t, nil)
	h.Publish(sampleUpdate())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["state"] != "active" || body["control"] != "Pause" {
		t.Errorf("state %v control %v", body["state"], body["control"])
	}
	if body["displays"].(float64) != 2 {
		t.Errorf("displays = %v, want 2", body["displays"])
	}
	if body["focus_source"] != "window" {
		t.Errorf("focus_source = %v", body["focus_source"])
	}
	if body["glyph"] != "2" {
		t.Errorf("glyph = %v", body["glyph"])
	}
}

func TestDisplays(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/displays", nil))

	var views []displayView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len = %d, want 2", len(views))
	}
	if views[1].Label != "Screen 2" || views[1].X != 1920 || views[1].Width != 2560 {
		t.Errorf("views[1] = %+v", views[1])
	}
}

func TestErrors(t *testing.T) {
	errs := &fakeErrors{logs: []*models.ErrorLog{
		{ID: 1, Component: "sampler", ErrorMsg: "connection reset"},
	}}
	mux, _, _ := newTestMux(t, errs)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantLimit int
	}{
		{"Default limit", "", http.StatusOK, defaultErrorLimit},
		{"Custom limit", "?limit=5", http.StatusOK, 5},
		{"Capped limit", "?limit=100000", http.StatusOK, maxErrorLimit},
		{"Invalid limit", "?limit=abc", http.StatusBadRequest, 0},
		{"Negative limit", "?limit=-1", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs.lastLimit = 0
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/errors"+tt.query, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if errs.lastLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", errs.lastLimit, tt.wantLimit)
			}
		})
	}
}

func TestErrorsStoreFailure(t *testing.T) {
	mux, _, _ := newTestMux(t, &fakeErrors{err: errors.New("database is locked")})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/errors", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestErrorsWithoutDatabase(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/errors", nil))

	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestStatusCountsRecentErrors(t *testing.T) {
	errs := &fakeErrors{logs: []*models.ErrorLog{
		{ID: 1, Component: "sampler", ErrorMsg: "connection reset"},
		{ID: 2, Component: "sampler", ErrorMsg: "swaymsg did not answer"},
	}}
	mux, _, _ := newTestMux(t, errs)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["errors_last_hour"] != float64(2) {
		t.Errorf("errors_last_hour = %v, want 2", body["errors_last_hour"])
	}
	if age := time.Since(errs.since); age < 59*time.Minute || age > 61*time.Minute {
		t.Errorf("count window starts %v ago, want one hour", age)
	}
}

func TestStatusWithoutDatabase(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if strings.Contains(rec.Body.String(), "errors_last_hour") {
		t.Errorf("status without database reports an error count: %s", rec.Body.String())
	}
}

func TestClearErrors(t *testing.T) {
	errs := &fakeErrors{logs: []*models.ErrorLog{{ID: 1, Component: "sampler"}}}
	mux, _, _ := newTestMux(t, errs)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/errors", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !errs.cleared {
		t.Error("DELETE /api/errors did not clear the log")
	}

	mux, _, _ = newTestMux(t, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/errors", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status without database = %d, want 503", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	mux, h, _ := newTestMux(t, nil)
	h.Publish(sampleUpdate())
	reporter.MetricsSink{}.Publish(sampleUpdate())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("health body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "screenbalance_display_percent") {
		t.Error("metrics output missing screenbalance_display_percent")
	}
}

func TestIndex(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "<title>Screen Balance</title>") || !strings.Contains(body, ">Pause</button>") {
		t.Error("index page missing title or control")
	}
	if strings.Contains(body, "%!") {
		t.Error("index page has a formatting error")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
