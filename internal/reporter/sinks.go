package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"

	"screenbalance/internal/metrics"
	"screenbalance/internal/tracker"
)

// MetricsSink mirrors each update into the Prometheus collectors
type MetricsSink struct{}

// Publish records the update
func (MetricsSink) Publish(update Update) {
	metrics.RecordReport(update.Seconds, update.Report, int(update.State))
}

const (
	defaultWidth = 80
	minBarWidth  = 10
)

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	activeColor = color.New(color.FgGreen, color.Bold)
	pauseColor  = color.New(color.FgYellow, color.Bold)
	idleColor   = color.New(color.FgRed, color.Bold)
	dimColor    = color.New(color.Faint)
)

// TerminalSink redraws the distribution in place when attached to a
// terminal, and prints one status line per update otherwise.
type TerminalSink struct {
	mu          sync.Mutex
	out         io.Writer
	fd          int
	interactive bool
}

// NewTerminalSink writes to f, redrawing only when f is a terminal
func NewTerminalSink(f *os.File) *TerminalSink {
	fd := int(f.Fd())
	return &TerminalSink{
		out:         f,
		fd:          fd,
		interactive: term.IsTerminal(fd),
	}
}

// newWriterSink is a non-interactive sink for any writer
func newWriterSink(w io.Writer) *TerminalSink {
	return &TerminalSink{out: w, fd: -1}
}

// Publish renders the update
func (t *TerminalSink) Publish(update Update) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.interactive {
		fmt.Fprintf(t.out, "%s [%s] %s %s\n",
			update.At.Format("15:04:05"), update.Glyph, update.State, update.Status)
		return
	}

	fmt.Fprint(t.out, renderScreen(update, t.width()))
}

func (t *TerminalSink) width() int {
	if w, _, err := term.GetSize(t.fd); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

func stateColor(state tracker.TrackingState) *color.Color {
	switch state {
	case tracker.Paused:
		return pauseColor
	case tracker.Idle:
		return idleColor
	default:
		return activeColor
	}
}

// renderScreen draws a full frame. Lines end in \r\n because the key
// listener puts the terminal in raw mode.
func renderScreen(update Update, width int) string {
	var sb strings.Builder

	sb.WriteString("\033[H")
	sb.WriteString(titleColor.Sprint("Screen Balance"))
	sb.WriteString("  ")
	sb.WriteString(stateColor(update.State).Sprintf("[%s] %s", update.Glyph, update.State))
	sb.WriteString("\033[K\r\n\r\n")

	barWidth := width - 40
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	for _, s := range Slices(update) {
		filled := int(s.Percent / 100 * float64(barWidth))
		if filled > barWidth {
			filled = barWidth
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		sb.WriteString(fmt.Sprintf("%-20s %s %5.1f%%\033[K\r\n", s.Label, bar, s.Percent))
	}

	sb.WriteString("\r\n")
	sb.WriteString(update.Status)
	sb.WriteString("\033[K\r\n\r\n")
	sb.WriteString(dimColor.Sprintf("[p] %s  [q] Quit", update.Control))
	sb.WriteString("\033[K\r\n\033[J")
	return sb.String()
}
