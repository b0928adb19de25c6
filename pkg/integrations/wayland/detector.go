package wayland

import (
	"context"
	"encoding/json"
	"os/exec"
	"sort"
	"time"

	"github.com/pkg/errors"

	"screenbalance/pkg/window"
)

// DefaultQueryTimeout bounds one IPC call when no timeout is given
const DefaultQueryTimeout = 500 * time.Millisecond

// runner executes an external command and returns its stdout
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = 100 * time.Millisecond
	return cmd.Output()
}

// Detector implements window.Detector for Wayland compositors that expose
// geometry over an IPC command line tool
type Detector struct {
	compositor string
	hasSwaymsg bool
	hasHyprctl bool
	run        runner
	timeout    time.Duration
}

// NewDetector creates a new Wayland detector. Every IPC call is killed after
// timeout; zero selects DefaultQueryTimeout.
func NewDetector(timeout time.Duration) *Detector {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	d := &Detector{run: execRunner, timeout: timeout}
	d.hasSwaymsg = commandExists("swaymsg")
	d.hasHyprctl = commandExists("hyprctl")
	d.detectCompositor()
	return d
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// detectCompositor attempts to detect the Wayland compositor
func (d *Detector) detectCompositor() {
	compositors := []struct {
		process string
		name    string
	}{
		{"sway", "sway"},
		{"Hyprland", "hyprland"},
	}

	for _, c := range compositors {
		if err := exec.Command("pgrep", "-x", c.process).Run(); err == nil {
			d.compositor = c.name
			return
		}
	}

	d.compositor = "unknown"
}

// query runs one IPC command under the detector's deadline
func (d *Detector) query(name string, args ...string) ([]byte, error) {
	timeout := d.timeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := d.run(ctx, name, args...)
	if ctx.Err() == context.DeadlineExceeded {
		return nil, errors.Wrapf(ctx.Err(), "%s did not answer within %v", name, timeout)
	}
	return out, err
}

// IsAvailable checks if geometry can be queried from the running compositor
func (d *Detector) IsAvailable() bool {
	switch d.compositor {
	case "sway":
		return d.hasSwaymsg
	case "hyprland":
		return d.hasHyprctl
	default:
		return false
	}
}

// GetDisplayServer returns "wayland"
func (d *Detector) GetDisplayServer() string {
	return "wayland"
}

// Displays returns the active outputs ordered by position (left to right, then top to bottom)
func (d *Detector) Displays() ([]window.Rect, error) {
	var (
		rects []window.Rect
		err   error
	)

	switch d.compositor {
	case "sway":
		rects, err = d.swayOutputs()
	case "hyprland":
		rects, err = d.hyprlandMonitors()
	default:
		return nil, errors.Errorf("unsupported wayland compositor: %s", d.compositor)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rects, func(i, j int) bool {
		if rects[i].X != rects[j].X {
			return rects[i].X < rects[j].X
		}
		return rects[i].Y < rects[j].Y
	})
	return rects, nil
}

// ActiveWindow returns the bounds of the focused window
func (d *Detector) ActiveWindow() (window.Rect, error) {
	switch d.compositor {
	case "sway":
		return d.swayFocused()
	case "hyprland":
		return d.hyprlandActiveWindow()
	default:
		return window.Rect{}, errors.Errorf("unsupported wayland compositor: %s", d.compositor)
	}
}

// Pointer returns the cursor position. Sway has no IPC query for it.
func (d *Detector) Pointer() (window.Point, error) {
	switch d.compositor {
	case "hyprland":
		return d.hyprlandCursor()
	default:
		return window.Point{}, errors.Errorf("pointer position not supported on %s", d.compositor)
	}
}

type swayRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r swayRect) toRect() window.Rect {
	return window.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

type swayOutput struct {
	Name   string   `json:"name"`
	Active bool     `json:"active"`
	Rect   swayRect `json:"rect"`
}

type swayNode struct {
	Focused       bool       `json:"focused"`
	Type          string     `json:"type"`
	Rect          swayRect   `json:"rect"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func (d *Detector) swayOutputs() ([]window.Rect, error) {
	output, err := d.query("swaymsg", "-t", "get_outputs", "-r")
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute swaymsg get_outputs")
	}
	return parseSwayOutputs(output)
}

func parseSwayOutputs(data []byte) ([]window.Rect, error) {
	var outputs []swayOutput
	if err := json.Unmarshal(data, &outputs); err != nil {
		return nil, errors.Wrap(err, "failed to parse sway outputs")
	}

	var rects []window.Rect
	for _, o := range outputs {
		if o.Active {
			rects = append(rects, o.Rect.toRect())
		}
	}
	return rects, nil
}

func (d *Detector) swayFocused() (window.Rect, error) {
	output, err := d.query("swaymsg", "-t", "get_tree", "-r")
	if err != nil {
		return window.Rect{}, errors.Wrap(err, "failed to execute swaymsg get_tree")
	}
	return parseSwayTree(output)
}

// parseSwayTree finds the focused container in a sway layout tree
func parseSwayTree(data []byte) (window.Rect, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return window.Rect{}, errors.Wrap(err, "failed to parse sway tree")
	}

	if node := findFocused(&root); node != nil {
		return node.Rect.toRect(), nil
	}
	return window.Rect{}, window.ErrNoFocus
}

func findFocused(n *swayNode) *swayNode {
	if n.Focused && (n.Type == "con" || n.Type == "floating_con") {
		return n
	}
	for i := range n.Nodes {
		if f := findFocused(&n.Nodes[i]); f != nil {
			return f
		}
	}
	for i := range n.FloatingNodes {
		if f := findFocused(&n.FloatingNodes[i]); f != nil {
			return f
		}
	}
	return nil
}

type hyprMonitor struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	Disabled bool `json:"disabled"`
}

type hyprWindow struct {
	At   []int `json:"at"`
	Size []int `json:"size"`
}

type hyprCursor struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (d *Detector) hyprlandMonitors() ([]window.Rect, error) {
	output, err := d.query("hyprctl", "monitors", "-j")
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute hyprctl monitors")
	}
	return parseHyprlandMonitors(output)
}

func parseHyprlandMonitors(data []byte) ([]window.Rect, error) {
	var monitors []hyprMonitor
	if err := json.Unmarshal(data, &monitors); err != nil {
		return nil, errors.Wrap(err, "failed to parse hyprland monitors")
	}

	var rects []window.Rect
	for _, m := range monitors {
		if m.Disabled {
			continue
		}
		rects = append(rects, window.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height})
	}
	return rects, nil
}

func (d *Detector) hyprlandActiveWindow() (window.Rect, error) {
	output, err := d.query("hyprctl", "activewindow", "-j")
	if err != nil {
		return window.Rect{}, errors.Wrap(err, "failed to execute hyprctl activewindow")
	}
	return parseHyprlandWindow(output)
}

// parseHyprlandWindow reads "at" and "size" from hyprctl activewindow output.
// hyprctl prints {} when nothing is focused.
func parseHyprlandWindow(data []byte) (window.Rect, error) {
	var w hyprWindow
	if err := json.Unmarshal(data, &w); err != nil {
		return window.Rect{}, errors.Wrap(err, "failed to parse hyprland window")
	}
	if len(w.At) < 2 || len(w.Size) < 2 {
		return window.Rect{}, window.ErrNoFocus
	}
	return window.Rect{X: w.At[0], Y: w.At[1], Width: w.Size[0], Height: w.Size[1]}, nil
}

func (d *Detector) hyprlandCursor() (window.Point, error) {
	output, err := d.query("hyprctl", "cursorpos", "-j")
	if err != nil {
		return window.Point{}, errors.Wrap(err, "failed to execute hyprctl cursorpos")
	}

	var c hyprCursor
	if err := json.Unmarshal(output, &c); err != nil {
		return window.Point{}, errors.Wrap(err, "failed to parse hyprland cursor")
	}
	return window.Point{X: c.X, Y: c.Y}, nil
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
