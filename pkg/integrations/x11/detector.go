package x11

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xinerama"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"screenbalance/pkg/window"
)

// Detector implements window.Detector for X11 over a single protocol connection
type Detector struct {
	mu       sync.Mutex
	conn     *xgb.Conn
	root     xproto.Window
	screen   *xproto.ScreenInfo
	atoms    map[string]xproto.Atom
	xinerama bool
}

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
}

// NewDetector connects to the X server named by $DISPLAY
func NewDetector() (*Detector, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, errors.New("DISPLAY is not set")
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	d := &Detector{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
		atoms:  make(map[string]xproto.Atom),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		d.atoms[name] = reply.Atom
	}

	if err := xinerama.Init(conn); err == nil {
		if reply, err := xinerama.IsActive(conn).Reply(); err == nil && reply.State != 0 {
			d.xinerama = true
		}
	}

	return d, nil
}

// IsAvailable reports whether the connection is open
func (d *Detector) IsAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil
}

// GetDisplayServer returns "x11"
func (d *Detector) GetDisplayServer() string {
	return "x11"
}

// Displays returns one rectangle per monitor. Without Xinerama the whole
// root window is reported as a single display.
func (d *Detector) Displays() ([]window.Rect, error) {
	conn, err := d.connection()
	if err != nil {
		return nil, err
	}

	if d.xinerama {
		reply, err := xinerama.QueryScreens(conn).Reply()
		if err != nil {
			return nil, errors.Wrap(err, "failed to query xinerama screens")
		}
		if len(reply.ScreenInfo) > 0 {
			return screensToRects(reply.ScreenInfo), nil
		}
	}

	return []window.Rect{{
		X:      0,
		Y:      0,
		Width:  int(d.screen.WidthInPixels),
		Height: int(d.screen.HeightInPixels),
	}}, nil
}

func screensToRects(screens []xinerama.ScreenInfo) []window.Rect {
	rects := make([]window.Rect, 0, len(screens))
	for _, s := range screens {
		rects = append(rects, window.Rect{
			X:      int(s.XOrg),
			Y:      int(s.YOrg),
			Width:  int(s.Width),
			Height: int(s.Height),
		})
	}
	return rects
}

// Pointer returns the pointer position relative to the root window
func (d *Detector) Pointer() (window.Point, error) {
	conn, err := d.connection()
	if err != nil {
		return window.Point{}, err
	}

	reply, err := xproto.QueryPointer(conn, d.root).Reply()
	if err != nil {
		return window.Point{}, errors.Wrap(err, "failed to query pointer")
	}
	if !reply.SameScreen {
		return window.Point{}, window.ErrNoFocus
	}
	return window.Point{X: int(reply.RootX), Y: int(reply.RootY)}, nil
}

// ActiveWindow returns the bounds of the focused top-level window in root coordinates
func (d *Detector) ActiveWindow() (window.Rect, error) {
	conn, err := d.connection()
	if err != nil {
		return window.Rect{}, err
	}

	win := d.activeWindow(conn)
	if win == 0 || win == d.root {
		return window.Rect{}, window.ErrNoFocus
	}

	geom, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return window.Rect{}, errors.Wrap(err, "failed to get window geometry")
	}

	pos, err := xproto.TranslateCoordinates(conn, win, d.root, 0, 0).Reply()
	if err != nil {
		return window.Rect{}, errors.Wrap(err, "failed to translate window coordinates")
	}

	return window.Rect{
		X:      int(pos.DstX),
		Y:      int(pos.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

func (d *Detector) activeWindow(conn *xgb.Conn) xproto.Window {
	if win := d.activeWindowFromProperty(conn); win != 0 {
		return win
	}

	reply, err := xproto.GetInputFocus(conn).Reply()
	if err != nil || reply.Focus == 0 || reply.Focus == d.root {
		return 0
	}
	return d.topLevelParent(conn, reply.Focus)
}

func (d *Detector) activeWindowFromProperty(conn *xgb.Conn) xproto.Window {
	reply, err := xproto.GetProperty(conn, false, d.root,
		d.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 0, 1).Reply()
	if err != nil || len(reply.Value) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(reply.Value))
}

func (d *Detector) topLevelParent(conn *xgb.Conn, win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(conn, win).Reply()
		if err != nil || reply.Parent == d.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (d *Detector) connection() (*xgb.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil, errors.New("x11 connection is closed")
	}
	return d.conn, nil
}

// Close closes the X connection
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
	return nil
}
