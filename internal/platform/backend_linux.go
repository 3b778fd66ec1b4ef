package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/smartile/smartile/internal/layout"
	"github.com/smartile/smartile/internal/x11"
)

// X11Backend implements Backend against a live X server.
type X11Backend struct {
	conn *x11.Connection
}

// NewX11Backend connects to the X server named by DISPLAY.
func NewX11Backend() (*X11Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	return &X11Backend{conn: conn}, nil
}

// Conn exposes the underlying X11 connection for hotkey registration and
// the event loop.
func (b *X11Backend) Conn() *x11.Connection {
	return b.conn
}

func (b *X11Backend) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:      m.ID,
			Name:    m.Name,
			Primary: m.Primary,
			Bounds:  layout.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			Usable:  layout.Rect{X: m.UsableX, Y: m.UsableY, Width: m.UsableWidth, Height: m.UsableHeight},
		})
	}
	return displays, nil
}

func (b *X11Backend) Windows() ([]Window, error) {
	clients, err := b.conn.ClientList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate windows: %w", err)
	}

	windows := make([]Window, 0, len(clients))
	for _, id := range clients {
		w := Window{
			ID:        uint32(id),
			PID:       b.conn.WindowPID(id),
			Class:     b.conn.WindowClass(id),
			Title:     b.conn.WindowTitle(id),
			Minimized: b.conn.IsMinimized(id),
			Auxiliary: b.conn.IsAuxiliaryWindow(id),
			Viewable:  b.conn.IsViewable(id),
		}
		if x, y, width, height, ok := b.conn.WindowGeometry(id); ok {
			w.Bounds = layout.Rect{X: x, Y: y, Width: width, Height: height}
		}
		windows = append(windows, w)
	}
	return windows, nil
}

func (b *X11Backend) ActiveWindow() (uint32, bool) {
	id, err := b.conn.GetActiveWindow()
	if err != nil || id == 0 {
		return 0, false
	}
	return uint32(id), true
}

func (b *X11Backend) MoveResize(id uint32, r layout.Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(id), r.X, r.Y, r.Width, r.Height)
}

func (b *X11Backend) Focus(id uint32) error {
	return b.conn.FocusWindow(xproto.Window(id))
}

func (b *X11Backend) Minimize(id uint32) error {
	return b.conn.MinimizeWindow(xproto.Window(id))
}

func (b *X11Backend) Close() {
	b.conn.Close()
}
