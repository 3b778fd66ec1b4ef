// Package hotkeys registers global X11 key bindings.
package hotkeys

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/smartile/smartile/internal/x11"
)

// Manager owns the daemon's global key bindings.
type Manager struct {
	conn   *x11.Connection
	logger *slog.Logger
}

// NewManager builds a hotkey manager over an established connection.
func NewManager(conn *x11.Connection, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{conn: conn, logger: logger}
}

// Bind grabs a key combination like "Mod4-shift-a" on the root window and
// invokes action on every press. The action runs on the X event loop
// goroutine; keep it short or dispatch to a channel.
func (m *Manager) Bind(spec string, action func()) error {
	if spec == "" {
		return nil
	}

	cb := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		m.logger.Debug("hotkey pressed", "binding", spec)
		action()
	})
	if err := cb.Connect(m.conn.XUtil, m.conn.Root, spec, true); err != nil {
		return fmt.Errorf("failed to bind %q: %w", spec, err)
	}

	m.logger.Info("hotkey registered", "binding", spec)
	return nil
}

// Unbind releases all key grabs held by the manager.
func (m *Manager) Unbind() {
	keybind.Detach(m.conn.XUtil, m.conn.Root)
}
