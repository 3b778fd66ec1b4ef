package platform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smartile/smartile/internal/layout"
)

// Display describes a monitor. Bounds is the full pixel area, Usable the
// work area with docks and panels subtracted.
type Display struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Primary bool        `json:"primary"`
	Bounds  layout.Rect `json:"bounds"`
	Usable  layout.Rect `json:"usable"`
}

// Window is a snapshot of a top-level window at enumeration time.
type Window struct {
	ID        uint32      `json:"id"`
	PID       int         `json:"pid"`
	Process   string      `json:"process"`
	Class     string      `json:"class"`
	Title     string      `json:"title"`
	Bounds    layout.Rect `json:"bounds"`
	Minimized bool        `json:"minimized"`
	Auxiliary bool        `json:"auxiliary"`
	Viewable  bool        `json:"viewable"`
}

// Backend abstracts the windowing system so the arrangement and discovery
// logic can run against a fake in tests.
type Backend interface {
	// Displays returns all connected monitors with work areas resolved.
	Displays() ([]Display, error)

	// Windows returns a snapshot of every top-level window, including
	// minimized and auxiliary ones; filtering is the caller's job.
	Windows() ([]Window, error)

	// ActiveWindow returns the currently focused window ID, or 0 when
	// focus cannot be determined.
	ActiveWindow() (uint32, bool)

	// MoveResize repositions a window to the given rectangle without
	// raising it or transferring focus.
	MoveResize(id uint32, r layout.Rect) error

	// Focus activates and raises a window.
	Focus(id uint32) error

	// Minimize iconifies a window.
	Minimize(id uint32) error

	// Close releases the backend's resources.
	Close()
}

// ResolveDisplay selects a display by spec: "" or "primary" picks the
// primary display, a decimal string picks by index. It never comes back
// empty-handed for a non-empty list: a missing primary falls back to the
// first display, an out-of-range index to the first display, and any
// unrecognized spec resolves like "primary".
func ResolveDisplay(displays []Display, spec string) (Display, error) {
	if len(displays) == 0 {
		return Display{}, fmt.Errorf("no displays detected")
	}

	spec = strings.ToLower(strings.TrimSpace(spec))
	if idx, err := strconv.Atoi(spec); err == nil {
		if idx < 0 || idx >= len(displays) {
			return displays[0], nil
		}
		return displays[idx], nil
	}

	for _, d := range displays {
		if d.Primary {
			return d, nil
		}
	}
	return displays[0], nil
}
