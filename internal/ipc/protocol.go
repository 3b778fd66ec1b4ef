// Package ipc implements the daemon control protocol: newline-delimited
// JSON over a unix domain socket.
package ipc

import (
	"encoding/json"

	"github.com/smartile/smartile/internal/platform"
)

// Commands accepted by the daemon.
const (
	CmdGetStatus   = "GET_STATUS"
	CmdGetMonitors = "GET_MONITORS"
	CmdListLayouts = "LIST_LAYOUTS"
	CmdGetWindows  = "GET_WINDOWS"
	CmdArrange     = "ARRANGE"
	CmdTopApps     = "TOP_APPS"
	CmdSession     = "SESSION"
	CmdFocus       = "FOCUS_WINDOW"
	CmdMinimize    = "MINIMIZE_WINDOW"
	CmdReload      = "RELOAD"
)

// Request is one command sent to the daemon.
type Request struct {
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response carries the result of a command.
type Response struct {
	Status string          `json:"status"` // "ok" or "error"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ArrangeRequest parametrizes an ARRANGE command. Empty fields fall back
// to the daemon's configured defaults.
type ArrangeRequest struct {
	Layout  string `json:"layout,omitempty"`
	Target  string `json:"target,omitempty"`
	Monitor string `json:"monitor,omitempty"`
	Gap     *int   `json:"gap,omitempty"`
}

// ArrangeResult reports what an arrangement pass did.
type ArrangeResult struct {
	Layout   string   `json:"layout"`
	Display  string   `json:"display"`
	Arranged int      `json:"arranged"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// StatusData describes the running daemon.
type StatusData struct {
	Version       string `json:"version"`
	PID           int    `json:"pid"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	TrackedApps   int    `json:"tracked_apps"`
	ConfigPath    string `json:"config_path"`
}

// LayoutInfo is one entry of LIST_LAYOUTS.
type LayoutInfo struct {
	Name    string `json:"name"`
	Slots   int    `json:"slots"`
	Source  string `json:"source"` // "builtin", "layout" or "grid"
	Details string `json:"details,omitempty"`
}

// WindowInfo is one entry of GET_WINDOWS.
type WindowInfo struct {
	ID        uint32 `json:"id"`
	PID       int    `json:"pid"`
	Process   string `json:"process"`
	Class     string `json:"class"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Minimized bool   `json:"minimized"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// TopAppsRequest parametrizes TOP_APPS.
type TopAppsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// AppUsageInfo is one entry of TOP_APPS.
type AppUsageInfo struct {
	App          string  `json:"app"`
	Category     string  `json:"category"`
	Score        float64 `json:"score"`
	FocusSeconds float64 `json:"focus_seconds"`
	Switches     int     `json:"switches"`
	LastFocusTS  int64   `json:"last_focus_ts"`
}

// WindowTarget names a window for FOCUS_WINDOW and MINIMIZE_WINDOW:
// either an X window ID or a process name (first match wins).
type WindowTarget struct {
	ID      uint32 `json:"id,omitempty"`
	Process string `json:"process,omitempty"`
}

// SessionData summarizes usage since the daemon started.
type SessionData struct {
	StartedTS int64              `json:"started_ts"`
	Switches  int                `json:"switches"`
	Focus     map[string]float64 `json:"focus"` // seconds per application
}

// MonitorsData is the GET_MONITORS payload.
type MonitorsData struct {
	Monitors []platform.Display `json:"monitors"`
}

// OK builds a success response with data marshalled in.
func OK(data any) Response {
	if data == nil {
		return Response{Status: "ok"}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Fail("failed to encode response: " + err.Error())
	}
	return Response{Status: "ok", Data: raw}
}

// Fail builds an error response.
func Fail(msg string) Response {
	return Response{Status: "error", Error: msg}
}
