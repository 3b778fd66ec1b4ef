package winscan

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shirou/gopsutil/process"

	"github.com/smartile/smartile/internal/platform"
)

// FilterMode selects which application windows qualify for arrangement.
type FilterMode int

const (
	// FilterTerminals admits only known terminal emulators.
	FilterTerminals FilterMode = iota
	// FilterUniversal admits every normal application window.
	FilterUniversal
	// FilterCustom admits only the processes named in the filter.
	FilterCustom
)

// TargetFilter decides which windows an arrangement pass operates on.
type TargetFilter struct {
	Mode      FilterMode
	Processes []string // FilterCustom only, lowercase process names
}

// ParseTargetFilter interprets a target spec: "terminals", "all"/"universal"
// (an empty spec means universal), or a comma-separated process list
// ("firefox,code,slack").
func ParseTargetFilter(spec string) (TargetFilter, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	switch s {
	case "terminals":
		return TargetFilter{Mode: FilterTerminals}, nil
	case "", "all", "universal", "any":
		return TargetFilter{Mode: FilterUniversal}, nil
	}

	var procs []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			procs = append(procs, part)
		}
	}
	if len(procs) == 0 {
		return TargetFilter{}, fmt.Errorf("invalid target %q", spec)
	}
	return TargetFilter{Mode: FilterCustom, Processes: procs}, nil
}

// Matches reports whether a window with the given process name passes the
// filter. Comparison is case-insensitive and exact.
func (f TargetFilter) Matches(procName string) bool {
	switch f.Mode {
	case FilterTerminals:
		return IsTerminal(procName)
	case FilterUniversal:
		return true
	case FilterCustom:
		name := strings.ToLower(procName)
		for _, p := range f.Processes {
			if name == p {
				return true
			}
		}
	}
	return false
}

func (f TargetFilter) String() string {
	switch f.Mode {
	case FilterTerminals:
		return "terminals"
	case FilterUniversal:
		return "all"
	case FilterCustom:
		return strings.Join(f.Processes, ",")
	}
	return "unknown"
}

// Desktop-shell processes whose windows must never be moved.
var excludedProcesses = map[string]bool{
	"gnome-shell":       true,
	"plasmashell":       true,
	"kwin_x11":          true,
	"xfwm4":             true,
	"xfdesktop":         true,
	"xfce4-panel":       true,
	"mutter":            true,
	"marco":             true,
	"mate-panel":        true,
	"cinnamon":          true,
	"polybar":           true,
	"waybar":            true,
	"picom":             true,
	"plank":             true,
	"lxpanel":           true,
	"tint2":             true,
	"conky":             true,
	"xscreensaver":      true,
	"light-locker":      true,
	"gnome-screensaver": true,
}

// WM_CLASS values that mark shell surfaces even when the owning process is
// not recognized.
var excludedClasses = map[string]bool{
	"Gnome-shell": true,
	"Plasmashell": true,
	"Xfce4-panel": true,
	"Xfdesktop":   true,
	"Polybar":     true,
	"Plank":       true,
	"Conky":       true,
	"Tint2":       true,
}

// File managers also host the desktop background window. Only windows whose
// WM_CLASS identifies a real file browser window are admitted; the desktop
// surface is skipped.
var fileManagerProcs = map[string]bool{
	"nautilus": true,
	"nemo":     true,
	"pcmanfm":  true,
	"caja":     true,
}

var fileManagerClasses = map[string]bool{
	"Org.gnome.Nautilus": true,
	"Nautilus":           true,
	"Nemo":               true,
	"Pcmanfm":            true,
	"Caja":               true,
}

// Scanner discovers and classifies arrangeable windows.
type Scanner struct {
	backend platform.Backend
	logger  *slog.Logger

	// procName resolves a PID to an executable name; overridable in tests.
	procName func(pid int) string

	// selfWindow is the arranger's own window, if it has one.
	selfWindow uint32
}

// NewScanner builds a scanner over the given backend.
func NewScanner(backend platform.Backend, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		backend:  backend,
		logger:   logger,
		procName: ProcessName,
	}
}

// SetSelfWindow marks a window as the arranger's own so it is never moved.
func (s *Scanner) SetSelfWindow(id uint32) {
	s.selfWindow = id
}

// Scan enumerates all windows and returns the ones eligible for the
// filter, in discovery order. Minimized windows are emitted with their
// flag set; skipping them is the caller's decision. In universal mode,
// desktop-shell surfaces are dropped and file-manager processes are only
// admitted for real file browser windows. extraExcluded lists additional
// lowercase process names to skip in every mode.
func (s *Scanner) Scan(filter TargetFilter, extraExcluded []string) ([]platform.Window, error) {
	all, err := s.backend.Windows()
	if err != nil {
		return nil, fmt.Errorf("window scan failed: %w", err)
	}

	extra := make(map[string]bool, len(extraExcluded))
	for _, p := range extraExcluded {
		extra[strings.ToLower(strings.TrimSpace(p))] = true
	}

	var eligible []platform.Window
	for _, w := range all {
		if s.selfWindow != 0 && w.ID == s.selfWindow {
			continue
		}
		if !w.Viewable || w.Auxiliary {
			continue
		}
		if w.Bounds.Width <= 0 || w.Bounds.Height <= 0 {
			continue
		}

		if w.Process == "" && w.PID > 0 {
			w.Process = s.procName(w.PID)
		}
		if w.Process == "" {
			continue
		}
		procKey := strings.ToLower(w.Process)

		if extra[procKey] {
			continue
		}
		if filter.Mode == FilterUniversal {
			if excludedProcesses[procKey] || excludedClasses[w.Class] {
				continue
			}
			if fileManagerProcs[procKey] && !fileManagerClasses[w.Class] {
				s.logger.Debug("skipping desktop surface", "process", w.Process, "class", w.Class)
				continue
			}
		}
		if !filter.Matches(w.Process) {
			continue
		}

		eligible = append(eligible, w)
	}

	s.logger.Debug("window scan complete",
		"total", len(all), "eligible", len(eligible), "filter", filter.String())
	return eligible, nil
}

// ProcessName resolves a PID to its executable name, or "" when the process
// is gone or unreadable.
func ProcessName(pid int) string {
	if pid <= 0 {
		return ""
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := proc.Name()
	if err != nil {
		return ""
	}
	return name
}
