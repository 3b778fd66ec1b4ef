package arrange

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/smartile/smartile/internal/config"
	"github.com/smartile/smartile/internal/layout"
	"github.com/smartile/smartile/internal/platform"
	"github.com/smartile/smartile/internal/winscan"
)

// Options describes one arrangement pass.
type Options struct {
	Layout   config.ResolvedLayout
	Gap      int
	Monitor  string
	Filter   winscan.TargetFilter
	Excluded []string
	Pins     []config.PinRule

	// SmartSort orders unpinned windows by usage score before slot
	// assignment; off, discovery order is kept.
	SmartSort bool

	// Score rates a process for smart sorting. Required when SmartSort
	// is set.
	Score func(process string) float64

	// SelfWindow is skipped during discovery so the arranger never moves
	// its own window.
	SelfWindow uint32
}

// Placement records where one window was put.
type Placement struct {
	Window platform.Window
	Slot   int
	Rect   layout.Rect
}

// Result summarizes an arrangement pass.
type Result struct {
	Display    platform.Display
	Layout     string
	Placements []Placement
	Arranged   int
	Skipped    int
	Errors     []string
}

// Arranger runs arrangement passes against a backend.
type Arranger struct {
	backend platform.Backend
	scanner *winscan.Scanner
	logger  *slog.Logger
}

// New builds an arranger.
func New(backend platform.Backend, logger *slog.Logger) *Arranger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arranger{
		backend: backend,
		scanner: winscan.NewScanner(backend, logger),
		logger:  logger,
	}
}

// Arrange discovers eligible windows and moves them into the layout's
// slots: pinned windows first, the rest in score or discovery order, dense
// from the first free slot. Windows beyond the slot count are left alone
// and counted as skipped. Individual reposition failures are collected,
// not fatal.
func (a *Arranger) Arrange(opts Options) (Result, error) {
	displays, err := a.backend.Displays()
	if err != nil {
		return Result{}, fmt.Errorf("failed to enumerate displays: %w", err)
	}
	if len(displays) == 0 {
		return Result{}, fmt.Errorf("no displays detected, aborting")
	}

	display, err := platform.ResolveDisplay(displays, opts.Monitor)
	if err != nil {
		return Result{}, err
	}

	slots := enabledSlots(opts.Layout, display.Usable, opts.Gap)
	if len(slots) == 0 {
		return Result{}, fmt.Errorf("layout %q has no enabled slots", opts.Layout.Name)
	}

	a.scanner.SetSelfWindow(opts.SelfWindow)
	windows, err := a.scanner.Scan(opts.Filter, opts.Excluded)
	if err != nil {
		return Result{}, err
	}

	result := Result{Display: display, Layout: opts.Layout.Name}
	if len(windows) == 0 {
		return result, nil
	}

	// Pins only take effect together with smart sorting; a plain pass
	// assigns windows in discovery order.
	var pinned []pinnedWindow
	pool := windows
	if opts.SmartSort && len(opts.Pins) > 0 {
		pinned, pool = a.partitionPins(windows, opts.Pins, len(slots))
	}

	if opts.SmartSort && opts.Score != nil {
		sort.SliceStable(pool, func(i, j int) bool {
			return opts.Score(pool[i].Process) > opts.Score(pool[j].Process)
		})
	}

	assignments := make(map[int]platform.Window, len(slots))
	for _, p := range pinned {
		if _, taken := assignments[p.slot]; taken {
			// First pin to a slot wins; later ones fall back to the pool.
			pool = append(pool, p.window)
			continue
		}
		assignments[p.slot] = p.window
	}

	next := 0
	for _, w := range pool {
		for next < len(slots) {
			if _, taken := assignments[next]; !taken {
				break
			}
			next++
		}
		if next >= len(slots) {
			result.Skipped++
			continue
		}
		assignments[next] = w
		next++
	}

	for slot := 0; slot < len(slots); slot++ {
		w, ok := assignments[slot]
		if !ok {
			continue
		}
		rect := slots[slot]
		if err := a.backend.MoveResize(w.ID, rect); err != nil {
			a.logger.Warn("failed to reposition window",
				"window", w.ID, "process", w.Process, "error", err)
			name := w.Title
			if name == "" {
				name = w.Process
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		result.Placements = append(result.Placements, Placement{Window: w, Slot: slot, Rect: rect})
		result.Arranged++
	}

	a.logger.Info("arrangement complete",
		"layout", opts.Layout.Name,
		"display", display.Name,
		"arranged", result.Arranged,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result, nil
}

type pinnedWindow struct {
	window platform.Window
	slot   int
}

// partitionPins splits windows into pinned and free. The first matching
// rule wins per window; a rule whose slot is out of range for the layout
// demotes the window to the free pool.
func (a *Arranger) partitionPins(windows []platform.Window, pins []config.PinRule, slotCount int) ([]pinnedWindow, []platform.Window) {
	var pinned []pinnedWindow
	var pool []platform.Window

	for _, w := range windows {
		rule, ok := matchPin(pins, w)
		if !ok {
			pool = append(pool, w)
			continue
		}
		if rule.Slot >= slotCount {
			a.logger.Warn("pin slot out of range for layout",
				"process", rule.Process, "slot", rule.Slot, "slots", slotCount)
			pool = append(pool, w)
			continue
		}
		pinned = append(pinned, pinnedWindow{window: w, slot: rule.Slot})
	}
	return pinned, pool
}

func matchPin(pins []config.PinRule, w platform.Window) (config.PinRule, bool) {
	for _, rule := range pins {
		if rule.Matches(w.Process, w.Title) {
			return rule, true
		}
	}
	return config.PinRule{}, false
}

// enabledSlots computes the layout's slots and drops the disabled ones,
// preserving order.
func enabledSlots(l config.ResolvedLayout, area layout.Rect, gap int) []layout.Rect {
	all := l.Slots(area, gap)
	if len(l.Disabled) == 0 {
		return all
	}

	disabled := make(map[int]bool, len(l.Disabled))
	for _, d := range l.Disabled {
		disabled[d] = true
	}

	slots := make([]layout.Rect, 0, len(all))
	for i, s := range all {
		if !disabled[i] {
			slots = append(slots, s)
		}
	}
	return slots
}
