package arrange

import (
	"log/slog"
	"testing"

	"github.com/smartile/smartile/internal/config"
	"github.com/smartile/smartile/internal/layout"
	"github.com/smartile/smartile/internal/platform"
	"github.com/smartile/smartile/internal/winscan"
)

type fakeBackend struct {
	displays []platform.Display
	windows  []platform.Window
	moved    map[uint32]layout.Rect
	failIDs  map[uint32]bool
}

func newFakeBackend(windows ...platform.Window) *fakeBackend {
	return &fakeBackend{
		displays: []platform.Display{{
			ID:      0,
			Name:    "DP-1",
			Primary: true,
			Bounds:  layout.Rect{Width: 1000, Height: 1000},
			Usable:  layout.Rect{Width: 1000, Height: 1000},
		}},
		windows: windows,
		moved:   make(map[uint32]layout.Rect),
		failIDs: make(map[uint32]bool),
	}
}

func (f *fakeBackend) Displays() ([]platform.Display, error) { return f.displays, nil }
func (f *fakeBackend) Windows() ([]platform.Window, error)   { return f.windows, nil }
func (f *fakeBackend) ActiveWindow() (uint32, bool)          { return 0, false }
func (f *fakeBackend) Focus(uint32) error                    { return nil }
func (f *fakeBackend) Minimize(uint32) error                 { return nil }
func (f *fakeBackend) Close()                                {}

func (f *fakeBackend) MoveResize(id uint32, r layout.Rect) error {
	if f.failIDs[id] {
		return errMove
	}
	f.moved[id] = r
	return nil
}

var errMove = &moveError{}

type moveError struct{}

func (*moveError) Error() string { return "move rejected" }

func win(id uint32, process, title string) platform.Window {
	return platform.Window{
		ID:       id,
		PID:      int(id),
		Process:  process,
		Title:    title,
		Bounds:   layout.Rect{Width: 640, Height: 480},
		Viewable: true,
	}
}

func gridLayout(t *testing.T, spec string) config.ResolvedLayout {
	t.Helper()
	r, err := config.Default().ResolveLayout(spec)
	if err != nil {
		t.Fatalf("ResolveLayout(%q): %v", spec, err)
	}
	return r
}

func TestArrangeFillsSlotsInOrder(t *testing.T) {
	backend := newFakeBackend(
		win(1, "alacritty", "one"),
		win(2, "alacritty", "two"),
	)
	a := New(backend, slog.Default())

	res, err := a.Arrange(Options{
		Layout: gridLayout(t, "2x2"),
		Filter: winscan.TargetFilter{Mode: winscan.FilterUniversal},
	})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Arranged != 2 || res.Skipped != 0 {
		t.Fatalf("arranged=%d skipped=%d", res.Arranged, res.Skipped)
	}
	if len(backend.moved) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(backend.moved))
	}
	if res.Placements[0].Slot != 0 || res.Placements[1].Slot != 1 {
		t.Fatalf("windows not dense-filled: %+v", res.Placements)
	}
}

func TestArrangeSkipsOverflowWindows(t *testing.T) {
	backend := newFakeBackend(
		win(1, "a", ""), win(2, "b", ""), win(3, "c", ""),
		win(4, "d", ""), win(5, "e", ""),
	)
	a := New(backend, slog.Default())

	res, err := a.Arrange(Options{
		Layout: gridLayout(t, "2x2"),
		Filter: winscan.TargetFilter{Mode: winscan.FilterUniversal},
	})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Arranged != 4 || res.Skipped != 1 || len(res.Errors) != 0 {
		t.Fatalf("arranged=%d skipped=%d errors=%d, want 4/1/0",
			res.Arranged, res.Skipped, len(res.Errors))
	}
}

func TestArrangePinsWinOverScore(t *testing.T) {
	backend := newFakeBackend(
		win(1, "slack", "general"),
		win(2, "firefox", "docs"),
		win(3, "code", "main.go"),
	)
	a := New(backend, slog.Default())

	scores := map[string]float64{"slack": 1, "firefox": 90, "code": 50}
	res, err := a.Arrange(Options{
		Layout:    gridLayout(t, "2x2"),
		Filter:    winscan.TargetFilter{Mode: winscan.FilterUniversal},
		Pins:      []config.PinRule{{Process: "slack", Slot: 2}},
		SmartSort: true,
		Score:     func(p string) float64 { return scores[p] },
	})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}

	bySlot := make(map[int]string)
	for _, p := range res.Placements {
		bySlot[p.Slot] = p.Window.Process
	}
	if bySlot[2] != "slack" {
		t.Fatalf("pinned window not in slot 2: %+v", bySlot)
	}
	if bySlot[0] != "firefox" || bySlot[1] != "code" {
		t.Fatalf("pool not in score order: %+v", bySlot)
	}
}

func TestArrangeOutOfRangePinFallsToPool(t *testing.T) {
	backend := newFakeBackend(win(1, "slack", ""))
	a := New(backend, slog.Default())

	res, err := a.Arrange(Options{
		Layout:    gridLayout(t, "left-right"),
		Filter:    winscan.TargetFilter{Mode: winscan.FilterUniversal},
		Pins:      []config.PinRule{{Process: "slack", Slot: 7}},
		SmartSort: true,
		Score:     func(string) float64 { return 1 },
	})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Arranged != 1 || res.Placements[0].Slot != 0 {
		t.Fatalf("expected pool placement in slot 0: %+v", res.Placements)
	}
}

func TestArrangePinsIgnoredWithoutSmartSort(t *testing.T) {
	backend := newFakeBackend(win(1, "slack", ""), win(2, "code", ""))
	a := New(backend, slog.Default())

	res, err := a.Arrange(Options{
		Layout: gridLayout(t, "2x2"),
		Filter: winscan.TargetFilter{Mode: winscan.FilterUniversal},
		Pins:   []config.PinRule{{Process: "slack", Slot: 3}},
	})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	// Discovery order applies; the pin has no effect.
	if res.Placements[0].Slot != 0 || res.Placements[0].Window.Process != "slack" {
		t.Fatalf("expected discovery-order placement: %+v", res.Placements)
	}
}

func TestArrangeDisabledSlotsStayEmpty(t *testing.T) {
	grid := config.GridDef{Name: "g", Cols: 2, Rows: 1, Disabled: []int{0}}
	backend := newFakeBackend(win(1, "a", ""))
	a := New(backend, slog.Default())

	res, err := a.Arrange(Options{
		Layout: config.ResolvedLayout{Name: "g", Grid: &grid, Disabled: grid.Disabled},
		Filter: winscan.TargetFilter{Mode: winscan.FilterUniversal},
	})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Arranged != 1 {
		t.Fatalf("arranged=%d, want 1", res.Arranged)
	}
	// The only enabled slot is the right half.
	if got := backend.moved[1]; got.X != 500 {
		t.Fatalf("window placed at %+v, want right half", got)
	}
}

func TestArrangeCollectsMoveErrors(t *testing.T) {
	backend := newFakeBackend(win(1, "a", ""), win(2, "b", ""))
	backend.failIDs[1] = true
	a := New(backend, slog.Default())

	res, err := a.Arrange(Options{
		Layout: gridLayout(t, "left-right"),
		Filter: winscan.TargetFilter{Mode: winscan.FilterUniversal},
	})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Arranged != 1 || len(res.Errors) != 1 {
		t.Fatalf("arranged=%d errors=%v, want 1 move and 1 error", res.Arranged, res.Errors)
	}
}

func TestArrangeNoDisplaysAborts(t *testing.T) {
	backend := newFakeBackend()
	backend.displays = nil
	a := New(backend, slog.Default())

	if _, err := a.Arrange(Options{
		Layout: gridLayout(t, "2x2"),
		Filter: winscan.TargetFilter{Mode: winscan.FilterUniversal},
	}); err == nil {
		t.Fatal("expected error with no displays")
	}
}
