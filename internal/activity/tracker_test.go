package activity

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestTracker(t *testing.T) (*Tracker, *Store) {
	t.Helper()
	store := OpenStore(filepath.Join(t.TempDir(), "activity.yaml"), slog.Default())
	tr := NewTracker(store, func() (Sample, bool) { return Sample{}, false }, nil, 7, slog.Default())
	return tr, store
}

func push(tr *Tracker, process, title string, at time.Time) {
	tr.events <- focusEvent{Sample: Sample{Process: process, Title: title}, At: at}
}

func TestTrackerClosesSpansOnFocusChange(t *testing.T) {
	tr, store := newTestTracker(t)
	start := time.Unix(1_700_000_000, 0)
	tr.now = func() time.Time { return start.Add(10 * time.Second) }

	push(tr, "code", "main.go", start)
	push(tr, "firefox", "Docs", start.Add(3*time.Second))
	push(tr, "code", "main.go", start.Add(5*time.Second))
	tr.Update()

	code, _ := store.Record("code")
	if code.FocusSeconds != 3 {
		t.Fatalf("code focus = %v, want 3", code.FocusSeconds)
	}
	if code.Switches != 2 {
		t.Fatalf("code switches = %d, want 2", code.Switches)
	}

	ff, _ := store.Record("firefox")
	if ff.FocusSeconds != 2 {
		t.Fatalf("firefox focus = %v, want 2", ff.FocusSeconds)
	}
	if ff.Switches != 1 {
		t.Fatalf("firefox switches = %d, want 1", ff.Switches)
	}
	if ff.LastTitle != "Docs" {
		t.Fatalf("firefox title = %q", ff.LastTitle)
	}
}

func TestTrackerFloorsNegativeSpans(t *testing.T) {
	tr, store := newTestTracker(t)
	start := time.Unix(1_700_000_000, 0)
	tr.now = func() time.Time { return start }

	push(tr, "code", "", start)
	// Clock skew: the change event predates the span start.
	push(tr, "firefox", "", start.Add(-30*time.Second))
	tr.Update()

	rec, _ := store.Record("code")
	if rec.FocusSeconds != 0 {
		t.Fatalf("negative span not floored: %v", rec.FocusSeconds)
	}
}

func TestTrackerSessionIncludesOpenSpan(t *testing.T) {
	tr, _ := newTestTracker(t)
	start := time.Unix(1_700_000_000, 0)
	tr.now = func() time.Time { return start.Add(5 * time.Second) }

	push(tr, "code", "", start)
	push(tr, "firefox", "", start.Add(2*time.Second))
	tr.Update()

	sess := tr.Session()
	if sess.Switches != 2 {
		t.Fatalf("session switches = %d, want 2", sess.Switches)
	}
	if sess.Focus["code"] != 2 {
		t.Fatalf("session code focus = %v, want 2", sess.Focus["code"])
	}
	// firefox has held focus for 3 seconds and its span is still open.
	if sess.Focus["firefox"] != 3 {
		t.Fatalf("session firefox focus = %v, want 3", sess.Focus["firefox"])
	}
}

func TestTrackerScoreIncludesOpenSpan(t *testing.T) {
	tr, _ := newTestTracker(t)
	start := time.Unix(1_700_000_000, 0)
	tr.now = func() time.Time { return start.Add(10 * time.Minute) }

	push(tr, "code", "", start)
	tr.Update()

	if tr.ScoreApp("Code") <= tr.ScoreApp("firefox") {
		t.Fatal("app holding focus must outscore an unknown app")
	}
}

func TestTrackerSamplerEmitsOnWindowChange(t *testing.T) {
	store := OpenStore(filepath.Join(t.TempDir(), "activity.yaml"), slog.Default())

	var cur Sample
	tr := NewTracker(store, func() (Sample, bool) { return cur, true }, nil, 7, slog.Default())
	start := time.Unix(1_700_000_000, 0)
	tr.now = func() time.Time { return start }

	// Two windows of the same application: moving between them is still a
	// focus switch.
	cur = Sample{Window: 11, Process: "Code", Title: "main.go"}
	tr.sampleOnce()
	tr.sampleOnce()
	cur = Sample{Window: 12, Process: "Code", Title: "scan.go"}
	tr.sampleOnce()
	tr.Update()

	rec, ok := store.Record("code")
	if !ok {
		t.Fatal("no record for code")
	}
	if rec.Switches != 2 {
		t.Fatalf("switches = %d, want 2 (one per window)", rec.Switches)
	}
	if rec.LastTitle != "scan.go" {
		t.Fatalf("title not refreshed on window change: %q", rec.LastTitle)
	}
}

func TestTrackerPeriodicSave(t *testing.T) {
	store := OpenStore(filepath.Join(t.TempDir(), "activity.yaml"), slog.Default())
	tr := NewTracker(store, func() (Sample, bool) { return Sample{}, false }, nil, 7, slog.Default())

	start := time.Unix(1_700_000_000, 0)
	tr.now = func() time.Time { return start }
	tr.lastSave = start.Add(-2 * saveInterval)

	push(tr, "code", "", start)
	tr.Update()

	if _, err := os.Stat(store.path); err != nil {
		t.Fatalf("expected database written by periodic save: %v", err)
	}
}

func TestTrackerPeriodicSaveFlushesOpenSpan(t *testing.T) {
	store := OpenStore(filepath.Join(t.TempDir(), "activity.yaml"), slog.Default())
	tr := NewTracker(store, func() (Sample, bool) { return Sample{}, false }, nil, 7, slog.Default())

	start := time.Unix(1_700_000_000, 0)
	now := start.Add(2 * time.Hour)
	tr.now = func() time.Time { return now }
	tr.lastSave = start

	push(tr, "code", "", start)
	tr.Update()

	// A long-lived span must reach disk with the periodic save, not only
	// on focus change or shutdown.
	reloaded := OpenStore(store.path, slog.Default())
	rec, ok := reloaded.Record("code")
	if !ok || rec.FocusSeconds != 7200 {
		t.Fatalf("open span not flushed by periodic save: %+v (ok=%v)", rec, ok)
	}

	// The span stays open and is not double counted by the next flush.
	now = now.Add(time.Second)
	tr.Close()
	reloaded = OpenStore(store.path, slog.Default())
	rec, _ = reloaded.Record("code")
	if rec.FocusSeconds != 7201 {
		t.Fatalf("span double counted after flush: %v, want 7201", rec.FocusSeconds)
	}
}

func TestTrackerCloseFlushesOpenSpan(t *testing.T) {
	store := OpenStore(filepath.Join(t.TempDir(), "activity.yaml"), slog.Default())
	tr := NewTracker(store, func() (Sample, bool) { return Sample{}, false }, nil, 7, slog.Default())
	start := time.Unix(1_700_000_000, 0)
	tr.now = func() time.Time { return start.Add(4 * time.Second) }

	push(tr, "code", "", start)
	tr.Close()

	reloaded := OpenStore(store.path, slog.Default())
	rec, ok := reloaded.Record("code")
	if !ok || rec.FocusSeconds != 4 {
		t.Fatalf("open span not flushed on close: %+v (ok=%v)", rec, ok)
	}
}
