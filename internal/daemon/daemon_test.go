package daemon

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartile/smartile/internal/activity"
	"github.com/smartile/smartile/internal/config"
)

func TestListLayoutsIncludesConfigAndBuiltins(t *testing.T) {
	cfg := config.Default()
	cfg.Grids = []config.GridDef{{Name: "wide", Cols: 3, Rows: 1, Disabled: []int{2}}}
	cfg.Layouts = []config.LayoutDef{{Name: "coding", Grid: "wide"}}

	infos := ListLayouts(cfg)

	byName := make(map[string]string)
	slots := make(map[string]int)
	for _, info := range infos {
		byName[info.Name] = info.Source
		slots[info.Name] = info.Slots
	}

	if byName["coding"] != "layout" || slots["coding"] != 2 {
		t.Fatalf("named layout wrong: source=%q slots=%d", byName["coding"], slots["coding"])
	}
	if byName["wide"] != "grid" {
		t.Fatalf("grid missing: %q", byName["wide"])
	}
	if byName["2x2 Grid"] != "builtin" || slots["2x2 Grid"] != 4 {
		t.Fatalf("builtin missing: source=%q slots=%d", byName["2x2 Grid"], slots["2x2 Grid"])
	}
}

func TestTopAppsFormatsRanking(t *testing.T) {
	store := activity.OpenStore(filepath.Join(t.TempDir(), "a.yaml"), slog.Default())
	tracker := activity.NewTracker(store,
		func() (activity.Sample, bool) { return activity.Sample{}, false },
		nil, 7, slog.Default())

	now := time.Now()
	store.AddFocus("firefox", 3600, "", "browser", now)
	store.AddFocus("code", 60, "", "editor", now.Add(-80*time.Hour))

	infos := TopApps(tracker, 5)
	if len(infos) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(infos))
	}
	if infos[0].App != "firefox" || infos[0].Category != "browser" {
		t.Fatalf("unexpected top entry: %+v", infos[0])
	}
	if infos[0].Score <= infos[1].Score {
		t.Fatal("ranking not descending")
	}
}
