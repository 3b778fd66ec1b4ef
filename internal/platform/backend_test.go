package platform

import (
	"testing"

	"github.com/smartile/smartile/internal/layout"
)

func testDisplays() []Display {
	return []Display{
		{ID: 0, Name: "DP-1", Primary: false, Bounds: layout.Rect{Width: 1920, Height: 1080}},
		{ID: 1, Name: "DP-2", Primary: true, Bounds: layout.Rect{X: 1920, Width: 2560, Height: 1440}},
	}
}

func TestResolveDisplayPrimary(t *testing.T) {
	for _, spec := range []string{"", "primary", " Primary "} {
		d, err := ResolveDisplay(testDisplays(), spec)
		if err != nil {
			t.Fatalf("ResolveDisplay(%q): %v", spec, err)
		}
		if d.ID != 1 {
			t.Fatalf("ResolveDisplay(%q) picked display %d, want 1", spec, d.ID)
		}
	}
}

func TestResolveDisplayByIndex(t *testing.T) {
	d, err := ResolveDisplay(testDisplays(), "0")
	if err != nil {
		t.Fatalf("ResolveDisplay(0): %v", err)
	}
	if d.Name != "DP-1" {
		t.Fatalf("got %q, want DP-1", d.Name)
	}
}

func TestResolveDisplayNoPrimaryFallsBack(t *testing.T) {
	displays := testDisplays()
	displays[1].Primary = false

	d, err := ResolveDisplay(displays, "primary")
	if err != nil {
		t.Fatalf("ResolveDisplay: %v", err)
	}
	if d.ID != 0 {
		t.Fatalf("expected first display fallback, got %d", d.ID)
	}
}

func TestResolveDisplayNeverFailsWithDisplays(t *testing.T) {
	d, err := ResolveDisplay(testDisplays(), "5")
	if err != nil {
		t.Fatalf("ResolveDisplay(5): %v", err)
	}
	if d.ID != 0 {
		t.Fatalf("out-of-range index must fall back to first display, got %d", d.ID)
	}

	d, err = ResolveDisplay(testDisplays(), "left")
	if err != nil {
		t.Fatalf("ResolveDisplay(left): %v", err)
	}
	if d.ID != 1 {
		t.Fatalf("unrecognized spec must resolve like primary, got %d", d.ID)
	}
}

func TestResolveDisplayEmptyList(t *testing.T) {
	if _, err := ResolveDisplay(nil, "primary"); err == nil {
		t.Fatal("expected error for empty display list")
	}
}
