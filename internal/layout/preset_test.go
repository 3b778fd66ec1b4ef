package layout

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want Preset
		ok   bool
	}{
		{"2x2", Preset{Kind: KindGrid, Cols: 2, Rows: 2}, true},
		{" 3x2 ", Preset{Kind: KindGrid, Cols: 3, Rows: 2}, true},
		{"columns:3", Preset{Kind: KindColumns, N: 3}, true},
		{"columns 4", Preset{Kind: KindColumns, N: 4}, true},
		{"rows:2", Preset{Kind: KindRows, N: 2}, true},
		{"left-right", Preset{Kind: KindLeftRight}, true},
		{"split", Preset{Kind: KindLeftRight}, true},
		{"top-bottom", Preset{Kind: KindTopBottom}, true},
		{"TopBottom", Preset{Kind: KindTopBottom}, true},
		{"main-side", Preset{Kind: KindMainSide, Side: 2}, true},
		{"main-side:4", Preset{Kind: KindMainSide, Side: 4}, true},
		{"focus", Preset{Kind: KindFocus, Side: 3}, true},
		{"focus:4", Preset{Kind: KindFocus, Side: 4}, true},
		{"bogus", Preset{}, false},
		{"0x2", Preset{}, false},
		{"columns:0", Preset{}, false},
		{"columns", Preset{}, false},
		{"", Preset{}, false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.spec)
		if ok != tt.ok {
			t.Fatalf("Parse(%q): ok=%v, want %v", tt.spec, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tt.spec, got, tt.want)
		}
	}
}

func TestSlotCount(t *testing.T) {
	tests := []struct {
		spec string
		want int
	}{
		{"2x3", 6},
		{"columns:3", 3},
		{"rows:4", 4},
		{"left-right", 2},
		{"top-bottom", 2},
		{"main-side:2", 3},
		{"focus:3", 4},
	}

	for _, tt := range tests {
		p, ok := Parse(tt.spec)
		if !ok {
			t.Fatalf("Parse(%q) failed", tt.spec)
		}
		if got := p.SlotCount(); got != tt.want {
			t.Fatalf("SlotCount(%q) = %d, want %d", tt.spec, got, tt.want)
		}
	}
}

func TestGridSlots2x2(t *testing.T) {
	p := Preset{Kind: KindGrid, Cols: 2, Rows: 2}
	area := Rect{X: 0, Y: 0, Width: 1000, Height: 1000}

	slots := p.Slots(area, 10)
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}

	// (1000-10)/2 = 495 per cell, second column/row at 495+10 = 505.
	wantX := []int{0, 505, 0, 505}
	wantY := []int{0, 0, 505, 505}
	for i, s := range slots {
		if s.Width != 495 || s.Height != 495 {
			t.Fatalf("slot %d: size %dx%d, want 495x495", i, s.Width, s.Height)
		}
		if s.X != wantX[i] || s.Y != wantY[i] {
			t.Fatalf("slot %d: at (%d,%d), want (%d,%d)", i, s.X, s.Y, wantX[i], wantY[i])
		}
	}
}

func TestGridSlotsStayInsideArea(t *testing.T) {
	area := Rect{X: 50, Y: 30, Width: 997, Height: 613}
	gap := 7

	for _, dims := range [][2]int{{1, 1}, {2, 2}, {3, 2}, {4, 3}, {5, 5}} {
		cols, rows := dims[0], dims[1]
		p := Preset{Kind: KindGrid, Cols: cols, Rows: rows}
		slots := p.Slots(area, gap)

		cellW := slots[0].Width
		cellH := slots[0].Height
		if got := cellW*cols + gap*(cols-1); got > area.Width {
			t.Fatalf("%dx%d: columns overflow area: %d > %d", cols, rows, got, area.Width)
		}
		if got := cellH*rows + gap*(rows-1); got > area.Height {
			t.Fatalf("%dx%d: rows overflow area: %d > %d", cols, rows, got, area.Height)
		}

		last := slots[len(slots)-1]
		if last.X+last.Width > area.X+area.Width || last.Y+last.Height > area.Y+area.Height {
			t.Fatalf("%dx%d: last slot out of bounds: %+v", cols, rows, last)
		}
	}
}

func TestMainSideSlots(t *testing.T) {
	p := Preset{Kind: KindMainSide, Side: 2}
	area := Rect{X: 0, Y: 0, Width: 900, Height: 600}

	slots := p.Slots(area, 0)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if slots[0].Width != 600 || slots[0].Height != 600 {
		t.Fatalf("primary slot %dx%d, want 600x600", slots[0].Width, slots[0].Height)
	}
	if slots[1].X != 600 || slots[2].Y != 300 {
		t.Fatalf("side slots misplaced: %+v %+v", slots[1], slots[2])
	}
}

func TestWeightedGridUniformMatchesGrid(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1280, Height: 720}
	gap := 8
	cols, rows := 3, 2

	plain := Preset{Kind: KindGrid, Cols: cols, Rows: rows}.Slots(area, gap)
	weighted := WeightedGrid(cols, rows, area, gap,
		[]float64{1.0 / 3, 1.0 / 3, 1.0 / 3},
		[]float64{0.5, 0.5})

	if len(plain) != len(weighted) {
		t.Fatalf("slot count mismatch: %d vs %d", len(plain), len(weighted))
	}
	for i := range plain {
		if abs(plain[i].X-weighted[i].X) > 1 || abs(plain[i].Y-weighted[i].Y) > 1 ||
			abs(plain[i].Width-weighted[i].Width) > 1 || abs(plain[i].Height-weighted[i].Height) > 1 {
			t.Fatalf("slot %d diverges: plain=%+v weighted=%+v", i, plain[i], weighted[i])
		}
	}
}

func TestWeightedGridSpansSumExactly(t *testing.T) {
	area := Rect{X: 10, Y: 10, Width: 1366, Height: 768}
	gap := 6
	cols, rows := 3, 2
	colWeights := []float64{0.61, 0.18, 0.21}
	rowWeights := []float64{0.37, 0.63}

	slots := WeightedGrid(cols, rows, area, gap, colWeights, rowWeights)

	usableW := area.Width - gap*(cols-1)
	widthSum := 0
	for c := 0; c < cols; c++ {
		widthSum += slots[c].Width
	}
	if widthSum != usableW {
		t.Fatalf("column widths sum to %d, want %d", widthSum, usableW)
	}

	usableH := area.Height - gap*(rows-1)
	heightSum := 0
	for r := 0; r < rows; r++ {
		heightSum += slots[r*cols].Height
	}
	if heightSum != usableH {
		t.Fatalf("row heights sum to %d, want %d", heightSum, usableH)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
