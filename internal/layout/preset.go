package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Rect describes a placement slot in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Kind identifies a preset family.
type Kind string

const (
	KindGrid      Kind = "grid"
	KindColumns   Kind = "columns"
	KindRows      Kind = "rows"
	KindLeftRight Kind = "left-right"
	KindTopBottom Kind = "top-bottom"
	KindMainSide  Kind = "main-side"
	KindFocus     Kind = "focus"
)

// Preset is a parameterized recipe for generating an ordered slot list.
type Preset struct {
	Kind Kind
	Cols int // grid
	Rows int // grid
	N    int // columns / rows
	Side int // main-side / focus stacked slot count
}

// Parse interprets a layout spec string like "2x3", "columns:4", "rows:2",
// "left-right", "top-bottom", "main-side:2" or "focus:3". Unrecognized
// strings return ok=false; callers must treat that as a user-input error.
func Parse(spec string) (Preset, bool) {
	s := strings.ToLower(strings.TrimSpace(spec))

	// "2x3", "3x2", etc. A string containing 'x' is only ever a grid spec.
	if c, r, found := strings.Cut(s, "x"); found {
		cols, err1 := strconv.Atoi(strings.TrimSpace(c))
		rows, err2 := strconv.Atoi(strings.TrimSpace(r))
		if err1 != nil || err2 != nil || cols <= 0 || rows <= 0 {
			return Preset{}, false
		}
		return Preset{Kind: KindGrid, Cols: cols, Rows: rows}, true
	}

	if rest, ok := strings.CutPrefix(s, "columns"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(rest, ":")))
		if err != nil || n <= 0 {
			return Preset{}, false
		}
		return Preset{Kind: KindColumns, N: n}, true
	}

	if rest, ok := strings.CutPrefix(s, "rows"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(rest, ":")))
		if err != nil || n <= 0 {
			return Preset{}, false
		}
		return Preset{Kind: KindRows, N: n}, true
	}

	switch s {
	case "left-right", "leftright", "split":
		return Preset{Kind: KindLeftRight}, true
	case "top-bottom", "topbottom":
		return Preset{Kind: KindTopBottom}, true
	}

	if strings.HasPrefix(s, "main-side") || strings.HasPrefix(s, "mainside") {
		rest := strings.TrimPrefix(s, "main-side")
		rest = strings.TrimPrefix(rest, "mainside")
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			n = 2
		}
		return Preset{Kind: KindMainSide, Side: n}, true
	}

	if strings.HasPrefix(s, "focus") {
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s, "focus"), ":"))
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			n = 3
		}
		return Preset{Kind: KindFocus, Side: n}, true
	}

	return Preset{}, false
}

// SlotCount returns the number of slots the preset generates.
func (p Preset) SlotCount() int {
	switch p.Kind {
	case KindGrid:
		return p.Cols * p.Rows
	case KindColumns, KindRows:
		return p.N
	case KindLeftRight, KindTopBottom:
		return 2
	case KindMainSide, KindFocus:
		return 1 + p.Side
	}
	return 0
}

// DisplayName returns a human-readable name for the preset.
func (p Preset) DisplayName() string {
	switch p.Kind {
	case KindGrid:
		return fmt.Sprintf("%dx%d Grid", p.Cols, p.Rows)
	case KindColumns:
		return fmt.Sprintf("%d Columns", p.N)
	case KindRows:
		return fmt.Sprintf("%d Rows", p.N)
	case KindLeftRight:
		return "Left / Right"
	case KindTopBottom:
		return "Top / Bottom"
	case KindMainSide:
		return fmt.Sprintf("Main + %d Side", p.Side)
	case KindFocus:
		return fmt.Sprintf("Focus + %d Side", p.Side)
	}
	return string(p.Kind)
}

// Slots computes the slot rectangles for the preset inside area, separated
// by gap pixels. Cell spans use integer division; remainder pixels are
// absorbed by truncation. Slot order is row-major for grids, left-to-right
// or top-to-bottom for 1-D presets, and primary-first for main/focus.
func (p Preset) Slots(area Rect, gap int) []Rect {
	switch p.Kind {
	case KindGrid:
		cellW := (area.Width - gap*(p.Cols-1)) / p.Cols
		cellH := (area.Height - gap*(p.Rows-1)) / p.Rows
		slots := make([]Rect, 0, p.Cols*p.Rows)
		for r := 0; r < p.Rows; r++ {
			for c := 0; c < p.Cols; c++ {
				slots = append(slots, Rect{
					X:      area.X + c*(cellW+gap),
					Y:      area.Y + r*(cellH+gap),
					Width:  cellW,
					Height: cellH,
				})
			}
		}
		return slots

	case KindColumns:
		colW := (area.Width - gap*(p.N-1)) / p.N
		slots := make([]Rect, 0, p.N)
		for i := 0; i < p.N; i++ {
			slots = append(slots, Rect{
				X:      area.X + i*(colW+gap),
				Y:      area.Y,
				Width:  colW,
				Height: area.Height,
			})
		}
		return slots

	case KindRows:
		rowH := (area.Height - gap*(p.N-1)) / p.N
		slots := make([]Rect, 0, p.N)
		for i := 0; i < p.N; i++ {
			slots = append(slots, Rect{
				X:      area.X,
				Y:      area.Y + i*(rowH+gap),
				Width:  area.Width,
				Height: rowH,
			})
		}
		return slots

	case KindLeftRight:
		halfW := (area.Width - gap) / 2
		return []Rect{
			{X: area.X, Y: area.Y, Width: halfW, Height: area.Height},
			{X: area.X + halfW + gap, Y: area.Y, Width: halfW, Height: area.Height},
		}

	case KindTopBottom:
		halfH := (area.Height - gap) / 2
		return []Rect{
			{X: area.X, Y: area.Y, Width: area.Width, Height: halfH},
			{X: area.X, Y: area.Y + halfH + gap, Width: area.Width, Height: halfH},
		}

	case KindMainSide:
		return mainSideSlots(area, gap, p.Side, 2, 3)

	case KindFocus:
		return mainSideSlots(area, gap, p.Side, 3, 4)
	}

	return nil
}

// mainSideSlots builds a single primary slot spanning num/den of the width
// with sideCount stacked slots filling the remainder.
func mainSideSlots(area Rect, gap, sideCount, num, den int) []Rect {
	mainW := (area.Width - gap) * num / den
	sideW := area.Width - mainW - gap
	sideH := (area.Height - gap*(sideCount-1)) / sideCount

	slots := make([]Rect, 0, 1+sideCount)
	slots = append(slots, Rect{X: area.X, Y: area.Y, Width: mainW, Height: area.Height})
	for i := 0; i < sideCount; i++ {
		slots = append(slots, Rect{
			X:      area.X + mainW + gap,
			Y:      area.Y + i*(sideH+gap),
			Width:  sideW,
			Height: sideH,
		})
	}
	return slots
}

// WeightedGrid computes grid slots with per-column and per-row weight
// fractions. Weights are expected to sum to approximately 1.0; the final
// column and row absorb rounding residue so spans sum exactly to the
// usable span.
func WeightedGrid(cols, rows int, area Rect, gap int, colWeights, rowWeights []float64) []Rect {
	usableW := area.Width - gap*(cols-1)
	usableH := area.Height - gap*(rows-1)

	colWidths := make([]int, cols)
	colSum := 0
	for i := 0; i < cols; i++ {
		colWidths[i] = int(float64(usableW) * colWeights[i])
		colSum += colWidths[i]
	}
	colWidths[cols-1] += usableW - colSum

	rowHeights := make([]int, rows)
	rowSum := 0
	for i := 0; i < rows; i++ {
		rowHeights[i] = int(float64(usableH) * rowWeights[i])
		rowSum += rowHeights[i]
	}
	rowHeights[rows-1] += usableH - rowSum

	colX := make([]int, cols)
	x := area.X
	for i, cw := range colWidths {
		colX[i] = x
		if i+1 < cols {
			x += cw + gap
		}
	}

	rowY := make([]int, rows)
	y := area.Y
	for i, rh := range rowHeights {
		rowY[i] = y
		if i+1 < rows {
			y += rh + gap
		}
	}

	slots := make([]Rect, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			slots = append(slots, Rect{
				X:      colX[c],
				Y:      rowY[r],
				Width:  colWidths[c],
				Height: rowHeights[r],
			})
		}
	}
	return slots
}

// NamedPreset pairs a preset with its catalogue name.
type NamedPreset struct {
	Name   string
	Preset Preset
}

// BuiltinPresets returns the built-in preset catalogue in display order.
func BuiltinPresets() []NamedPreset {
	return []NamedPreset{
		{"1x2 Grid", Preset{Kind: KindGrid, Cols: 1, Rows: 2}},
		{"2x1 Grid", Preset{Kind: KindGrid, Cols: 2, Rows: 1}},
		{"2x2 Grid", Preset{Kind: KindGrid, Cols: 2, Rows: 2}},
		{"2x3 Grid", Preset{Kind: KindGrid, Cols: 2, Rows: 3}},
		{"3x2 Grid", Preset{Kind: KindGrid, Cols: 3, Rows: 2}},
		{"3x3 Grid", Preset{Kind: KindGrid, Cols: 3, Rows: 3}},
		{"4x2 Grid", Preset{Kind: KindGrid, Cols: 4, Rows: 2}},
		{"4x3 Grid", Preset{Kind: KindGrid, Cols: 4, Rows: 3}},
		{"4x4 Grid", Preset{Kind: KindGrid, Cols: 4, Rows: 4}},
		{"Left / Right", Preset{Kind: KindLeftRight}},
		{"Top / Bottom", Preset{Kind: KindTopBottom}},
		{"Main + 2 Side", Preset{Kind: KindMainSide, Side: 2}},
		{"Main + 3 Side", Preset{Kind: KindMainSide, Side: 3}},
		{"Main + 4 Side", Preset{Kind: KindMainSide, Side: 4}},
		{"Focus + 3 Side", Preset{Kind: KindFocus, Side: 3}},
		{"Focus + 4 Side", Preset{Kind: KindFocus, Side: 4}},
		{"2 Columns", Preset{Kind: KindColumns, N: 2}},
		{"3 Columns", Preset{Kind: KindColumns, N: 3}},
		{"4 Columns", Preset{Kind: KindColumns, N: 4}},
		{"2 Rows", Preset{Kind: KindRows, N: 2}},
		{"3 Rows", Preset{Kind: KindRows, N: 3}},
	}
}
