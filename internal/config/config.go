package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smartile/smartile/internal/layout"
)

// Defaults holds the settings an arrangement pass uses when the caller
// does not override them.
type Defaults struct {
	Layout            string  `yaml:"layout"`
	Target            string  `yaml:"target"`
	Monitor           string  `yaml:"monitor"`
	Gap               int     `yaml:"gap"`
	SmartSort         bool    `yaml:"smart_sort"`
	DecayHalfLifeDays float64 `yaml:"decay_half_life_days"`
}

// PinRule forces windows of a process (optionally narrowed by a title
// substring) into a fixed slot.
type PinRule struct {
	Process string `yaml:"process"`
	Title   string `yaml:"title,omitempty"`
	Slot    int    `yaml:"slot"`
}

// Matches reports whether the rule applies to a window. Process comparison
// is case-insensitive and exact; the title match is a case-insensitive
// substring test.
func (r PinRule) Matches(process, title string) bool {
	if !strings.EqualFold(r.Process, process) {
		return false
	}
	if r.Title == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(r.Title))
}

// GridDef is a user-defined weighted grid. Weights are optional; absent
// weights mean uniform spans. Disabled lists slot indexes that stay empty.
type GridDef struct {
	Name       string    `yaml:"name"`
	Cols       int       `yaml:"cols"`
	Rows       int       `yaml:"rows"`
	ColWeights []float64 `yaml:"col_weights,omitempty"`
	RowWeights []float64 `yaml:"row_weights,omitempty"`
	Disabled   []int     `yaml:"disabled,omitempty"`
}

// LayoutDef names either a preset spec ("2x3", "main-side:2") or a
// reference to a grid defined in the same config.
type LayoutDef struct {
	Name  string `yaml:"name"`
	Style string `yaml:"style,omitempty"`
	Grid  string `yaml:"grid,omitempty"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Defaults Defaults    `yaml:"defaults"`
	Exclude  []string    `yaml:"exclude,omitempty"`
	Pins     []PinRule   `yaml:"pins,omitempty"`
	Layouts  []LayoutDef `yaml:"layouts,omitempty"`
	Grids    []GridDef   `yaml:"grids,omitempty"`
	Hotkey   string      `yaml:"hotkey,omitempty"`
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		Defaults: Defaults{
			Layout:            "2x2",
			Target:            "terminals",
			Monitor:           "primary",
			Gap:               8,
			SmartSort:         true,
			DecayHalfLifeDays: 7,
		},
		Hotkey: "Mod4-shift-a",
	}
}

// DefaultPath returns the configuration file location.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "smartile", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "smartile", "config.yaml"), nil
}

// Load reads and validates the configuration at path. A missing file
// yields the defaults; unknown fields are rejected so typos fail loudly.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(cfg *Config, path string) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Defaults.Gap < 0 {
		return fmt.Errorf("defaults.gap must be >= 0, got %d", c.Defaults.Gap)
	}
	if c.Defaults.DecayHalfLifeDays <= 0 {
		return fmt.Errorf("defaults.decay_half_life_days must be > 0, got %v", c.Defaults.DecayHalfLifeDays)
	}
	if c.Defaults.Layout != "" {
		if _, err := c.ResolveLayout(c.Defaults.Layout); err != nil {
			return fmt.Errorf("defaults.layout: %w", err)
		}
	}

	grids := make(map[string]bool, len(c.Grids))
	for i, g := range c.Grids {
		if g.Name == "" {
			return fmt.Errorf("grids[%d]: name is required", i)
		}
		if grids[g.Name] {
			return fmt.Errorf("grids[%d]: duplicate grid %q", i, g.Name)
		}
		grids[g.Name] = true
		if err := g.validate(); err != nil {
			return fmt.Errorf("grid %q: %w", g.Name, err)
		}
	}

	names := make(map[string]bool, len(c.Layouts))
	for i, l := range c.Layouts {
		if l.Name == "" {
			return fmt.Errorf("layouts[%d]: name is required", i)
		}
		if names[l.Name] {
			return fmt.Errorf("layouts[%d]: duplicate layout %q", i, l.Name)
		}
		names[l.Name] = true

		switch {
		case l.Style != "" && l.Grid != "":
			return fmt.Errorf("layout %q: style and grid are mutually exclusive", l.Name)
		case l.Style != "":
			if _, ok := layout.Parse(l.Style); !ok {
				return fmt.Errorf("layout %q: unrecognized style %q", l.Name, l.Style)
			}
		case l.Grid != "":
			if !grids[l.Grid] {
				return fmt.Errorf("layout %q: unknown grid %q", l.Name, l.Grid)
			}
		default:
			return fmt.Errorf("layout %q: style or grid is required", l.Name)
		}
	}

	for i, p := range c.Pins {
		if p.Process == "" {
			return fmt.Errorf("pins[%d]: process is required", i)
		}
		if p.Slot < 0 {
			return fmt.Errorf("pins[%d]: slot must be >= 0, got %d", i, p.Slot)
		}
	}

	return nil
}

func (g GridDef) validate() error {
	if g.Cols < 1 || g.Rows < 1 {
		return fmt.Errorf("cols and rows must be >= 1, got %dx%d", g.Cols, g.Rows)
	}
	if len(g.ColWeights) != 0 && len(g.ColWeights) != g.Cols {
		return fmt.Errorf("col_weights has %d entries for %d columns", len(g.ColWeights), g.Cols)
	}
	if len(g.RowWeights) != 0 && len(g.RowWeights) != g.Rows {
		return fmt.Errorf("row_weights has %d entries for %d rows", len(g.RowWeights), g.Rows)
	}
	for _, w := range g.ColWeights {
		if w <= 0 {
			return fmt.Errorf("col_weights must be positive, got %v", w)
		}
	}
	for _, w := range g.RowWeights {
		if w <= 0 {
			return fmt.Errorf("row_weights must be positive, got %v", w)
		}
	}
	for _, d := range g.Disabled {
		if d < 0 || d >= g.Cols*g.Rows {
			return fmt.Errorf("disabled slot %d out of range for %dx%d", d, g.Cols, g.Rows)
		}
	}
	return nil
}

// Grid returns the named grid definition.
func (c *Config) Grid(name string) (GridDef, bool) {
	for _, g := range c.Grids {
		if g.Name == name {
			return g, true
		}
	}
	return GridDef{}, false
}

// Layout returns the named layout definition.
func (c *Config) Layout(name string) (LayoutDef, bool) {
	for _, l := range c.Layouts {
		if l.Name == name {
			return l, true
		}
	}
	return LayoutDef{}, false
}

// ResolvedLayout is a layout ready for slot computation: either a preset
// or a weighted grid, plus the slots disabled by the definition.
type ResolvedLayout struct {
	Name     string
	Preset   layout.Preset
	Grid     *GridDef
	Disabled []int
}

// SlotCount returns the number of slots before disabling.
func (r ResolvedLayout) SlotCount() int {
	if r.Grid != nil {
		return r.Grid.Cols * r.Grid.Rows
	}
	return r.Preset.SlotCount()
}

// Slots computes the layout's slot rectangles in area.
func (r ResolvedLayout) Slots(area layout.Rect, gap int) []layout.Rect {
	if r.Grid != nil {
		g := r.Grid
		cw := g.ColWeights
		if len(cw) == 0 {
			cw = uniformWeights(g.Cols)
		}
		rw := g.RowWeights
		if len(rw) == 0 {
			rw = uniformWeights(g.Rows)
		}
		return layout.WeightedGrid(g.Cols, g.Rows, area, gap, normalize(cw), normalize(rw))
	}
	return r.Preset.Slots(area, gap)
}

// ResolveLayout turns a layout spec into something slots can be computed
// from. The spec is tried as a named layout first, then a named grid, then
// a raw preset string.
func (c *Config) ResolveLayout(spec string) (ResolvedLayout, error) {
	if def, ok := c.Layout(spec); ok {
		if def.Grid != "" {
			g, ok := c.Grid(def.Grid)
			if !ok {
				return ResolvedLayout{}, fmt.Errorf("layout %q references unknown grid %q", spec, def.Grid)
			}
			return ResolvedLayout{Name: def.Name, Grid: &g, Disabled: g.Disabled}, nil
		}
		p, ok := layout.Parse(def.Style)
		if !ok {
			return ResolvedLayout{}, fmt.Errorf("layout %q has unrecognized style %q", spec, def.Style)
		}
		return ResolvedLayout{Name: def.Name, Preset: p}, nil
	}

	if g, ok := c.Grid(spec); ok {
		return ResolvedLayout{Name: g.Name, Grid: &g, Disabled: g.Disabled}, nil
	}

	if p, ok := layout.Parse(spec); ok {
		return ResolvedLayout{Name: p.DisplayName(), Preset: p}, nil
	}

	return ResolvedLayout{}, fmt.Errorf("unrecognized layout %q", spec)
}

func uniformWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}
	return w
}

func normalize(weights []float64) []float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return weights
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / sum
	}
	return out
}
