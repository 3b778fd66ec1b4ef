package mcp

// ArrangeWindowsInput is the input for the arrange_windows tool.
type ArrangeWindowsInput struct {
	Layout  string `json:"layout,omitempty" jsonschema:"Layout spec: a builtin preset (2x2, columns:3, main-side:2, focus:3), a named layout or a named grid from the config. Default: the configured default layout."`
	Target  string `json:"target,omitempty" jsonschema:"Which windows to arrange: terminals, all, or a comma-separated list of process names. Default: the configured default target."`
	Monitor string `json:"monitor,omitempty" jsonschema:"Monitor to arrange on: primary or a zero-based index. Default: the configured default monitor."`
	Gap     *int   `json:"gap,omitempty" jsonschema:"Pixel gap between slots. Default: the configured gap."`
}

// ArrangeWindowsOutput is the output for the arrange_windows tool.
type ArrangeWindowsOutput struct {
	Layout   string   `json:"layout"`
	Display  string   `json:"display"`
	Arranged int      `json:"arranged"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// LayoutEntry describes one available layout.
type LayoutEntry struct {
	Name    string `json:"name"`
	Slots   int    `json:"slots"`
	Source  string `json:"source"`
	Details string `json:"details,omitempty"`
}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []LayoutEntry `json:"layouts"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowEntry describes one open window.
type WindowEntry struct {
	ID        uint32 `json:"id"`
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

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowEntry `json:"windows"`
}

// TopAppsInput is the input for the top_apps tool.
type TopAppsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of applications to return (default: 10)"`
}

// TopAppEntry describes one ranked application.
type TopAppEntry struct {
	App          string  `json:"app"`
	Category     string  `json:"category"`
	Score        float64 `json:"score"`
	FocusSeconds float64 `json:"focus_seconds"`
	Switches     int     `json:"switches"`
}

// TopAppsOutput is the output for the top_apps tool.
type TopAppsOutput struct {
	Apps []TopAppEntry `json:"apps"`
}
