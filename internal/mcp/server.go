// Package mcp exposes the arranger to AI assistants over the Model
// Context Protocol. Tools are served on stdio and forwarded to the running
// daemon over its control socket.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smartile/smartile/internal/ipc"
)

const (
	ServerName    = "smartile"
	ServerVersion = "0.1.0"
)

// Server is the MCP server front-end for a running daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer builds the MCP server. The daemon must be reachable on the
// control socket; tools fail per-call otherwise.
func NewServer(client *ipc.Client) *Server {
	s := &Server{
		client: client,
		mcpServer: mcpsdk.NewServer(
			&mcpsdk.Implementation{
				Name:    ServerName,
				Version: ServerVersion,
			},
			nil,
		),
	}
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "arrange_windows",
		Description: "Arrange open windows into a tiling layout on one monitor. Pinned windows go to their configured slots; the rest fill remaining slots by usage relevance. Returns how many windows were arranged and skipped.",
	}, s.handleArrangeWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List all available layouts: builtin presets plus named layouts and weighted grids from the user's configuration, with their slot counts.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the currently open application windows with process name, title, category and geometry.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "top_apps",
		Description: "Rank applications by usage relevance: accumulated focus time, focus switches and recency, with exponential aging. Higher scores mean the app matters more right now.",
	}, s.handleTopApps)
}

func (s *Server) requireDaemon() error {
	if !s.client.Available() {
		return fmt.Errorf("daemon is not running; start it with `smartile daemon`")
	}
	return nil
}

func (s *Server) handleArrangeWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ArrangeWindowsInput) (*mcpsdk.CallToolResult, ArrangeWindowsOutput, error) {
	if err := s.requireDaemon(); err != nil {
		return nil, ArrangeWindowsOutput{}, err
	}

	var res ipc.ArrangeResult
	err := s.client.Call(ipc.CmdArrange, ipc.ArrangeRequest{
		Layout:  args.Layout,
		Target:  args.Target,
		Monitor: args.Monitor,
		Gap:     args.Gap,
	}, &res)
	if err != nil {
		return nil, ArrangeWindowsOutput{}, err
	}

	return nil, ArrangeWindowsOutput{
		Layout:   res.Layout,
		Display:  res.Display,
		Arranged: res.Arranged,
		Skipped:  res.Skipped,
		Errors:   res.Errors,
	}, nil
}

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	if err := s.requireDaemon(); err != nil {
		return nil, ListLayoutsOutput{}, err
	}

	var infos []ipc.LayoutInfo
	if err := s.client.Call(ipc.CmdListLayouts, nil, &infos); err != nil {
		return nil, ListLayoutsOutput{}, err
	}

	out := ListLayoutsOutput{Layouts: make([]LayoutEntry, 0, len(infos))}
	for _, info := range infos {
		out.Layouts = append(out.Layouts, LayoutEntry{
			Name:    info.Name,
			Slots:   info.Slots,
			Source:  info.Source,
			Details: info.Details,
		})
	}
	return nil, out, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	if err := s.requireDaemon(); err != nil {
		return nil, ListWindowsOutput{}, err
	}

	var infos []ipc.WindowInfo
	if err := s.client.Call(ipc.CmdGetWindows, nil, &infos); err != nil {
		return nil, ListWindowsOutput{}, err
	}

	out := ListWindowsOutput{Windows: make([]WindowEntry, 0, len(infos))}
	for _, w := range infos {
		out.Windows = append(out.Windows, WindowEntry{
			ID:        w.ID,
			Process:   w.Process,
			Class:     w.Class,
			Title:     w.Title,
			Category:  w.Category,
			Minimized: w.Minimized,
			X:         w.X,
			Y:         w.Y,
			Width:     w.Width,
			Height:    w.Height,
		})
	}
	return nil, out, nil
}

func (s *Server) handleTopApps(_ context.Context, _ *mcpsdk.CallToolRequest, args TopAppsInput) (*mcpsdk.CallToolResult, TopAppsOutput, error) {
	if err := s.requireDaemon(); err != nil {
		return nil, TopAppsOutput{}, err
	}

	var infos []ipc.AppUsageInfo
	if err := s.client.Call(ipc.CmdTopApps, ipc.TopAppsRequest{Limit: args.Limit}, &infos); err != nil {
		return nil, TopAppsOutput{}, err
	}

	out := TopAppsOutput{Apps: make([]TopAppEntry, 0, len(infos))}
	for _, u := range infos {
		out.Apps = append(out.Apps, TopAppEntry{
			App:          u.App,
			Category:     u.Category,
			Score:        u.Score,
			FocusSeconds: u.FocusSeconds,
			Switches:     u.Switches,
		})
	}
	return nil, out, nil
}
