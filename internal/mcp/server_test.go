package mcp

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/smartile/smartile/internal/ipc"
)

func startFakeDaemon(t *testing.T, handler ipc.Handler) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ctl.sock")

	srv := ipc.NewServer(path, handler, slog.Default())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Close)

	return NewServer(ipc.NewClient(path))
}

func TestArrangeWindowsForwardsToDaemon(t *testing.T) {
	s := startFakeDaemon(t, func(req ipc.Request) ipc.Response {
		if req.Command != ipc.CmdArrange {
			return ipc.Fail("unexpected command " + req.Command)
		}
		return ipc.OK(ipc.ArrangeResult{Layout: "2x2 Grid", Display: "DP-1", Arranged: 4, Skipped: 1})
	})

	_, out, err := s.handleArrangeWindows(context.Background(), nil, ArrangeWindowsInput{Layout: "2x2"})
	if err != nil {
		t.Fatalf("arrange_windows: %v", err)
	}
	if out.Arranged != 4 || out.Skipped != 1 || out.Display != "DP-1" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestTopAppsForwardsLimit(t *testing.T) {
	s := startFakeDaemon(t, func(req ipc.Request) ipc.Response {
		return ipc.OK([]ipc.AppUsageInfo{
			{App: "firefox", Category: "browser", Score: 61.5, FocusSeconds: 3600, Switches: 40},
		})
	})

	_, out, err := s.handleTopApps(context.Background(), nil, TopAppsInput{Limit: 1})
	if err != nil {
		t.Fatalf("top_apps: %v", err)
	}
	if len(out.Apps) != 1 || out.Apps[0].App != "firefox" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestToolsFailWithoutDaemon(t *testing.T) {
	s := NewServer(ipc.NewClient(filepath.Join(t.TempDir(), "nothing.sock")))

	if _, _, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{}); err == nil {
		t.Fatal("expected error when daemon is unreachable")
	}
}
