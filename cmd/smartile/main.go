package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smartile/smartile/internal/activity"
	"github.com/smartile/smartile/internal/arrange"
	"github.com/smartile/smartile/internal/config"
	"github.com/smartile/smartile/internal/daemon"
	"github.com/smartile/smartile/internal/ipc"
	"github.com/smartile/smartile/internal/mcp"
	"github.com/smartile/smartile/internal/platform"
	"github.com/smartile/smartile/internal/runtimepath"
	"github.com/smartile/smartile/internal/winscan"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "arrange":
		os.Exit(runArrange(os.Args[2:]))
	case "layouts":
		os.Exit(runLayouts(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "activity":
		os.Exit(runActivity(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: smartile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the smartile daemon (foreground)")
	fmt.Fprintln(w, "  arrange             Arrange windows into a layout")
	fmt.Fprintln(w, "  layouts             List available layouts")
	fmt.Fprintln(w, "  monitors            List connected monitors")
	fmt.Fprintln(w, "  windows             List open application windows")
	fmt.Fprintln(w, "  windows focus       Focus a window by ID or process name")
	fmt.Fprintln(w, "  windows minimize    Minimize a window by ID or process name")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  activity top        Show the usage ranking")
	fmt.Fprintln(w, "  activity session    Show usage since the daemon started")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "  config path         Print configuration file location")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'smartile <command> -h' for command options.")
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func configPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return config.DefaultPath()
}

func dialDaemon() (*ipc.Client, bool) {
	path, err := runtimepath.SocketPath()
	if err != nil {
		return nil, false
	}
	client := ipc.NewClient(path)
	return client, client.Available()
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	cfgFlag := fs.String("config", "", "Path to config file")
	debug := fs.Bool("debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := newLogger(*debug)
	slog.SetDefault(logger)

	cfgPath, err := configPath(*cfgFlag)
	if err != nil {
		logger.Error("cannot resolve config path", "error", err)
		return 1
	}

	d, err := daemon.New(cfgPath, logger)
	if err != nil {
		logger.Error("daemon startup failed", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

func runArrange(args []string) int {
	fs := flag.NewFlagSet("arrange", flag.ContinueOnError)
	layoutFlag := fs.String("layout", "", "Layout spec (default: configured default)")
	target := fs.String("target", "", "terminals, all, or comma-separated process names")
	monitor := fs.String("monitor", "", "primary or a monitor index")
	gap := fs.Int("gap", -1, "Pixel gap between slots")
	cfgFlag := fs.String("config", "", "Path to config file")
	direct := fs.Bool("direct", false, "Bypass the daemon and talk to X directly")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var gapPtr *int
	if *gap >= 0 {
		gapPtr = gap
	}
	req := ipc.ArrangeRequest{
		Layout:  *layoutFlag,
		Target:  *target,
		Monitor: *monitor,
		Gap:     gapPtr,
	}

	if !*direct {
		if client, ok := dialDaemon(); ok {
			var res ipc.ArrangeResult
			if err := client.Call(ipc.CmdArrange, req, &res); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
			printArrangeResult(res)
			if len(res.Errors) > 0 {
				return 1
			}
			return 0
		}
	}

	res, err := arrangeDirect(*cfgFlag, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	printArrangeResult(res)
	if len(res.Errors) > 0 {
		return 1
	}
	return 0
}

// arrangeDirect runs a one-shot arrangement without a daemon, scoring from
// the persisted usage database.
func arrangeDirect(cfgFlag string, req ipc.ArrangeRequest) (ipc.ArrangeResult, error) {
	cfgPath, err := configPath(cfgFlag)
	if err != nil {
		return ipc.ArrangeResult{}, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return ipc.ArrangeResult{}, err
	}

	layoutSpec := req.Layout
	if layoutSpec == "" {
		layoutSpec = cfg.Defaults.Layout
	}
	resolved, err := cfg.ResolveLayout(layoutSpec)
	if err != nil {
		return ipc.ArrangeResult{}, err
	}

	targetSpec := req.Target
	if targetSpec == "" {
		targetSpec = cfg.Defaults.Target
	}
	filter, err := winscan.ParseTargetFilter(targetSpec)
	if err != nil {
		return ipc.ArrangeResult{}, err
	}

	monitor := req.Monitor
	if monitor == "" {
		monitor = cfg.Defaults.Monitor
	}
	gap := cfg.Defaults.Gap
	if req.Gap != nil {
		gap = *req.Gap
	}

	backend, err := platform.NewX11Backend()
	if err != nil {
		return ipc.ArrangeResult{}, err
	}
	defer backend.Close()

	logger := slog.Default()
	var score func(string) float64
	if cfg.Defaults.SmartSort {
		storePath, err := activity.DefaultStorePath()
		if err == nil {
			store := activity.OpenStore(storePath, logger)
			now := time.Now()
			score = func(p string) float64 {
				rec, _ := store.Record(p)
				return activity.Score(rec, now)
			}
		}
	}

	res, err := arrange.New(backend, logger).Arrange(arrange.Options{
		Layout:    resolved,
		Gap:       gap,
		Monitor:   monitor,
		Filter:    filter,
		Excluded:  cfg.Exclude,
		Pins:      cfg.Pins,
		SmartSort: cfg.Defaults.SmartSort && score != nil,
		Score:     score,
	})
	if err != nil {
		return ipc.ArrangeResult{}, err
	}

	return ipc.ArrangeResult{
		Layout:   res.Layout,
		Display:  res.Display.Name,
		Arranged: res.Arranged,
		Skipped:  res.Skipped,
		Errors:   res.Errors,
	}, nil
}

func printArrangeResult(res ipc.ArrangeResult) {
	fmt.Printf("Arranged %d window(s) into %s on %s", res.Arranged, res.Layout, res.Display)
	if res.Skipped > 0 {
		fmt.Printf(", %d skipped", res.Skipped)
	}
	fmt.Println()
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "  failed: %s\n", e)
	}
}

func runLayouts(args []string) int {
	fs := flag.NewFlagSet("layouts", flag.ContinueOnError)
	cfgFlag := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var infos []ipc.LayoutInfo
	if client, ok := dialDaemon(); ok {
		if err := client.Call(ipc.CmdListLayouts, nil, &infos); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		cfgPath, err := configPath(*cfgFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		cfg, err := config.Load(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		infos = daemon.ListLayouts(cfg)
	}

	fmt.Printf("%-18s %-8s %-7s %s\n", "NAME", "SOURCE", "SLOTS", "DETAILS")
	for _, info := range infos {
		fmt.Printf("%-18s %-8s %-7d %s\n", info.Name, info.Source, info.Slots, info.Details)
	}
	return 0
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var displays []platform.Display
	if client, ok := dialDaemon(); ok {
		var data ipc.MonitorsData
		if err := client.Call(ipc.CmdGetMonitors, nil, &data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		displays = data.Monitors
	} else {
		backend, err := platform.NewX11Backend()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer backend.Close()
		displays, err = backend.Displays()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	for _, d := range displays {
		marker := " "
		if d.Primary {
			marker = "*"
		}
		fmt.Printf("%s %d  %-12s %dx%d+%d+%d  usable %dx%d+%d+%d\n",
			marker, d.ID, d.Name,
			d.Bounds.Width, d.Bounds.Height, d.Bounds.X, d.Bounds.Y,
			d.Usable.Width, d.Usable.Height, d.Usable.X, d.Usable.Y)
	}
	return 0
}

func runWindows(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "focus":
			return runWindowAction(ipc.CmdFocus, args[1:])
		case "minimize":
			return runWindowAction(ipc.CmdMinimize, args[1:])
		}
	}

	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	client, ok := dialDaemon()
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: daemon is not running; start it with `smartile daemon`")
		return 1
	}

	var infos []ipc.WindowInfo
	if err := client.Call(ipc.CmdGetWindows, nil, &infos); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("%-10s %-16s %-10s %-20s %s\n", "ID", "PROCESS", "CATEGORY", "GEOMETRY", "TITLE")
	for _, w := range infos {
		geo := fmt.Sprintf("%dx%d+%d+%d", w.Width, w.Height, w.X, w.Y)
		title := w.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Printf("0x%-8x %-16s %-10s %-20s %s\n", w.ID, w.Process, w.Category, geo, title)
	}
	return 0
}

// runWindowAction focuses or minimizes one window, addressed by X window
// ID (decimal or 0x-hex) or by process name.
func runWindowAction(command string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: smartile windows focus|minimize <window-id|process>")
		return 2
	}

	target := ipc.WindowTarget{}
	if id, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32); err == nil && strings.HasPrefix(args[0], "0x") {
		target.ID = uint32(id)
	} else if id, err := strconv.ParseUint(args[0], 10, 32); err == nil {
		target.ID = uint32(id)
	} else {
		target.Process = args[0]
	}

	client, ok := dialDaemon()
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: daemon is not running; start it with `smartile daemon`")
		return 1
	}
	if err := client.Call(command, target, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runActivity(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: smartile activity <top|session>")
		return 2
	}

	switch args[0] {
	case "top":
		return runActivityTop(args[1:])
	case "session":
		return runActivitySession(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown activity command: %s\n", args[0])
		return 2
	}
}

func runActivityTop(args []string) int {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	limit := fs.Int("n", 10, "Number of applications to show")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var infos []ipc.AppUsageInfo
	if client, ok := dialDaemon(); ok {
		if err := client.Call(ipc.CmdTopApps, ipc.TopAppsRequest{Limit: *limit}, &infos); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		// No daemon; rank from the persisted database.
		storePath, err := activity.DefaultStorePath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		store := activity.OpenStore(storePath, slog.Default())
		for _, u := range store.TopApps(time.Now(), *limit) {
			infos = append(infos, ipc.AppUsageInfo{
				App:          u.App,
				Category:     u.Record.Category,
				Score:        u.Score,
				FocusSeconds: u.Record.FocusSeconds,
				Switches:     u.Record.Switches,
				LastFocusTS:  u.Record.LastFocusTS,
			})
		}
	}

	fmt.Printf("%-20s %-10s %8s %10s %9s\n", "APP", "CATEGORY", "SCORE", "FOCUS", "SWITCHES")
	for _, u := range infos {
		fmt.Printf("%-20s %-10s %8.1f %10s %9d\n",
			u.App, u.Category, u.Score, formatDuration(u.FocusSeconds), u.Switches)
	}
	return 0
}

func runActivitySession(args []string) int {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	client, ok := dialDaemon()
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: daemon is not running; start it with `smartile daemon`")
		return 1
	}

	var sess ipc.SessionData
	if err := client.Call(ipc.CmdSession, nil, &sess); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	started := time.Unix(sess.StartedTS, 0)
	fmt.Printf("Session started %s (%s ago), %d focus switches\n",
		started.Format("15:04:05"), time.Since(started).Round(time.Second), sess.Switches)

	type appFocus struct {
		app     string
		seconds float64
	}
	apps := make([]appFocus, 0, len(sess.Focus))
	for app, secs := range sess.Focus {
		apps = append(apps, appFocus{app, secs})
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].seconds > apps[j].seconds })

	for _, a := range apps {
		fmt.Printf("  %-20s %s\n", a.app, formatDuration(a.seconds))
	}
	return 0
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	client, ok := dialDaemon()
	if !ok {
		fmt.Println("Daemon: not running")
		return 1
	}

	var status ipc.StatusData
	if err := client.Call(ipc.CmdGetStatus, nil, &status); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Daemon: running (pid %d, version %s)\n", status.PID, status.Version)
	fmt.Printf("Uptime: %s\n", (time.Duration(status.UptimeSeconds) * time.Second).String())
	fmt.Printf("Tracked apps: %d\n", status.TrackedApps)
	fmt.Printf("Config: %s\n", status.ConfigPath)
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: smartile config <validate|print|path>")
		return 2
	}

	sub := args[0]
	fs := flag.NewFlagSet("config "+sub, flag.ContinueOnError)
	cfgFlag := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	cfgPath, err := configPath(*cfgFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	switch sub {
	case "path":
		fmt.Println(cfgPath)
		return 0

	case "validate":
		if _, err := config.Load(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid: %v\n", err)
			return 1
		}
		fmt.Println("OK")
		return 0

	case "print":
		cfg, err := config.Load(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		os.Stdout.Write(out)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", sub)
		return 2
	}
}

func runMCP(args []string) int {
	if len(args) == 0 || args[0] != "serve" {
		fmt.Fprintln(os.Stderr, "Usage: smartile mcp serve")
		return 2
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(ipc.NewClient(socketPath))
	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
