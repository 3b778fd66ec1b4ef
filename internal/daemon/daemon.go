// Package daemon runs the background service: usage tracking, the control
// socket and the global arrange hotkey.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/smartile/smartile/internal/activity"
	"github.com/smartile/smartile/internal/arrange"
	"github.com/smartile/smartile/internal/config"
	"github.com/smartile/smartile/internal/hotkeys"
	"github.com/smartile/smartile/internal/ipc"
	"github.com/smartile/smartile/internal/layout"
	"github.com/smartile/smartile/internal/platform"
	"github.com/smartile/smartile/internal/runtimepath"
	"github.com/smartile/smartile/internal/winscan"
)

// Version is stamped at build time.
var Version = "dev"

const tickInterval = time.Second

// Daemon ties the backend, tracker and control surface together.
type Daemon struct {
	logger  *slog.Logger
	backend *platform.X11Backend

	cfgMu   sync.RWMutex
	cfg     *config.Config
	cfgPath string

	store    *activity.Store
	tracker  *activity.Tracker
	arranger *arrange.Arranger
	server   *ipc.Server

	arrangeRequests chan struct{}
	started         time.Time
}

// New builds a daemon from the configuration at cfgPath.
func New(cfgPath string, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	backend, err := platform.NewX11Backend()
	if err != nil {
		return nil, err
	}

	storePath, err := activity.DefaultStorePath()
	if err != nil {
		backend.Close()
		return nil, err
	}
	store := activity.OpenStore(storePath, logger)

	d := &Daemon{
		logger:          logger,
		backend:         backend,
		cfg:             cfg,
		cfgPath:         cfgPath,
		store:           store,
		arranger:        arrange.New(backend, logger),
		arrangeRequests: make(chan struct{}, 1),
		started:         time.Now(),
	}
	d.tracker = activity.NewTracker(
		store,
		d.sampleFocus,
		func(p string) string { return string(winscan.Categorize(p)) },
		cfg.Defaults.DecayHalfLifeDays,
		logger,
	)
	return d, nil
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return err
	}

	d.server = ipc.NewServer(socketPath, d.handleRequest, d.logger)
	if err := d.server.Start(); err != nil {
		return err
	}
	defer d.server.Close()

	d.tracker.Start(ctx)

	if hotkey := d.config().Hotkey; hotkey != "" {
		if err := d.bindHotkey(hotkey); err != nil {
			// A taken grab must not kill the daemon; arrange still works
			// over the socket.
			d.logger.Warn("hotkey unavailable", "binding", hotkey, "error", err)
		}
	}
	go d.backend.Conn().EventLoop()

	d.logger.Info("daemon started", "version", Version, "pid", os.Getpid(), "socket", socketPath)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down")
			d.tracker.Close()
			d.backend.Close()
			return nil
		case <-ticker.C:
			d.tracker.Update()
		case <-d.arrangeRequests:
			d.runDefaultArrange()
		}
	}
}

func (d *Daemon) config() *config.Config {
	d.cfgMu.RLock()
	defer d.cfgMu.RUnlock()
	return d.cfg
}

// sampleFocus observes the focused window for the usage tracker.
func (d *Daemon) sampleFocus() (activity.Sample, bool) {
	id, ok := d.backend.ActiveWindow()
	if !ok {
		return activity.Sample{}, false
	}

	conn := d.backend.Conn()
	pid := conn.WindowPID(xproto.Window(id))
	proc := winscan.ProcessName(pid)
	if proc == "" {
		return activity.Sample{}, false
	}
	return activity.Sample{
		Window:  id,
		Process: proc,
		Title:   conn.WindowTitle(xproto.Window(id)),
	}, true
}

func (d *Daemon) bindHotkey(spec string) error {
	mgr := hotkeys.NewManager(d.backend.Conn(), d.logger)
	return mgr.Bind(spec, func() {
		// Runs on the X event loop; hand off to the control loop.
		select {
		case d.arrangeRequests <- struct{}{}:
		default:
		}
	})
}

func (d *Daemon) runDefaultArrange() {
	res, err := d.doArrange(ipc.ArrangeRequest{})
	if err != nil {
		d.logger.Error("hotkey arrange failed", "error", err)
		return
	}
	d.logger.Info("hotkey arrange", "arranged", res.Arranged, "skipped", res.Skipped)
}

// doArrange merges the request with configured defaults and runs a pass.
func (d *Daemon) doArrange(req ipc.ArrangeRequest) (ipc.ArrangeResult, error) {
	cfg := d.config()

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

	res, err := d.arranger.Arrange(arrange.Options{
		Layout:    resolved,
		Gap:       gap,
		Monitor:   monitor,
		Filter:    filter,
		Excluded:  cfg.Exclude,
		Pins:      cfg.Pins,
		SmartSort: cfg.Defaults.SmartSort,
		Score:     d.tracker.ScoreApp,
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

func (d *Daemon) handleRequest(req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CmdGetStatus:
		return ipc.OK(ipc.StatusData{
			Version:       Version,
			PID:           os.Getpid(),
			UptimeSeconds: int64(time.Since(d.started).Seconds()),
			TrackedApps:   len(d.store.Records()),
			ConfigPath:    d.cfgPath,
		})

	case ipc.CmdGetMonitors:
		displays, err := d.backend.Displays()
		if err != nil {
			return ipc.Fail(err.Error())
		}
		return ipc.OK(ipc.MonitorsData{Monitors: displays})

	case ipc.CmdListLayouts:
		return ipc.OK(ListLayouts(d.config()))

	case ipc.CmdGetWindows:
		windows, err := d.listWindows()
		if err != nil {
			return ipc.Fail(err.Error())
		}
		return ipc.OK(windows)

	case ipc.CmdArrange:
		var ar ipc.ArrangeRequest
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &ar); err != nil {
				return ipc.Fail("malformed arrange payload: " + err.Error())
			}
		}
		res, err := d.doArrange(ar)
		if err != nil {
			return ipc.Fail(err.Error())
		}
		return ipc.OK(res)

	case ipc.CmdTopApps:
		var tr ipc.TopAppsRequest
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &tr); err != nil {
				return ipc.Fail("malformed top payload: " + err.Error())
			}
		}
		return ipc.OK(TopApps(d.tracker, tr.Limit))

	case ipc.CmdFocus, ipc.CmdMinimize:
		var target ipc.WindowTarget
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &target); err != nil {
				return ipc.Fail("malformed window target: " + err.Error())
			}
		}
		id, err := d.resolveWindowTarget(target)
		if err != nil {
			return ipc.Fail(err.Error())
		}
		if req.Command == ipc.CmdFocus {
			err = d.backend.Focus(id)
		} else {
			err = d.backend.Minimize(id)
		}
		if err != nil {
			return ipc.Fail(err.Error())
		}
		return ipc.OK(nil)

	case ipc.CmdSession:
		sess := d.tracker.Session()
		return ipc.OK(ipc.SessionData{
			StartedTS: sess.Started.Unix(),
			Switches:  sess.Switches,
			Focus:     sess.Focus,
		})

	case ipc.CmdReload:
		if err := d.reloadConfig(); err != nil {
			return ipc.Fail(err.Error())
		}
		return ipc.OK(nil)
	}

	return ipc.Fail(fmt.Sprintf("unknown command %q", req.Command))
}

// resolveWindowTarget maps a target to a concrete window ID. A process
// name picks the first viewable window owned by that process.
func (d *Daemon) resolveWindowTarget(target ipc.WindowTarget) (uint32, error) {
	if target.ID != 0 {
		return target.ID, nil
	}
	if target.Process == "" {
		return 0, fmt.Errorf("window target requires an id or a process name")
	}

	windows, err := d.backend.Windows()
	if err != nil {
		return 0, err
	}
	for _, w := range windows {
		if !w.Viewable || w.Auxiliary {
			continue
		}
		proc := w.Process
		if proc == "" && w.PID > 0 {
			proc = winscan.ProcessName(w.PID)
		}
		if strings.EqualFold(proc, target.Process) {
			return w.ID, nil
		}
	}
	return 0, fmt.Errorf("no window found for process %q", target.Process)
}

func (d *Daemon) listWindows() ([]ipc.WindowInfo, error) {
	windows, err := d.backend.Windows()
	if err != nil {
		return nil, err
	}

	infos := make([]ipc.WindowInfo, 0, len(windows))
	for _, w := range windows {
		if !w.Viewable || w.Auxiliary {
			continue
		}
		proc := w.Process
		if proc == "" && w.PID > 0 {
			proc = winscan.ProcessName(w.PID)
		}
		infos = append(infos, ipc.WindowInfo{
			ID:        w.ID,
			PID:       w.PID,
			Process:   proc,
			Class:     w.Class,
			Title:     w.Title,
			Category:  string(winscan.Categorize(proc)),
			Minimized: w.Minimized,
			X:         w.Bounds.X,
			Y:         w.Bounds.Y,
			Width:     w.Bounds.Width,
			Height:    w.Bounds.Height,
		})
	}
	return infos, nil
}

func (d *Daemon) reloadConfig() error {
	cfg, err := config.Load(d.cfgPath)
	if err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}

	d.cfgMu.Lock()
	d.cfg = cfg
	d.cfgMu.Unlock()

	d.logger.Info("configuration reloaded", "path", d.cfgPath)
	return nil
}

// ListLayouts enumerates everything a layout spec can resolve to: the
// builtin presets plus the config's named layouts and grids.
func ListLayouts(cfg *config.Config) []ipc.LayoutInfo {
	var infos []ipc.LayoutInfo

	for _, l := range cfg.Layouts {
		if resolved, err := cfg.ResolveLayout(l.Name); err == nil {
			details := l.Style
			if l.Grid != "" {
				details = "grid " + l.Grid
			}
			infos = append(infos, ipc.LayoutInfo{
				Name:    l.Name,
				Slots:   resolved.SlotCount() - len(resolved.Disabled),
				Source:  "layout",
				Details: details,
			})
		}
	}
	for _, g := range cfg.Grids {
		infos = append(infos, ipc.LayoutInfo{
			Name:    g.Name,
			Slots:   g.Cols*g.Rows - len(g.Disabled),
			Source:  "grid",
			Details: fmt.Sprintf("%dx%d weighted", g.Cols, g.Rows),
		})
	}
	for _, p := range layout.BuiltinPresets() {
		infos = append(infos, ipc.LayoutInfo{
			Name:   p.Name,
			Slots:  p.Preset.SlotCount(),
			Source: "builtin",
		})
	}
	return infos
}

// TopApps formats the tracker's ranking for the wire.
func TopApps(tracker *activity.Tracker, limit int) []ipc.AppUsageInfo {
	if limit <= 0 {
		limit = 10
	}

	usage := tracker.TopApps(limit)
	infos := make([]ipc.AppUsageInfo, 0, len(usage))
	for _, u := range usage {
		infos = append(infos, ipc.AppUsageInfo{
			App:          u.App,
			Category:     u.Record.Category,
			Score:        u.Score,
			FocusSeconds: u.Record.FocusSeconds,
			Switches:     u.Record.Switches,
			LastFocusTS:  u.Record.LastFocusTS,
		})
	}
	return infos
}
