package activity

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	pollInterval       = time.Second
	saveInterval       = 60 * time.Second
	decayCheckInterval = time.Hour
)

// Sample is one observation of the focused window.
type Sample struct {
	Window  uint32
	Process string
	Title   string
}

type focusEvent struct {
	Sample
	At time.Time
}

// SessionStats summarizes usage since the tracker started.
type SessionStats struct {
	Started  time.Time
	Focus    map[string]float64 // seconds per application
	Switches int
}

// Tracker models focus as a per-application state machine: the sampler
// goroutine polls the focused window once per second and emits an event
// only when focus moves to a different window; Update drains those events,
// closing the previous focus span into the store and opening the next.
// Applications are keyed by lowercase process name.
type Tracker struct {
	store      *Store
	sample     func() (Sample, bool)
	categorize func(process string) string
	now        func() time.Time
	logger     *slog.Logger

	events chan focusEvent

	halfLifeDays float64

	// Sampler state, touched only by the sampling goroutine (and by
	// sampleOnce in tests).
	lastWindow uint32
	hasWindow  bool

	mu           sync.Mutex
	current      Sample
	hasCurrent   bool
	currentStart time.Time

	lastSave  time.Time
	lastDecay time.Time

	sessionStart    time.Time
	sessionFocus    map[string]float64
	sessionSwitches int
}

// NewTracker builds a tracker over store. sample reports the currently
// focused application; it returns ok=false when focus cannot be determined
// (locked screen, no focused window). categorize labels a process for the
// record; nil leaves categories empty.
func NewTracker(store *Store, sample func() (Sample, bool), categorize func(string) string, halfLifeDays float64, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	if categorize == nil {
		categorize = func(string) string { return "" }
	}
	now := time.Now()
	return &Tracker{
		store:        store,
		sample:       sample,
		categorize:   categorize,
		now:          time.Now,
		logger:       logger,
		events:       make(chan focusEvent, 64),
		halfLifeDays: halfLifeDays,
		lastSave:     now,
		lastDecay:    now,
		sessionStart: now,
		sessionFocus: make(map[string]float64),
	}
}

// Start launches the sampling goroutine. It stops when ctx is cancelled.
func (t *Tracker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.sampleOnce()
			}
		}
	}()
}

// sampleOnce polls the focused window and emits an event when focus moved
// to a different window. Change detection keys on the window ID, so
// switching between two windows of the same application still counts.
func (t *Tracker) sampleOnce() {
	s, ok := t.sample()
	if !ok {
		return
	}
	if t.hasWindow && s.Window == t.lastWindow {
		return
	}
	t.lastWindow, t.hasWindow = s.Window, true

	ev := focusEvent{
		Sample: Sample{
			Window:  s.Window,
			Process: strings.ToLower(s.Process),
			Title:   s.Title,
		},
		At: t.now(),
	}
	select {
	case t.events <- ev:
	default:
		// Owner stopped draining; drop rather than block.
	}
}

// Update drains pending focus-change events into the store and runs the
// periodic save and decay checks. Call it from the daemon control loop.
func (t *Tracker) Update() {
	t.mu.Lock()
	for {
		select {
		case ev := <-t.events:
			t.handleEvent(ev)
		default:
			t.mu.Unlock()
			t.housekeep()
			return
		}
	}
}

// handleEvent closes the open focus span and opens one for the newly
// focused application. Caller holds t.mu.
func (t *Tracker) handleEvent(ev focusEvent) {
	if t.hasCurrent {
		// Floor at zero to guard against clock skew.
		elapsed := ev.At.Sub(t.currentStart).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
		t.store.AddFocus(t.current.Process, elapsed, t.current.Title,
			t.categorize(t.current.Process), ev.At)
		t.sessionFocus[t.current.Process] += elapsed
	}

	t.store.AddSwitch(ev.Process)
	t.store.AddFocus(ev.Process, 0, ev.Title, t.categorize(ev.Process), ev.At)
	t.sessionSwitches++

	t.current = ev.Sample
	t.hasCurrent = true
	t.currentStart = ev.At
}

// flushOpenSpan credits the open focus span up to now and restarts it, so
// the span stays open without double counting. Caller holds t.mu.
func (t *Tracker) flushOpenSpan(now time.Time) {
	if !t.hasCurrent {
		return
	}
	elapsed := now.Sub(t.currentStart).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	t.store.AddFocus(t.current.Process, elapsed, t.current.Title,
		t.categorize(t.current.Process), now)
	t.sessionFocus[t.current.Process] += elapsed
	t.currentStart = now
}

func (t *Tracker) housekeep() {
	now := t.now()

	t.mu.Lock()
	doSave := now.Sub(t.lastSave) >= saveInterval
	if doSave {
		// Flush the open span first so a crash between saves loses at
		// most one save interval of focus time.
		t.flushOpenSpan(now)
		t.lastSave = now
	}
	doDecay := now.Sub(t.lastDecay) >= decayCheckInterval
	if doDecay {
		t.lastDecay = now
	}
	t.mu.Unlock()

	if doSave {
		t.store.Save()
	}
	if doDecay {
		if t.store.ApplyDecay(now, t.halfLifeDays) {
			t.logger.Debug("applied usage decay", "half_life_days", t.halfLifeDays)
		}
	}
}

// ScoreApp returns the current relevance score for a process name,
// including the still-open focus span when that process holds focus.
func (t *Tracker) ScoreApp(process string) float64 {
	key := strings.ToLower(process)
	now := t.now()

	rec, _ := t.store.Record(key)

	t.mu.Lock()
	if t.hasCurrent && t.current.Process == key {
		open := now.Sub(t.currentStart).Seconds()
		if open > 0 {
			rec.FocusSeconds += open
		}
		rec.LastFocusTS = now.Unix()
	}
	t.mu.Unlock()

	return Score(rec, now)
}

// TopApps returns the n highest-scoring applications.
func (t *Tracker) TopApps(n int) []AppUsage {
	return t.store.TopApps(t.now(), n)
}

// Session returns a copy of this session's statistics, including the
// still-open focus span.
func (t *Tracker) Session() SessionStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	focus := make(map[string]float64, len(t.sessionFocus))
	for k, v := range t.sessionFocus {
		focus[k] = v
	}
	if t.hasCurrent {
		if open := t.now().Sub(t.currentStart).Seconds(); open > 0 {
			focus[t.current.Process] += open
		}
	}
	return SessionStats{
		Started:  t.sessionStart,
		Focus:    focus,
		Switches: t.sessionSwitches,
	}
}

// Close drains pending events, flushes the open focus span and writes the
// store out. No focus time is lost on a graceful exit.
func (t *Tracker) Close() {
	t.mu.Lock()
	for {
		select {
		case ev := <-t.events:
			t.handleEvent(ev)
			continue
		default:
		}
		break
	}

	t.flushOpenSpan(t.now())
	t.hasCurrent = false
	t.mu.Unlock()

	t.store.Save()
}
