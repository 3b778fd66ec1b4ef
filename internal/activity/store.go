package activity

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Record accumulates usage for one application across sessions.
type Record struct {
	FocusSeconds float64 `yaml:"focus_seconds"`
	Switches     int     `yaml:"switches"`
	LastFocusTS  int64   `yaml:"last_focus_ts"`
	Category     string  `yaml:"category"`
	LastTitle    string  `yaml:"last_title,omitempty"`
}

type database struct {
	Apps        map[string]Record `yaml:"apps"`
	LastDecayTS int64             `yaml:"last_decay_ts"`
}

// Store persists per-application usage records. All accessors are safe for
// concurrent use; the lock is never held across file I/O.
type Store struct {
	mu     sync.Mutex
	path   string
	data   database
	logger *slog.Logger
}

// DefaultStorePath returns the usage database location under the user data
// directory.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "smartile", "activity.yaml"), nil
}

// OpenStore loads the usage database at path, starting empty when the file
// does not exist. A corrupt file is logged and replaced with an empty
// database rather than aborting.
func OpenStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		logger: logger,
		data:   database{Apps: make(map[string]Record)},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("cannot read usage database, starting empty", "path", path, "error", err)
		}
		return s
	}

	var db database
	if err := yaml.Unmarshal(raw, &db); err != nil {
		logger.Warn("usage database is corrupt, starting empty", "path", path, "error", err)
		return s
	}
	if db.Apps == nil {
		db.Apps = make(map[string]Record)
	}
	s.data = db
	return s
}

// Save writes the database to disk. Failures are logged, not returned;
// usage tracking is best-effort and must never take the arranger down.
func (s *Store) Save() {
	s.mu.Lock()
	snapshot := database{
		Apps:        make(map[string]Record, len(s.data.Apps)),
		LastDecayTS: s.data.LastDecayTS,
	}
	for k, v := range s.data.Apps {
		snapshot.Apps[k] = v
	}
	path := s.path
	s.mu.Unlock()

	raw, err := yaml.Marshal(&snapshot)
	if err != nil {
		s.logger.Warn("cannot encode usage database", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.logger.Warn("cannot create data directory", "path", filepath.Dir(path), "error", err)
		return
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		s.logger.Warn("cannot write usage database", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.logger.Warn("cannot replace usage database", "path", path, "error", err)
	}
}

// AddFocus credits focused seconds to an application and stamps its last
// focus time, title and category. Zero seconds is valid and only updates
// the stamps.
func (s *Store) AddFocus(app string, seconds float64, title, category string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.data.Apps[app]
	if seconds > 0 {
		rec.FocusSeconds += seconds
	}
	rec.LastFocusTS = at.Unix()
	rec.Category = category
	if title != "" {
		rec.LastTitle = title
	}
	s.data.Apps[app] = rec
}

// AddSwitch counts a focus transition into an application.
func (s *Store) AddSwitch(app string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.data.Apps[app]
	rec.Switches++
	s.data.Apps[app] = rec
}

// Record returns a copy of one application's record.
func (s *Store) Record(app string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data.Apps[app]
	return rec, ok
}

// Records returns a copy of all records.
func (s *Store) Records() map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Record, len(s.data.Apps))
	for k, v := range s.data.Apps {
		out[k] = v
	}
	return out
}

// ApplyDecay exponentially ages all records by the time elapsed since the
// last decay, using the configured half-life. Records that decay below one
// focused second with no switches left are pruned. Returns true when a
// decay was applied.
func (s *Store) ApplyDecay(now time.Time, halfLifeDays float64) bool {
	if halfLifeDays <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.LastDecayTS == 0 {
		s.data.LastDecayTS = now.Unix()
		return false
	}

	elapsedDays := float64(now.Unix()-s.data.LastDecayTS) / 86400.0
	if elapsedDays <= 0.001 {
		return false
	}

	factor := math.Pow(0.5, elapsedDays/halfLifeDays)
	for app, rec := range s.data.Apps {
		rec.FocusSeconds *= factor
		rec.Switches = int(float64(rec.Switches) * factor)
		if rec.FocusSeconds < 1.0 && rec.Switches == 0 {
			delete(s.data.Apps, app)
			continue
		}
		s.data.Apps[app] = rec
	}
	s.data.LastDecayTS = now.Unix()
	return true
}

// Score rates how relevant an application is right now: long-term focus
// (log-compressed), switch count (sqrt-compressed), and a recency term
// that halves every four hours. An app never focused scores recency as if
// last used 999 hours ago.
func Score(rec Record, now time.Time) float64 {
	focus := rec.FocusSeconds
	if focus < 1 {
		focus = 1
	}

	recencyHours := 999.0
	if rec.LastFocusTS > 0 {
		recencyHours = float64(now.Unix()-rec.LastFocusTS) / 3600.0
		if recencyHours < 0 {
			recencyHours = 0
		}
	}

	return math.Log(focus)*10 +
		math.Sqrt(float64(rec.Switches))*5 +
		math.Pow(0.5, recencyHours/4.0)*50
}

// AppUsage pairs an application with its record and current score.
type AppUsage struct {
	App    string
	Record Record
	Score  float64
}

// TopApps returns the n highest-scoring applications, descending. Ties
// break alphabetically so output is stable. n <= 0 returns all.
func (s *Store) TopApps(now time.Time, n int) []AppUsage {
	records := s.Records()

	usage := make([]AppUsage, 0, len(records))
	for app, rec := range records {
		usage = append(usage, AppUsage{App: app, Record: rec, Score: Score(rec, now)})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Score != usage[j].Score {
			return usage[i].Score > usage[j].Score
		}
		return usage[i].App < usage[j].App
	})

	if n > 0 && len(usage) > n {
		usage = usage[:n]
	}
	return usage
}
