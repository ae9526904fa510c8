package progress

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogManager implements Manager with throttled log lines for non-TTY
// environments such as CI or batch schedulers.
type LogManager struct {
	log      zerolog.Logger
	interval time.Duration
}

// NewLogManager creates a log-based progress manager writing to stderr.
func NewLogManager() *LogManager {
	return &LogManager{
		log:      zerolog.New(os.Stderr).With().Timestamp().Str("component", "progress").Logger(),
		interval: 20 * time.Second,
	}
}

func (m *LogManager) NewTracker(name string, total int64) Tracker {
	return &logTracker{mgr: m, name: name, total: total, start: time.Now()}
}

func (m *LogManager) Wait() {}

type logTracker struct {
	mu      sync.Mutex
	mgr     *LogManager
	name    string
	stage   string
	total   int64
	start   time.Time
	lastLog time.Time
}

func (t *logTracker) SetStage(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stage = stage
	t.lastLog = time.Time{}
	t.mgr.log.Info().Str("phase", t.name).Str("stage", stage).Msg("progress")
}

func (t *logTracker) SetProgress(current, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if now.Sub(t.lastLog) < t.mgr.interval {
		return
	}
	t.lastLog = now
	if total > 0 {
		t.total = total
	}
	ev := t.mgr.log.Info().Str("phase", t.name).Str("stage", t.stage).Int64("current", current)
	if t.total > 0 {
		ev = ev.Int64("total", t.total).Float64("pct", float64(current)/float64(t.total)*100)
	}
	ev.Msg("progress")
}

func (t *logTracker) Done() {
	t.mgr.log.Info().
		Str("phase", t.name).
		Str("elapsed", time.Since(t.start).Truncate(time.Second).String()).
		Msg("finished")
}
