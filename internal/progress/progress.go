package progress

import (
	"fmt"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Tracker tracks progress for a single phase.
type Tracker interface {
	SetStage(stage string)
	SetProgress(current, total int64)
	Done()
}

// Manager creates trackers for pipeline phases.
type Manager interface {
	NewTracker(name string, total int64) Tracker
	Wait()
}

// New returns the manager for mode: "bar", "log" or "none".
func New(mode string) (Manager, error) {
	switch mode {
	case "bar":
		return NewMPBManager(), nil
	case "log":
		return NewLogManager(), nil
	case "none", "":
		return NoopManager{}, nil
	default:
		return nil, fmt.Errorf("unknown progress mode %q", mode)
	}
}

// MPBManager implements Manager using the mpb multi-progress-bar library.
type MPBManager struct {
	container *mpb.Progress
}

// NewMPBManager creates a new mpb-based progress manager.
func NewMPBManager() *MPBManager {
	return &MPBManager{container: mpb.New(mpb.WithWidth(60))}
}

// NewTracker adds a bar sized to total rows.
func (m *MPBManager) NewTracker(name string, total int64) Tracker {
	stageVal := &atomic.Value{}
	stageVal.Store("")
	bar := m.container.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name+" ", decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.Any(func(s decor.Statistics) string {
				return " " + stageVal.Load().(string)
			}),
		),
	)
	return &mpbTracker{bar: bar, stagePtr: stageVal}
}

// Wait waits for all progress bars to finish.
func (m *MPBManager) Wait() {
	m.container.Wait()
}

type mpbTracker struct {
	bar      *mpb.Bar
	stagePtr *atomic.Value
}

func (t *mpbTracker) SetStage(stage string) {
	t.stagePtr.Store(stage)
}

func (t *mpbTracker) SetProgress(current, total int64) {
	if total > 0 {
		t.bar.SetTotal(total, false)
	}
	t.bar.SetCurrent(current)
}

func (t *mpbTracker) Done() {
	t.bar.SetTotal(-1, true)
}

// NoopManager is a no-op progress manager for non-interactive use.
type NoopManager struct{}

func (NoopManager) NewTracker(name string, total int64) Tracker { return noopTracker{} }
func (NoopManager) Wait()                                       {}

type noopTracker struct{}

func (noopTracker) SetStage(stage string)            {}
func (noopTracker) SetProgress(current, total int64) {}
func (noopTracker) Done()                            {}
