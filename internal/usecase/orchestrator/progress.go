package orchestrator

import (
	"sync/atomic"
	"time"
)

// ProgressSnapshot is a point-in-time view of a run.
type ProgressSnapshot struct {
	RunID     string    `json:"run_id"`
	Total     int64     `json:"total"`
	Processed int64     `json:"processed"`
	Retained  int64     `json:"retained"`
	Dropped   int64     `json:"dropped"`
	Failed    int64     `json:"failed"`
	StartedAt time.Time `json:"started_at"`
	Running   bool      `json:"running"`
}

// Percent returns processed/total in percent, 0 when total is unknown.
func (p ProgressSnapshot) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return 100 * float64(p.Processed) / float64(p.Total)
}

type progress struct {
	runID     atomic.Value // string
	total     atomic.Int64
	processed atomic.Int64
	retained  atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
	started   atomic.Int64 // unix nanos
	running   atomic.Bool
}

func (p *progress) begin(runID string, total int) {
	p.runID.Store(runID)
	p.total.Store(int64(total))
	p.processed.Store(0)
	p.retained.Store(0)
	p.dropped.Store(0)
	p.failed.Store(0)
	p.started.Store(time.Now().UnixNano())
	p.running.Store(true)
}

func (p *progress) snapshot() ProgressSnapshot {
	s := ProgressSnapshot{
		Total:     p.total.Load(),
		Processed: p.processed.Load(),
		Retained:  p.retained.Load(),
		Dropped:   p.dropped.Load(),
		Failed:    p.failed.Load(),
		Running:   p.running.Load(),
	}
	if id, ok := p.runID.Load().(string); ok {
		s.RunID = id
	}
	if ns := p.started.Load(); ns != 0 {
		s.StartedAt = time.Unix(0, ns)
	}
	return s
}
