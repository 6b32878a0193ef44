package species

import "github.com/kailas-cloud/occfilter/internal/domain/occurrence"

// Status is the processing outcome of a single species.
type Status string

// Species status values.
const (
	StatusRetained Status = "retained"
	StatusDropped  Status = "dropped"
	StatusFailed   Status = "failed"
)

// Result is the outcome of processing one species.
type Result struct {
	name     string
	status   Status
	stage    Stage
	initial  int
	removed  Removals
	points   []occurrence.Point
	rangeMap bool
	err      error
}

// NewRetained creates a result for a species that kept enough points.
func NewRetained(name string, initial int, removed Removals, points []occurrence.Point) Result {
	return Result{name: name, status: StatusRetained, initial: initial, removed: removed, points: points}
}

// NewDropped creates a result for a species dropped at stage.
func NewDropped(name string, initial int, removed Removals, stage Stage) Result {
	return Result{name: name, status: StatusDropped, stage: stage, initial: initial, removed: removed}
}

// NewFailed creates a result for a species whose processing errored.
func NewFailed(name string, err error) Result {
	return Result{name: name, status: StatusFailed, err: err}
}

// WithRangeMap marks whether a range-map filter was applied.
func (r Result) WithRangeMap(applied bool) Result {
	r.rangeMap = applied
	return r
}

// Name returns the species name.
func (r Result) Name() string { return r.name }

// Status returns the processing outcome.
func (r Result) Status() Status { return r.status }

// Stage returns the drop stage; StageNone unless dropped.
func (r Result) Stage() Stage { return r.stage }

// Initial returns the number of points loaded from all sources.
func (r Result) Initial() int { return r.initial }

// Removed returns per-stage removal counts.
func (r Result) Removed() Removals { return r.removed }

// Points returns the retained points.
func (r Result) Points() []occurrence.Point { return r.points }

// Retained returns the number of retained points.
func (r Result) Retained() int { return len(r.points) }

// RangeMapApplied reports whether a range-map filter was applied.
func (r Result) RangeMapApplied() bool { return r.rangeMap }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }
