package species

import "time"

// Summary aggregates results across a run.
type Summary struct {
	RunID          string
	Species        int
	Retained       int
	Dropped        int
	Failed         int
	InitialPoints  int
	RetainedPoints int
	Removed        Removals
	DroppedAt      map[Stage]int
	Duration       time.Duration
}

// NewSummary creates an empty summary for a run.
func NewSummary(runID string) Summary {
	return Summary{RunID: runID, DroppedAt: make(map[Stage]int)}
}

// Add folds one species result into the summary.
func (s *Summary) Add(r Result) {
	s.Species++
	switch r.Status() {
	case StatusRetained:
		s.Retained++
		s.RetainedPoints += r.Retained()
	case StatusDropped:
		s.Dropped++
		if s.DroppedAt == nil {
			s.DroppedAt = make(map[Stage]int)
		}
		s.DroppedAt[r.Stage()]++
	case StatusFailed:
		s.Failed++
		return
	}
	s.InitialPoints += r.Initial()
	s.Removed.Add(r.Removed())
}
