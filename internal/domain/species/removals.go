package species

// Removals counts points removed by each filter stage.
type Removals struct {
	Flags      int
	BBox       int
	Duplicates int
	Locality   int
	// FlagsBySource splits Flags by the data source whose deny-list matched.
	FlagsBySource map[string]int
}

// Total returns the number of points removed across all stages.
func (r Removals) Total() int {
	return r.Flags + r.BBox + r.Duplicates + r.Locality
}

// Stage returns the count removed by a single stage.
func (r Removals) Stage(s Stage) int {
	switch s {
	case StageFlags:
		return r.Flags
	case StageBBox:
		return r.BBox
	case StageDuplicates:
		return r.Duplicates
	case StageLocality:
		return r.Locality
	default:
		return 0
	}
}

// Add accumulates o into r.
func (r *Removals) Add(o Removals) {
	r.Flags += o.Flags
	r.BBox += o.BBox
	r.Duplicates += o.Duplicates
	r.Locality += o.Locality
	if len(o.FlagsBySource) == 0 {
		return
	}
	if r.FlagsBySource == nil {
		r.FlagsBySource = make(map[string]int, len(o.FlagsBySource))
	}
	for src, n := range o.FlagsBySource {
		r.FlagsBySource[src] += n
	}
}

// Attribute returns the first stage at which the running point count falls
// below minPoints, or StageNone if the species survives every stage.
func Attribute(initial, minPoints int, r Removals) Stage {
	remaining := initial
	if remaining < minPoints {
		return StageInitial
	}
	for _, s := range Stages()[1:] {
		remaining -= r.Stage(s)
		if remaining < minPoints {
			return s
		}
	}
	return StageNone
}
