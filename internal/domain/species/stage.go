package species

// Stage is a step of the filter chain a species can be dropped at.
type Stage int

// Filter chain stages in application order.
const (
	StageNone Stage = iota
	StageInitial
	StageFlags
	StageBBox
	StageDuplicates
	StageLocality
)

// Stages lists the drop stages in chain order.
func Stages() []Stage {
	return []Stage{StageInitial, StageFlags, StageBBox, StageDuplicates, StageLocality}
}

func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageInitial:
		return "initial"
	case StageFlags:
		return "flags"
	case StageBBox:
		return "bbox"
	case StageDuplicates:
		return "duplicates"
	case StageLocality:
		return "locality"
	default:
		return "unknown"
	}
}
