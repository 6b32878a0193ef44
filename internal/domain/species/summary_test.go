package species

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/occfilter/internal/domain/occurrence"
)

func TestSummary_Add(t *testing.T) {
	s := NewSummary("run-1")
	s.Add(NewRetained("a", 10, Removals{Flags: 2, Duplicates: 1, FlagsBySource: map[string]int{"gbif": 2}},
		make([]occurrence.Point, 7)))
	s.Add(NewDropped("b", 5, Removals{BBox: 4}, StageBBox))
	s.Add(NewDropped("c", 1, Removals{}, StageInitial))
	s.Add(NewFailed("d", errors.New("boom")))

	if s.Species != 4 || s.Retained != 1 || s.Dropped != 2 || s.Failed != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.InitialPoints != 16 || s.RetainedPoints != 7 {
		t.Fatalf("InitialPoints=%d RetainedPoints=%d", s.InitialPoints, s.RetainedPoints)
	}
	if s.Removed.Flags != 2 || s.Removed.BBox != 4 || s.Removed.Duplicates != 1 {
		t.Fatalf("unexpected removals %+v", s.Removed)
	}
	if s.DroppedAt[StageBBox] != 1 || s.DroppedAt[StageInitial] != 1 {
		t.Fatalf("unexpected drop stages %v", s.DroppedAt)
	}
	if s.RunID != "run-1" {
		t.Fatalf("RunID = %q", s.RunID)
	}
}
