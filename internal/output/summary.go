package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kailas-cloud/occfilter/internal/domain/species"
)

// SummaryJSON is the machine-readable form of a run summary.
type SummaryJSON struct {
	RunID           string         `json:"run_id"`
	Species         int            `json:"species"`
	Retained        int            `json:"retained"`
	Dropped         int            `json:"dropped"`
	Failed          int            `json:"failed"`
	InitialPoints   int            `json:"initial_points"`
	RetainedPoints  int            `json:"retained_points"`
	Removed         map[string]int `json:"removed"`
	FlagsBySource   map[string]int `json:"flags_by_source,omitempty"`
	DroppedAtStage  map[string]int `json:"dropped_at_stage"`
	DurationSeconds float64        `json:"duration_seconds"`
}

// NewSummaryJSON converts a summary into its JSON form.
func NewSummaryJSON(s species.Summary) SummaryJSON {
	out := SummaryJSON{
		RunID:           s.RunID,
		Species:         s.Species,
		Retained:        s.Retained,
		Dropped:         s.Dropped,
		Failed:          s.Failed,
		InitialPoints:   s.InitialPoints,
		RetainedPoints:  s.RetainedPoints,
		Removed:         make(map[string]int),
		FlagsBySource:   s.Removed.FlagsBySource,
		DroppedAtStage:  make(map[string]int),
		DurationSeconds: s.Duration.Seconds(),
	}
	for _, st := range species.Stages() {
		if st != species.StageInitial {
			out.Removed[st.String()] = s.Removed.Stage(st)
		}
		out.DroppedAtStage[st.String()] = s.DroppedAt[st]
	}
	return out
}

// WriteSummaryJSON writes the summary as an indented JSON document.
func WriteSummaryJSON(w io.Writer, s species.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewSummaryJSON(s)); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteSummaryText writes a human-readable summary.
func WriteSummaryText(w io.Writer, s species.Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s finished in %s\n", s.RunID, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "species: %s total, %s retained, %s dropped, %s failed\n",
		humanize.Comma(int64(s.Species)),
		humanize.Comma(int64(s.Retained)),
		humanize.Comma(int64(s.Dropped)),
		humanize.Comma(int64(s.Failed)))
	fmt.Fprintf(&b, "points: %s loaded, %s retained\n",
		humanize.Comma(int64(s.InitialPoints)),
		humanize.Comma(int64(s.RetainedPoints)))

	fmt.Fprintf(&b, "removed: %s\n", humanize.Comma(int64(s.Removed.Total())))
	for _, st := range species.Stages()[1:] {
		fmt.Fprintf(&b, "  %-11s %s\n", st.String(), humanize.Comma(int64(s.Removed.Stage(st))))
		if st == species.StageFlags {
			for _, src := range sortedKeys(s.Removed.FlagsBySource) {
				fmt.Fprintf(&b, "    %-9s %s\n", src, humanize.Comma(int64(s.Removed.FlagsBySource[src])))
			}
		}
	}

	b.WriteString("dropped at:\n")
	for _, st := range species.Stages() {
		fmt.Fprintf(&b, "  %-11s %s\n", st.String(), humanize.Comma(int64(s.DroppedAt[st])))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
