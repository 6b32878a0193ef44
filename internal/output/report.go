package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kailas-cloud/occfilter/internal/domain/species"
)

// Report writes one line per species with its outcome and per-stage
// removal counts. Flag removals get one column per source, in the order
// the sources were configured.
type Report struct {
	w       *bufio.Writer
	sources []string
	header  bool
}

// NewReport creates a report writer over w.
func NewReport(w io.Writer, sources []string) *Report {
	return &Report{w: bufio.NewWriter(w), sources: sources}
}

// WriteResult appends the report line for r.
func (rp *Report) WriteResult(r species.Result) error {
	if !rp.header {
		if err := rp.writeHeader(); err != nil {
			return err
		}
		rp.header = true
	}

	fields := make([]string, 0, 9+len(rp.sources))
	fields = append(fields, r.Name(), string(r.Status()))
	if r.Status() == species.StatusDropped {
		fields = append(fields, r.Stage().String())
	} else {
		fields = append(fields, "")
	}
	removed := r.Removed()
	fields = append(fields, strconv.Itoa(r.Initial()))
	for _, src := range rp.sources {
		fields = append(fields, strconv.Itoa(removed.FlagsBySource[src]))
	}
	fields = append(fields,
		strconv.Itoa(removed.BBox),
		strconv.Itoa(removed.Duplicates),
		strconv.Itoa(removed.Locality),
		strconv.Itoa(r.Retained()),
		strconv.FormatBool(r.RangeMapApplied()),
	)
	if err := r.Err(); err != nil {
		fields = append(fields, strconv.Quote(err.Error()))
	} else {
		fields = append(fields, "")
	}

	if _, err := rp.w.WriteString(strings.Join(fields, ", ") + "\n"); err != nil {
		return fmt.Errorf("write report line: %w", err)
	}
	return nil
}

func (rp *Report) writeHeader() error {
	cols := []string{"species", "status", "stage", "initial"}
	for _, src := range rp.sources {
		cols = append(cols, src+"_flags")
	}
	cols = append(cols, "bbox", "duplicates", "locality", "retained", "range_map", "error")
	if _, err := rp.w.WriteString(strings.Join(cols, ", ") + "\n"); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	return nil
}

// Flush flushes buffered lines to the underlying writer.
func (rp *Report) Flush() error {
	if err := rp.w.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
