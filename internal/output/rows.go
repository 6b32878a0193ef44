// Package output renders run results: retained point rows, the per-species
// report and the run summary.
package output

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
)

// Rows writes retained points as "species, x, y" lines.
// Not safe for concurrent use; the orchestrator calls it from one goroutine.
type Rows struct {
	w   *bufio.Writer
	buf []byte
	n   int
}

// NewRows creates a row writer over w.
func NewRows(w io.Writer) *Rows {
	return &Rows{w: bufio.NewWriterSize(w, 64*1024)}
}

// WritePoints writes one line per point under the point's own species name.
func (r *Rows) WritePoints(points []domocc.Point) error {
	for _, p := range points {
		r.buf = append(r.buf[:0], p.Species()...)
		r.buf = append(r.buf, ", "...)
		r.buf = appendCoord(r.buf, p.X())
		r.buf = append(r.buf, ", "...)
		r.buf = appendCoord(r.buf, p.Y())
		r.buf = append(r.buf, '\n')
		if _, err := r.w.Write(r.buf); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		r.n++
	}
	return nil
}

// appendCoord formats v as the shortest round-trip decimal, always with a
// fractional part ("5.0"), switching to exponent form below 1e-4 and from 1e16.
func appendCoord(dst []byte, v float64) []byte {
	if v != 0 {
		if a := math.Abs(v); a < 1e-4 || a >= 1e16 {
			return strconv.AppendFloat(dst, v, 'e', -1, 64)
		}
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, v, 'f', -1, 64)
	if !bytes.ContainsRune(dst[start:], '.') {
		dst = append(dst, ".0"...)
	}
	return dst
}

// Count returns the number of rows written.
func (r *Rows) Count() int { return r.n }

// Flush flushes buffered rows to the underlying writer.
func (r *Rows) Flush() error {
	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	return nil
}
