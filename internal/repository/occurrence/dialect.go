package occurrence

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/occfilter/internal/domain"
	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
)

// Dialect parses one line of a per-species delimited occurrence file.
// Lines are "species, x, y, flags" with flags a JSON string list.
type Dialect interface {
	Name() string
	ParseLine(line string) (domocc.Point, error)
}

// DialectFor returns the dialect registered for a source name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "gbif":
		return gbifDialect{}, nil
	case "idigbio":
		return idigbioDialect{}, nil
	default:
		return nil, fmt.Errorf("dialect %q: %w", name, domain.ErrUnknownSource)
	}
}

// gbifDialect writes its issue list with ';' between elements.
type gbifDialect struct{}

func (gbifDialect) Name() string { return "gbif" }

func (gbifDialect) ParseLine(line string) (domocc.Point, error) {
	return parseLine(line, func(raw string) string {
		return strings.ReplaceAll(strings.ReplaceAll(raw, ",", ""), ";", ",")
	})
}

type idigbioDialect struct{}

func (idigbioDialect) Name() string { return "idigbio" }

func (idigbioDialect) ParseLine(line string) (domocc.Point, error) {
	return parseLine(line, nil)
}

func parseLine(line string, normalizeFlags func(string) string) (domocc.Point, error) {
	fields := strings.SplitN(strings.TrimSpace(line), ", ", 4)
	if len(fields) < 4 {
		return domocc.Point{}, fmt.Errorf("want 4 fields, got %d", len(fields))
	}
	species := strings.TrimSpace(fields[0])
	if species == "" {
		return domocc.Point{}, fmt.Errorf("empty species")
	}
	x, err := parseCoord(fields[1])
	if err != nil {
		return domocc.Point{}, fmt.Errorf("x: %w", err)
	}
	y, err := parseCoord(fields[2])
	if err != nil {
		return domocc.Point{}, fmt.Errorf("y: %w", err)
	}
	raw := fields[3]
	if normalizeFlags != nil {
		raw = normalizeFlags(raw)
	}
	var flags []string
	if err := json.Unmarshal([]byte(raw), &flags); err != nil {
		return domocc.Point{}, fmt.Errorf("flags: %w", err)
	}
	return domocc.NewPoint(species, x, y, flags), nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite coordinate %q", s)
	}
	return v, nil
}
