// Package distribution reads POWO native-distribution documents.
package distribution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/occfilter/internal/domain"
	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
	"github.com/kailas-cloud/occfilter/internal/repository/occurrence"
)

// Repo reads <baseDir>/<Genus>/<Species><suffix> POWO JSON files.
type Repo struct {
	baseDir string
	suffix  string
}

// New creates a distribution repository.
func New(baseDir, suffix string) *Repo {
	return &Repo{baseDir: baseDir, suffix: suffix}
}

type powoDocument struct {
	Distribution *struct {
		Natives []powoRegion `json:"natives"`
	} `json:"distribution"`
}

type powoRegion struct {
	TDWGLevel     json.RawMessage `json:"tdwgLevel"`
	TDWGCode      string          `json:"tdwgCode"`
	FeatureID     json.RawMessage `json:"featureId"`
	Establishment string          `json:"establishment"`
	Name          string          `json:"name"`
}

// Localities returns the native regions of a species. Returns
// domain.ErrNotFound when the species has no document or the document
// lists no native distribution.
func (r *Repo) Localities(_ context.Context, species string) ([]domocc.Locality, error) {
	path := occurrence.SpeciesFilename(r.baseDir, species, r.suffix)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("distribution for %q: %w", species, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseDocument(data, species)
}

func parseDocument(data []byte, species string) ([]domocc.Locality, error) {
	var doc powoDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode distribution for %q: %w", species, err)
	}
	if doc.Distribution == nil || len(doc.Distribution.Natives) == 0 {
		return nil, fmt.Errorf("native distribution for %q: %w", species, domain.ErrNotFound)
	}

	locs := make([]domocc.Locality, 0, len(doc.Distribution.Natives))
	for i, n := range doc.Distribution.Natives {
		level, err := strconv.Atoi(unquote(n.TDWGLevel))
		if err != nil {
			return nil, fmt.Errorf("natives[%d].tdwgLevel %s: %w", i, n.TDWGLevel, err)
		}
		if n.TDWGCode == "" {
			return nil, fmt.Errorf("natives[%d].tdwgCode is empty", i)
		}
		locs = append(locs, domocc.Locality{
			Level:     level,
			Code:      n.TDWGCode,
			FeatureID: unquote(n.FeatureID),
		})
	}
	return locs, nil
}

// unquote accepts a JSON number or string and returns its text.
func unquote(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}
