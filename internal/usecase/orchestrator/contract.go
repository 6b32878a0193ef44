package orchestrator

import (
	"context"

	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
	"github.com/kailas-cloud/occfilter/internal/domain/species"
)

// Processor runs the filter pipeline for one species. It must be safe for
// concurrent use.
type Processor interface {
	Process(ctx context.Context, name string) species.Result
}

// RowWriter receives the retained points of each kept species, in
// submission order.
type RowWriter interface {
	WritePoints(points []domocc.Point) error
}

// ResultWriter receives every species result, in submission order.
type ResultWriter interface {
	WriteResult(r species.Result) error
}
