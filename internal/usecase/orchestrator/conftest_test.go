package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
	"github.com/kailas-cloud/occfilter/internal/domain/species"
)

// --- Mock Processor ---

type mockProcessor struct {
	fn    func(ctx context.Context, name string) species.Result
	calls atomic.Int64
}

func (m *mockProcessor) Process(ctx context.Context, name string) species.Result {
	m.calls.Add(1)
	return m.fn(ctx, name)
}

// --- Mock RowWriter ---

type rowsSink struct {
	mu    sync.Mutex
	names []string
	rows  int
	err   error
	// failAfter makes the n-th write (1-based) fail.
	failAfter int
}

func (s *rowsSink) WritePoints(points []domocc.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter > 0 && len(s.names)+1 == s.failAfter {
		s.err = errors.New("disk full")
		return s.err
	}
	var name string
	if len(points) > 0 {
		name = points[0].Species()
	}
	s.names = append(s.names, name)
	s.rows += len(points)
	return nil
}

// --- Mock ResultWriter ---

type resultsSink struct {
	results []species.Result
}

func (s *resultsSink) WriteResult(r species.Result) error {
	s.results = append(s.results, r)
	return nil
}

func pointsFor(name string, n int) []domocc.Point {
	pts := make([]domocc.Point, n)
	for i := range pts {
		pts[i] = domocc.NewPoint(name, float64(i), float64(i), nil)
	}
	return pts
}
