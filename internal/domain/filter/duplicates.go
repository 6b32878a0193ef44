package filter

import (
	"sync"

	"github.com/kailas-cloud/occfilter/internal/domain/occurrence"
)

// Duplicates keeps the first point seen at each exact coordinate. It is
// stateful and not safe for concurrent use; create one per species.
type Duplicates struct {
	seen map[occurrence.Key]struct{}
}

// NewDuplicates creates an empty duplicate filter.
func NewDuplicates() *Duplicates {
	return &Duplicates{seen: make(map[occurrence.Key]struct{})}
}

// Name returns "duplicates".
func (d *Duplicates) Name() string { return "duplicates" }

// Valid records p and reports whether its coordinates were unseen.
func (d *Duplicates) Valid(p occurrence.Point) bool {
	k := p.Key()
	if _, ok := d.seen[k]; ok {
		return false
	}
	d.seen[k] = struct{}{}
	return true
}

// Len returns the number of distinct coordinates seen.
func (d *Duplicates) Len() int { return len(d.seen) }

// SharedDuplicates is a Duplicates safe for use across species tasks.
type SharedDuplicates struct {
	mu sync.Mutex
	d  *Duplicates
}

// NewSharedDuplicates creates a run-wide duplicate filter.
func NewSharedDuplicates() *SharedDuplicates {
	return &SharedDuplicates{d: NewDuplicates()}
}

// Name returns "duplicates".
func (s *SharedDuplicates) Name() string { return "duplicates" }

// Valid records p and reports whether its coordinates were unseen by any task.
func (s *SharedDuplicates) Valid(p occurrence.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Valid(p)
}

// Len returns the number of distinct coordinates seen.
func (s *SharedDuplicates) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Len()
}
