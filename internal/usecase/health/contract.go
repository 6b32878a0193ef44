package health

import "context"

// CachePinger checks range-map cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// LayerChecker checks that the range-map reference layers are readable.
type LayerChecker interface {
	Check(ctx context.Context) error
}
