package pipeline

import (
	"context"

	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
)

// PointSource loads the occurrence points of one data source for a species.
type PointSource interface {
	Name() string
	Load(ctx context.Context, species string) ([]domocc.Point, error)
}

// DistributionReader lists the native localities of a species.
// Returns domain.ErrNotFound when the species has no distribution data.
type DistributionReader interface {
	Localities(ctx context.Context, species string) ([]domocc.Locality, error)
}

// GeometryResolver resolves a locality to WKT polygons.
type GeometryResolver interface {
	Geometries(ctx context.Context, loc domocc.Locality) ([]string, error)
}
