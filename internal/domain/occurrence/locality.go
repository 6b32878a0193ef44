package occurrence

import "fmt"

// Locality identifies a region of a hierarchical geographic scheme (WGSRPD).
type Locality struct {
	Level     int
	Code      string
	FeatureID string
}

// String renders the locality as "level:code".
func (l Locality) String() string {
	return fmt.Sprintf("%d:%s", l.Level, l.Code)
}
