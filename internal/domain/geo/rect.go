package geo

import "fmt"

// World is the full longitude/latitude plane.
var World = Rect{MinX: -180, MinY: -90, MaxX: 180, MaxY: 90}

// Rect is an axis-aligned rectangle in longitude (X) / latitude (Y) degrees.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewRect creates a rectangle, rejecting inverted or NaN bounds.
func NewRect(minX, minY, maxX, maxY float64) (Rect, error) {
	r := Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	if !(minX <= maxX) || !(minY <= maxY) {
		return Rect{}, fmt.Errorf("rect [%g %g %g %g]: min must not exceed max", minX, minY, maxX, maxY)
	}
	return r, nil
}

// Contains reports whether (x, y) lies inside or on the boundary.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Width returns the X extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the Y extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Area returns Width * Height.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Degenerate reports whether the rectangle has zero width or height.
func (r Rect) Degenerate() bool { return !(r.Width() > 0) || !(r.Height() > 0) }

// Quadrants splits the rectangle at its midpoint in SW, SE, NE, NW order.
func (r Rect) Quadrants() [4]Rect {
	mx := r.MinX + r.Width()/2
	my := r.MinY + r.Height()/2
	return [4]Rect{
		{MinX: r.MinX, MinY: r.MinY, MaxX: mx, MaxY: my},
		{MinX: mx, MinY: r.MinY, MaxX: r.MaxX, MaxY: my},
		{MinX: mx, MinY: my, MaxX: r.MaxX, MaxY: r.MaxY},
		{MinX: r.MinX, MinY: my, MaxX: mx, MaxY: r.MaxY},
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g %g, %g %g]", r.MinX, r.MinY, r.MaxX, r.MaxY)
}
