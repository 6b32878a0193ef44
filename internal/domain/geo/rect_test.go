package geo

import "testing"

func TestNewRect_Inverted(t *testing.T) {
	if _, err := NewRect(10, 0, 0, 10); err == nil {
		t.Fatal("expected error for minX > maxX")
	}
	if _, err := NewRect(0, 10, 10, 0); err == nil {
		t.Fatal("expected error for minY > maxY")
	}
}

func TestRect_ContainsInclusive(t *testing.T) {
	r, err := NewRect(0, 0, 10, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		x, y float64
		want bool
	}{
		{5, 5, true},
		{0, 0, true},
		{10, 10, true},
		{10, 5, true},
		{10.0001, 5, false},
		{-0.0001, 5, false},
		{5, 11, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.x, c.y); got != c.want {
			t.Errorf("Contains(%g, %g) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestRect_Quadrants(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 4, MaxY: 2}
	q := r.Quadrants()
	want := [4]Rect{
		{0, 0, 2, 1}, // SW
		{2, 0, 4, 1}, // SE
		{2, 1, 4, 2}, // NE
		{0, 1, 2, 2}, // NW
	}
	if q != want {
		t.Fatalf("want %v, got %v", want, q)
	}
	var sum float64
	for _, c := range q {
		sum += c.Area()
	}
	if sum != r.Area() {
		t.Fatalf("quadrant areas %g != %g", sum, r.Area())
	}
}

func TestRect_Degenerate(t *testing.T) {
	if !(Rect{0, 0, 0, 5}).Degenerate() {
		t.Fatal("zero width should be degenerate")
	}
	if (Rect{0, 0, 1, 1}).Degenerate() {
		t.Fatal("unit square should not be degenerate")
	}
}
