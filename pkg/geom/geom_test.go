package geom

import "testing"

func TestPointOrdering(t *testing.T) {
	cases := []struct {
		a, b Point
		less bool
	}{
		{Pt(0, 0), Pt(1, 0), true},
		{Pt(1, 0), Pt(0, 5), false},
		{Pt(2, 1), Pt(2, 3), true},
		{Pt(2, 3), Pt(2, 3), false},
		{Pt(-1, 9), Pt(0, -9), true},
	}
	for _, c := range cases {
		if got := c.a.Less(c.b); got != c.less {
			t.Fatalf("(%v).Less(%v) = %v, expected %v", c.a, c.b, got, c.less)
		}
	}
}

func TestRectExpandContains(t *testing.T) {
	r := Rect{Min: Pt(0, 0), Max: Pt(0, 0)}
	r = r.Expand(Pt(3, -2))
	r = r.Expand(Pt(-1, 1))

	if r.Min != Pt(-1, -2) || r.Max != Pt(3, 1) {
		t.Fatalf("expanded rect = %v, expected min (-1,-2) max (3,1)", r)
	}
	for _, p := range []Point{Pt(-1, -2), Pt(3, 1), Pt(0, 0)} {
		if !r.Contains(p) {
			t.Fatalf("rect %v should contain %v", r, p)
		}
	}
	if r.Contains(Pt(4, 0)) {
		t.Fatalf("rect %v should not contain (4,0)", r)
	}
}

func TestMooreClosureCoversRadiusTwo(t *testing.T) {
	closure := Moore().Closure()

	seen := make(map[Point]struct{}, len(closure))
	for _, p := range closure {
		if _, dup := seen[p]; dup {
			t.Fatalf("closure contains duplicate offset %v", p)
		}
		seen[p] = struct{}{}
	}

	// The self-sum of the 8 Moore offsets reaches every offset within
	// Chebyshev distance 2, including the zero offset.
	if len(closure) != 25 {
		t.Fatalf("closure size = %d, expected 25", len(closure))
	}
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if _, ok := seen[Pt(dx, dy)]; !ok {
				t.Fatalf("closure missing offset (%d,%d)", dx, dy)
			}
		}
	}
}

func TestAsymmetricClosure(t *testing.T) {
	hood := Neighborhood{Pt(1, 0), Pt(0, 2)}
	closure := hood.Closure()

	want := map[Point]struct{}{
		Pt(2, 0): {},
		Pt(1, 2): {},
		Pt(0, 4): {},
	}
	if len(closure) != len(want) {
		t.Fatalf("closure = %v, expected %d unique offsets", closure, len(want))
	}
	for _, p := range closure {
		if _, ok := want[p]; !ok {
			t.Fatalf("unexpected closure offset %v", p)
		}
	}
}
