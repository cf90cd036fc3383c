package geom

// Neighborhood is an ordered, fixed list of relative offsets. The order is
// part of the rule contract: it is the exact order neighbor states are
// handed to a transition function. Whether the zero offset (the cell
// itself) appears is up to the rule author; the engine does not care.
type Neighborhood []Point

// Moore returns the eight surrounding offsets of the Moore neighborhood,
// row-major, without the center.
func Moore() Neighborhood {
	return Neighborhood{
		Pt(-1, -1), Pt(0, -1), Pt(1, -1),
		Pt(-1, 0), Pt(1, 0),
		Pt(-1, 1), Pt(0, 1), Pt(1, 1),
	}
}

// MooreWithSelf returns the 3x3 block of offsets row-major, center included
// at index 4.
func MooreWithSelf() Neighborhood {
	return Neighborhood{
		Pt(-1, -1), Pt(0, -1), Pt(1, -1),
		Pt(-1, 0), Pt(0, 0), Pt(1, 0),
		Pt(-1, 1), Pt(0, 1), Pt(1, 1),
	}
}

// Closure returns the Minkowski self-sum {a + b | a, b in n}, deduplicated.
// It bounds how far a single cell change can affect the next evaluation of
// another cell, so it is exactly the set of offsets a changed cell must
// dirty. O(K^2), computed once per configuration.
func (n Neighborhood) Closure() []Point {
	seen := make(map[Point]struct{}, len(n)*len(n))
	out := make([]Point, 0, len(n)*len(n))
	for _, a := range n {
		for _, b := range n {
			s := a.Add(b)
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
