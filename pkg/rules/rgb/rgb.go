// Package rgb provides a three-color growth/consumption rule as a built-in
// transition function. Colors grow into empty cells with enough same-color
// support, consume their prey color cyclically (red eats blue, green eats
// red, blue eats green), and starve without support. State 4 is a wall that
// kills any non-wall cell adjacent to it.
package rgb

import (
	"sparse-ca/pkg/geom"
	"sparse-ca/pkg/rule"
)

const (
	empty = 0
	red   = 1
	green = 2
	blue  = 3
	wall  = 4
)

const (
	growthThreshold      = 3
	consumptionThreshold = 3
	supportThreshold     = 2
)

// Neighborhood returns the 3x3 block row-major with the cell itself at
// index 4, the order Update expects.
func Neighborhood() geom.Neighborhood {
	return geom.MooreWithSelf()
}

// Config returns a ready-made builtin configuration for the rule.
func Config() *rule.Config {
	return &rule.Config{
		States:       []int{empty, red, green, blue, wall},
		DefaultState: empty,
		Neighborhood: Neighborhood(),
		Mode:         rule.ModeBuiltin,
		Builtin:      "rgb",
	}
}

// Update computes the next state from the 9-cell block.
func Update(neighbors []int) int {
	cur := neighbors[4]
	countR, countG, countB := 0, 0, 0
	for i := 0; i < 9; i++ {
		if i == 4 {
			continue
		}
		switch neighbors[i] {
		case red:
			countR++
		case green:
			countG++
		case blue:
			countB++
		case wall:
			if cur != wall {
				return empty
			}
		}
	}

	switch cur {
	case empty:
		if countR >= growthThreshold && countR > countG && countR > countB {
			return red
		}
		if countG >= growthThreshold && countG > countR && countG > countB {
			return green
		}
		if countB >= growthThreshold && countB > countR && countB > countG {
			return blue
		}
	case red:
		if countG >= consumptionThreshold {
			return green
		}
		if countR < supportThreshold {
			return empty
		}
	case green:
		if countB >= consumptionThreshold {
			return blue
		}
		if countG < supportThreshold {
			return empty
		}
	case blue:
		if countR >= consumptionThreshold {
			return red
		}
		if countB < supportThreshold {
			return empty
		}
	}
	return cur
}

func init() {
	rule.Register("rgb", Update)
}
