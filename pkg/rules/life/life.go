// Package life provides Conway's Game of Life as a built-in transition
// rule. Import it for its side effect of registering under the name "life".
package life

import (
	"sparse-ca/pkg/geom"
	"sparse-ca/pkg/rule"
)

const (
	dead  = 0
	alive = 1
)

// Neighborhood returns the offset order Update expects: the eight Moore
// neighbors row-major, then the cell itself at index 8.
func Neighborhood() geom.Neighborhood {
	return append(geom.Moore(), geom.Pt(0, 0))
}

// Config returns a ready-made builtin configuration for the rule.
func Config() *rule.Config {
	return &rule.Config{
		States:       []int{dead, alive},
		DefaultState: dead,
		Neighborhood: Neighborhood(),
		Mode:         rule.ModeBuiltin,
		Builtin:      "life",
	}
}

// Update applies Conway's rules. neighbors holds the eight neighbor states
// followed by the cell's own state.
func Update(neighbors []int) int {
	live := 0
	for i := 0; i < 8; i++ {
		if neighbors[i] == alive {
			live++
		}
	}
	if neighbors[8] == alive {
		if live == 2 || live == 3 {
			return alive
		}
		return dead
	}
	if live == 3 {
		return alive
	}
	return dead
}

func init() {
	rule.Register("life", Update)
}
