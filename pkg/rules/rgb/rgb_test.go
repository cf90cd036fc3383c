package rgb

import "testing"

// cellBlock builds the 9-value vector: 3x3 row-major, self at index 4.
func cellBlock(self int, neighbors [8]int) []int {
	return []int{
		neighbors[0], neighbors[1], neighbors[2],
		neighbors[3], self, neighbors[4],
		neighbors[5], neighbors[6], neighbors[7],
	}
}

func TestGrowth(t *testing.T) {
	// Empty cell with three red neighbors and majority red support.
	got := Update(cellBlock(empty, [8]int{red, red, red, 0, 0, 0, 0, 0}))
	if got != red {
		t.Fatalf("empty with 3 red = %d, expected red", got)
	}

	// Three red but tied with green: no winner, stays empty.
	got = Update(cellBlock(empty, [8]int{red, red, red, green, green, green, 0, 0}))
	if got != empty {
		t.Fatalf("tied growth = %d, expected empty", got)
	}

	// Two red is below the growth threshold.
	got = Update(cellBlock(empty, [8]int{red, red, 0, 0, 0, 0, 0, 0}))
	if got != empty {
		t.Fatalf("below threshold = %d, expected empty", got)
	}
}

func TestConsumptionBeatsSupport(t *testing.T) {
	// Red with three green neighbors is consumed regardless of red support.
	got := Update(cellBlock(red, [8]int{green, green, green, red, red, red, red, 0}))
	if got != green {
		t.Fatalf("red with 3 green = %d, expected green", got)
	}

	// Cyclic: green falls to blue, blue falls to red.
	if got := Update(cellBlock(green, [8]int{blue, blue, blue, green, green, 0, 0, 0})); got != blue {
		t.Fatalf("green with 3 blue = %d, expected blue", got)
	}
	if got := Update(cellBlock(blue, [8]int{red, red, red, blue, blue, 0, 0, 0})); got != red {
		t.Fatalf("blue with 3 red = %d, expected red", got)
	}
}

func TestStarvation(t *testing.T) {
	// One same-color neighbor is below the support threshold.
	if got := Update(cellBlock(red, [8]int{red, 0, 0, 0, 0, 0, 0, 0})); got != empty {
		t.Fatalf("unsupported red = %d, expected empty", got)
	}
	// Two same-color neighbors sustain the cell.
	if got := Update(cellBlock(red, [8]int{red, red, 0, 0, 0, 0, 0, 0})); got != red {
		t.Fatalf("supported red = %d, expected red", got)
	}
}

func TestWallKillsNeighbors(t *testing.T) {
	if got := Update(cellBlock(red, [8]int{wall, red, red, red, 0, 0, 0, 0})); got != empty {
		t.Fatalf("red beside wall = %d, expected empty", got)
	}
	// Walls are inert among themselves.
	if got := Update(cellBlock(wall, [8]int{wall, 0, 0, 0, 0, 0, 0, 0})); got != wall {
		t.Fatalf("wall beside wall = %d, expected wall", got)
	}
}
