package rule

// Func is a transition rule written in Go. It receives the neighbor states
// in neighborhood order and returns the cell's next state. Like a native
// plugin it must read no more than len(neighbors) values and has no other
// view of the grid.
type Func func(neighbors []int) int

var builtins = map[string]Func{}

// Register adds a built-in transition function under the provided name.
// Typically called from an init function and triggered by a blank import.
func Register(name string, f Func) {
	if name == "" || f == nil {
		return
	}
	builtins[name] = f
}

// Builtins exposes the registry of available transition functions.
func Builtins() map[string]Func {
	return builtins
}
