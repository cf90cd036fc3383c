// Package rule holds the transition-rule layer of the engine: the validated
// rule configuration, the trie matcher for declarative rules, the registry
// of built-in Go rules, and the loader for natively compiled rule plugins.
package rule

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sparse-ca/pkg/geom"
)

// Rule modes accepted in a Config.
const (
	ModeTrie    = "trie"
	ModeNative  = "native"
	ModeBuiltin = "builtin"
)

// Cell is an initial pattern entry in a rule file.
type Cell struct {
	Pos   geom.Point
	State int
}

// Config is a fully validated rule configuration. It is the only input the
// engine consumes; file parsing happens in LoadConfig, programmatic callers
// can fill the struct directly and call Validate.
type Config struct {
	States       []int
	DefaultState int
	Neighborhood geom.Neighborhood

	Mode string

	// Trie mode: each rule is a K-length neighbor pattern followed by the
	// result state, K = len(Neighborhood).
	Rules [][]int

	// Native mode.
	LibraryPath string
	Symbol      string

	// Builtin mode: name of a registered Go transition function.
	Builtin string

	// Optional initial pattern applied at startup.
	Cells []Cell
}

// fileConfig is the on-disk shape. YAML is a superset of JSON, so legacy
// JSON rule files load unchanged.
type fileConfig struct {
	States       []int   `yaml:"states"`
	DefaultState int     `yaml:"default_state"`
	Neighborhood [][]int `yaml:"neighborhood"`
	Mode         string  `yaml:"rule_mode"`
	Rules        [][]int `yaml:"rules"`
	LibraryPath  string  `yaml:"rule_lib_path"`
	Symbol       string  `yaml:"rule_function"`
	Builtin      string  `yaml:"builtin"`
	Cells        [][]int `yaml:"cells"`
}

// LoadConfig reads and validates a rule file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rule config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("rule config %s: %w", path, err)
	}

	cfg := &Config{
		States:       fc.States,
		DefaultState: fc.DefaultState,
		Mode:         fc.Mode,
		Rules:        fc.Rules,
		LibraryPath:  fc.LibraryPath,
		Symbol:       fc.Symbol,
		Builtin:      fc.Builtin,
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeTrie
	}
	for i, pair := range fc.Neighborhood {
		if len(pair) != 2 {
			return nil, fmt.Errorf("rule config %s: neighborhood entry %d must be [dx, dy]", path, i)
		}
		cfg.Neighborhood = append(cfg.Neighborhood, geom.Pt(pair[0], pair[1]))
	}
	for i, c := range fc.Cells {
		if len(c) != 3 {
			return nil, fmt.Errorf("rule config %s: cell entry %d must be [x, y, state]", path, i)
		}
		cfg.Cells = append(cfg.Cells, Cell{Pos: geom.Pt(c[0], c[1]), State: c[2]})
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rule config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration invariants the engine depends on:
// declared states, default state among them, a non-empty neighborhood, and
// per-mode requirements (trie patterns of length K over declared states,
// library path and symbol for native rules, a name for builtin rules).
func (c *Config) Validate() error {
	if len(c.States) == 0 {
		return fmt.Errorf("no states declared")
	}
	declared := make(map[int]struct{}, len(c.States))
	for _, s := range c.States {
		declared[s] = struct{}{}
	}
	if _, ok := declared[c.DefaultState]; !ok {
		return fmt.Errorf("default state %d is not a declared state", c.DefaultState)
	}
	if len(c.Neighborhood) == 0 {
		return fmt.Errorf("neighborhood is empty")
	}

	switch c.Mode {
	case ModeTrie:
		k := len(c.Neighborhood)
		for i, r := range c.Rules {
			if len(r) != k+1 {
				return fmt.Errorf("rule %d: expected %d pattern states plus a result, got %d values", i, k, len(r))
			}
			for _, s := range r {
				if _, ok := declared[s]; !ok {
					return fmt.Errorf("rule %d: state %d is not declared", i, s)
				}
			}
		}
	case ModeNative:
		if c.LibraryPath == "" {
			return fmt.Errorf("native mode requires rule_lib_path")
		}
		if c.Symbol == "" {
			return fmt.Errorf("native mode requires rule_function")
		}
	case ModeBuiltin:
		if c.Builtin == "" {
			return fmt.Errorf("builtin mode requires a rule name")
		}
	default:
		return fmt.Errorf("unknown rule mode %q", c.Mode)
	}

	for i, cell := range c.Cells {
		if _, ok := declared[cell.State]; !ok {
			return fmt.Errorf("cell %d: state %d is not declared", i, cell.State)
		}
	}
	return nil
}
