package rule

import (
	"context"
	"fmt"
	"log/slog"

	"sparse-ca/pkg/geom"
	"sparse-ca/pkg/grid"
)

// Evaluator is the strategy behind a single rule evaluation: given the
// neighbor states in neighborhood order, produce the cell's next state.
// ok=false means no rule applies and the cell keeps its current state.
type Evaluator interface {
	Next(neighbors []int) (state int, ok bool)
}

// funcEvaluator adapts a registered Go transition function.
type funcEvaluator struct {
	f Func
}

func (fe funcEvaluator) Next(neighbors []int) (int, bool) {
	return fe.f(neighbors), true
}

type closer interface {
	Close() error
}

// Engine evaluates one generation at a time: for every frontier coordinate
// it gathers the neighbor-state vector from the grid and asks its Evaluator
// for the next state, collecting only genuine changes into a delta map.
//
// The engine is either uninitialized or ready. Init moves it to ready only
// after the whole configuration took hold; any failure tears down partially
// acquired resources first. Re-initializing while Evaluate is in flight is
// undefined; callers serialize generation stepping.
type Engine struct {
	log *slog.Logger

	hood         geom.Neighborhood
	defaultState int

	eval Evaluator
	lib  closer

	ready  bool
	warned map[string]struct{}

	buf []int // reusable neighbor-state buffer
}

// NewEngine creates an uninitialized engine. A nil logger falls back to
// slog.Default.
func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		log:    log.With("component", "engine"),
		warned: make(map[string]struct{}),
	}
}

// Ready reports whether Init has succeeded since the last teardown.
func (e *Engine) Ready() bool { return e.ready }

// Init configures the engine from cfg. Any previously held native library
// is released first, so Init is safe to call repeatedly. On error the
// engine is left fully uninitialized, never partially configured.
func (e *Engine) Init(cfg *Config) error {
	e.teardown()

	if cfg == nil {
		return fmt.Errorf("rule engine: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("rule engine: %w", err)
	}

	e.hood = cfg.Neighborhood
	e.defaultState = cfg.DefaultState

	switch cfg.Mode {
	case ModeTrie:
		t := NewTrie()
		k := len(cfg.Neighborhood)
		for _, r := range cfg.Rules {
			t.Insert(r[:k], r[k])
		}
		e.eval = t
		e.log.Info("initialized", "mode", ModeTrie, "rules", len(cfg.Rules))
	case ModeBuiltin:
		f, ok := builtins[cfg.Builtin]
		if !ok {
			return fmt.Errorf("rule engine: no builtin rule %q registered", cfg.Builtin)
		}
		e.eval = funcEvaluator{f: f}
		e.log.Info("initialized", "mode", ModeBuiltin, "rule", cfg.Builtin)
	case ModeNative:
		eval, lib, err := e.loadNative(cfg.LibraryPath, cfg.Symbol)
		if err != nil {
			e.log.Error("native rule load failed", "path", cfg.LibraryPath, "symbol", cfg.Symbol, "err", err)
			return err
		}
		e.eval = eval
		e.lib = lib
	}

	e.ready = true
	return nil
}

// Close releases any held native library. The engine returns to the
// uninitialized state; safe to call when nothing is loaded.
func (e *Engine) Close() error {
	err := e.releaseLib()
	e.ready = false
	e.eval = nil
	return err
}

// Evaluate computes the delta map for one generation. It only reads the
// grid; the caller applies the returned delta afterwards via grid.Apply.
// Cells whose evaluation yields their current state, or for which no rule
// matches, are omitted. An uninitialized engine degrades to an empty delta.
func (e *Engine) Evaluate(g *grid.Grid) map[geom.Point]int {
	delta := make(map[geom.Point]int)
	if !e.ready {
		e.logOnce(slog.LevelError, "uninitialized", "evaluate called on uninitialized engine")
		return delta
	}

	for p := range g.Frontier() {
		cur := g.State(p)
		e.buf = g.NeighborStates(p, e.buf[:0])
		next, ok := e.eval.Next(e.buf)
		if !ok || next == cur {
			continue
		}
		delta[p] = next
	}
	return delta
}

func (e *Engine) teardown() {
	e.ready = false
	e.eval = nil
	e.releaseLib()
	clear(e.warned)
}

func (e *Engine) releaseLib() error {
	if e.lib == nil {
		return nil
	}
	err := e.lib.Close()
	if err != nil {
		e.log.Error("native rule unload failed", "err", err)
	}
	e.lib = nil
	return err
}

// logOnce reports a condition at most once per engine lifetime, replacing
// the static already-warned flags the evaluation path would otherwise need.
func (e *Engine) logOnce(level slog.Level, key, msg string, args ...any) {
	if _, seen := e.warned[key]; seen {
		return
	}
	e.warned[key] = struct{}{}
	e.log.Log(context.Background(), level, msg, args...)
}
