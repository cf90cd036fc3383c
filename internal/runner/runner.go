// Package runner drives the synchronous generation loop: evaluate, apply,
// publish. It owns nothing of the rule semantics; it just sequences the
// engine and the grid the way their contracts require.
package runner

import (
	"context"
	"log/slog"

	"sparse-ca/internal/server"
	"sparse-ca/pkg/geom"
	"sparse-ca/pkg/grid"
	"sparse-ca/pkg/rule"
	"sparse-ca/pkg/snap"
)

// Options configures a Runner beyond its two mandatory collaborators.
type Options struct {
	Log *slog.Logger

	// Server, when set, receives a frame after every generation and its
	// buffered edits are applied before each one.
	Server *server.Server

	// SavePath plus a non-zero SaveEvery enables snapshot autosave every
	// SaveEvery generations.
	SavePath  string
	SaveEvery uint64
}

// Runner steps a grid one generation at a time against a ready engine.
type Runner struct {
	log    *slog.Logger
	engine *rule.Engine
	grid   *grid.Grid
	opts   Options

	generation uint64
}

// New creates a Runner. engine must already be initialized.
func New(engine *rule.Engine, g *grid.Grid, opts Options) *Runner {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		log:    log.With("component", "runner"),
		engine: engine,
		grid:   g,
		opts:   opts,
	}
}

// Generation returns the number of completed generations.
func (r *Runner) Generation() uint64 { return r.generation }

// Quiescent reports whether the next generation has no work: an empty
// frontier means the previous delta was empty and the automaton is stable.
func (r *Runner) Quiescent() bool { return len(r.grid.Frontier()) == 0 }

// Step advances one generation and returns the number of cells that
// changed. Evaluate reads the previous generation only; Apply commits the
// delta as one batch, which is what keeps the CA semantics correct.
func (r *Runner) Step() int {
	delta := r.engine.Evaluate(r.grid)
	r.grid.Apply(delta)
	r.generation++
	return len(delta)
}

// Run steps generations at the given TPS until ctx is done, maxGenerations
// completed (0 = unbounded), or — when no server is attached — the
// automaton goes quiescent. With a server attached it keeps ticking so
// interactive edits can restart activity.
func (r *Runner) Run(ctx context.Context, tps int, maxGenerations uint64) error {
	pacer := NewPacer(tps)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !pacer.ShouldStep() {
			pacer.Sleep()
			continue
		}

		r.applyEdits()
		changed := r.Step()
		r.publish()

		if err := r.autosave(); err != nil {
			return err
		}
		if maxGenerations > 0 && r.generation >= maxGenerations {
			r.log.Info("generation limit reached", "generations", r.generation)
			return nil
		}
		if r.opts.Server == nil && changed == 0 && r.Quiescent() {
			r.log.Info("quiescent, stopping", "generations", r.generation)
			return nil
		}
	}
}

// applyEdits folds buffered interactive edits into the grid between
// generations, never during one.
func (r *Runner) applyEdits() {
	if r.opts.Server == nil {
		return
	}
	paints, clearGrid := r.opts.Server.Drain()
	if clearGrid {
		r.grid.Clear()
		return
	}
	for _, p := range paints {
		r.grid.SetState(geom.Pt(p.X, p.Y), p.State)
	}
}

func (r *Runner) publish() {
	if r.opts.Server == nil {
		return
	}
	r.opts.Server.Broadcast(r.generation, r.grid.Cells())
}

func (r *Runner) autosave() error {
	if r.opts.SavePath == "" || r.opts.SaveEvery == 0 {
		return nil
	}
	if r.generation%r.opts.SaveEvery != 0 {
		return nil
	}
	if err := snap.SaveFile(r.opts.SavePath, r.grid); err != nil {
		return err
	}
	r.log.Info("snapshot saved", "path", r.opts.SavePath, "generation", r.generation)
	return nil
}
