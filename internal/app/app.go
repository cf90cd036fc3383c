// Package app wires the engine, grid, runner, and optional streaming server
// into the headless application behind cmd/ca.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"sparse-ca/internal/runner"
	"sparse-ca/internal/server"
	"sparse-ca/pkg/core"
	"sparse-ca/pkg/geom"
	"sparse-ca/pkg/grid"
	"sparse-ca/pkg/rule"
	"sparse-ca/pkg/snap"
)

// App owns the assembled simulation and its optional network surface.
type App struct {
	log    *slog.Logger
	cfg    *Config
	engine *rule.Engine
	grid   *grid.Grid
	runner *runner.Runner
	srv    *server.Server
}

// New loads the rule file, initializes the engine, and seeds the grid from
// (in priority order) a snapshot, a random fill, or the rule file's own
// initial cells.
func New(cfg *Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.RuleFile == "" {
		return nil, fmt.Errorf("app: no rule configuration file given")
	}

	rc, err := rule.LoadConfig(cfg.RuleFile)
	if err != nil {
		return nil, err
	}

	engine := rule.NewEngine(log)
	if err := engine.Init(rc); err != nil {
		return nil, err
	}

	g := grid.New(rc.DefaultState, rc.Neighborhood)
	switch {
	case cfg.Load != "":
		if err := snap.LoadFile(cfg.Load, g); err != nil {
			engine.Close()
			return nil, err
		}
		log.Info("snapshot restored", "path", cfg.Load, "cells", g.Len())
	case cfg.RandomW > 0 && cfg.RandomH > 0:
		seedRandom(g, rc, cfg)
		log.Info("random pattern seeded", "cells", g.Len(), "seed", cfg.Seed)
	default:
		for _, c := range rc.Cells {
			g.SetState(c.Pos, c.State)
		}
	}

	a := &App{log: log, cfg: cfg, engine: engine, grid: g}
	if cfg.Serve != "" {
		a.srv = server.New(log)
	}
	a.runner = runner.New(engine, g, runner.Options{
		Log:       log,
		Server:    a.srv,
		SavePath:  cfg.Save,
		SaveEvery: cfg.SaveEvery,
	})
	return a, nil
}

// Run steps generations until the context is cancelled or the configured
// stop condition is reached, serving websocket clients in the background
// when enabled.
func (a *App) Run(ctx context.Context) error {
	var httpSrv *http.Server
	if a.srv != nil {
		mux := http.NewServeMux()
		mux.Handle("/ws", a.srv.Handler())
		httpSrv = &http.Server{Addr: a.cfg.Serve, Handler: mux}
		go func() {
			a.log.Info("streaming server listening", "addr", a.cfg.Serve)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("streaming server failed", "err", err)
			}
		}()
		defer httpSrv.Close()
	}

	err := a.runner.Run(ctx, a.cfg.TPS, a.cfg.Generations)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// Close releases the engine's native resources, if any.
func (a *App) Close() error { return a.engine.Close() }

// seedRandom fills the [0,w) x [0,h) rectangle with random non-default
// states at the configured density, deterministically per seed.
func seedRandom(g *grid.Grid, rc *rule.Config, cfg *Config) {
	nonDefault := make([]int, 0, len(rc.States))
	for _, s := range rc.States {
		if s != rc.DefaultState {
			nonDefault = append(nonDefault, s)
		}
	}
	if len(nonDefault) == 0 {
		return
	}
	rng := core.NewRNG(cfg.Seed)
	for y := 0; y < cfg.RandomH; y++ {
		for x := 0; x < cfg.RandomW; x++ {
			if rng.Chance(cfg.RandomDensity) {
				g.SetState(geom.Pt(x, y), rng.Pick(nonDefault))
			}
		}
	}
}
