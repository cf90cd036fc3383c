package rule_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sparse-ca/pkg/geom"
	"sparse-ca/pkg/grid"
	"sparse-ca/pkg/rule"
	"sparse-ca/pkg/rules/life"
)

func lifeWorld(t *testing.T, cells ...geom.Point) (*rule.Engine, *grid.Grid) {
	t.Helper()
	e := rule.NewEngine(nil)
	if err := e.Init(life.Config()); err != nil {
		t.Fatalf("engine init: %v", err)
	}
	g := grid.New(0, life.Neighborhood())
	for _, p := range cells {
		g.SetState(p, 1)
	}
	return e, g
}

func TestEvaluateUninitialized(t *testing.T) {
	e := rule.NewEngine(nil)
	g := grid.New(0, geom.Moore())
	g.SetState(geom.Pt(0, 0), 1)

	delta := e.Evaluate(g)
	if len(delta) != 0 {
		t.Fatalf("uninitialized engine produced %d changes", len(delta))
	}
	if e.Ready() {
		t.Fatal("engine must not report ready before Init")
	}
}

func TestBlockIsStillLife(t *testing.T) {
	e, g := lifeWorld(t, geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(0, 1), geom.Pt(1, 1))
	defer e.Close()

	delta := e.Evaluate(g)
	if len(delta) != 0 {
		t.Fatalf("block produced a delta of %d cells, expected none", len(delta))
	}

	// The quiescence chain: empty delta, then empty frontier, then no work.
	g.Apply(delta)
	if len(g.Frontier()) != 0 {
		t.Fatalf("frontier holds %d entries after stable generation", len(g.Frontier()))
	}
}

func TestBlinkerOscillation(t *testing.T) {
	e, g := lifeWorld(t, geom.Pt(-1, 0), geom.Pt(0, 0), geom.Pt(1, 0))
	defer e.Close()

	g.Apply(e.Evaluate(g))
	vertical := map[geom.Point]int{
		geom.Pt(0, -1): 1,
		geom.Pt(0, 0):  1,
		geom.Pt(0, 1):  1,
	}
	if diff := cmp.Diff(vertical, g.Cells()); diff != "" {
		t.Fatalf("after one generation (-want +got):\n%s", diff)
	}

	g.Apply(e.Evaluate(g))
	horizontal := map[geom.Point]int{
		geom.Pt(-1, 0): 1,
		geom.Pt(0, 0):  1,
		geom.Pt(1, 0):  1,
	}
	if diff := cmp.Diff(horizontal, g.Cells()); diff != "" {
		t.Fatalf("after two generations (-want +got):\n%s", diff)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	e, g := lifeWorld(t,
		geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(2, 0),
		geom.Pt(2, -1), geom.Pt(1, -2), // glider
	)
	defer e.Close()

	first := e.Evaluate(g)
	second := e.Evaluate(g)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated evaluation differs (-first +second):\n%s", diff)
	}
}

func TestTrieModePropagation(t *testing.T) {
	// One-dimensional growth: a dead cell whose left neighbor is alive
	// comes alive; everything else is identity via trie miss.
	cfg := &rule.Config{
		States:       []int{0, 1},
		DefaultState: 0,
		Neighborhood: geom.Neighborhood{geom.Pt(-1, 0), geom.Pt(0, 0), geom.Pt(1, 0)},
		Mode:         rule.ModeTrie,
		Rules:        [][]int{{1, 0, 0, 1}},
	}
	e := rule.NewEngine(nil)
	if err := e.Init(cfg); err != nil {
		t.Fatalf("engine init: %v", err)
	}
	g := grid.New(0, cfg.Neighborhood)
	g.SetState(geom.Pt(0, 0), 1)

	delta := e.Evaluate(g)
	want := map[geom.Point]int{geom.Pt(1, 0): 1}
	if diff := cmp.Diff(want, delta); diff != "" {
		t.Fatalf("delta (-want +got):\n%s", diff)
	}

	g.Apply(delta)
	if g.State(geom.Pt(0, 0)) != 1 {
		t.Fatal("unmatched cell lost its state; trie miss must be identity")
	}
}

func TestInitFailureLeavesEngineUninitialized(t *testing.T) {
	e := rule.NewEngine(nil)
	if err := e.Init(life.Config()); err != nil {
		t.Fatalf("engine init: %v", err)
	}

	bad := &rule.Config{
		States:       []int{0, 1},
		DefaultState: 0,
		Neighborhood: geom.Moore(),
		Mode:         rule.ModeBuiltin,
		Builtin:      "no-such-rule",
	}
	if err := e.Init(bad); err == nil {
		t.Fatal("init with unregistered builtin must fail")
	}
	if e.Ready() {
		t.Fatal("failed re-init must leave the engine uninitialized")
	}

	g := grid.New(0, geom.Moore())
	g.SetState(geom.Pt(0, 0), 1)
	if delta := e.Evaluate(g); len(delta) != 0 {
		t.Fatalf("uninitialized engine produced %d changes", len(delta))
	}
}

func TestNativeLoadFailure(t *testing.T) {
	cfg := &rule.Config{
		States:       []int{0, 1},
		DefaultState: 0,
		Neighborhood: geom.Moore(),
		Mode:         rule.ModeNative,
		LibraryPath:  "testdata/definitely-missing",
		Symbol:       "update",
	}
	e := rule.NewEngine(nil)
	if err := e.Init(cfg); err == nil {
		t.Fatal("init with a missing library must fail")
	}
	if e.Ready() {
		t.Fatal("engine must stay uninitialized after a failed native load")
	}
	if err := e.Close(); err != nil {
		t.Fatalf("close after failed init: %v", err)
	}
}
