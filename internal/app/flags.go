package app

import "flag"

// Config represents the command-line parameters for the headless runner.
type Config struct {
	RuleFile string

	Load      string
	Save      string
	SaveEvery uint64

	Generations uint64
	TPS         int

	Serve string

	Seed          int64
	RandomW       int
	RandomH       int
	RandomDensity float64
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{TPS: 30, Seed: 42, RandomDensity: 0.2}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.RuleFile, "config", c.RuleFile, "rule configuration file (required)")
	fs.StringVar(&c.Load, "load", c.Load, "snapshot file to restore before running")
	fs.StringVar(&c.Save, "save", c.Save, "snapshot file for autosave")
	fs.Uint64Var(&c.SaveEvery, "save-every", c.SaveEvery, "autosave interval in generations (0 disables)")
	fs.Uint64Var(&c.Generations, "gens", c.Generations, "stop after this many generations (0 = unbounded)")
	fs.IntVar(&c.TPS, "tps", c.TPS, "generations per second")
	fs.StringVar(&c.Serve, "serve", c.Serve, "address for the websocket streaming server (empty disables)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for random pattern fill")
	fs.IntVar(&c.RandomW, "random-w", c.RandomW, "width of the random fill rectangle (0 disables)")
	fs.IntVar(&c.RandomH, "random-h", c.RandomH, "height of the random fill rectangle (0 disables)")
	fs.Float64Var(&c.RandomDensity, "random-density", c.RandomDensity, "probability a random-fill cell is non-default")
}
