package runner

import "time"

// Pacer keeps the generation loop at a steady ticks-per-second rate without
// drifting when a step runs long.
type Pacer struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
}

// NewPacer constructs a Pacer targeting the given TPS.
func NewPacer(tps int) *Pacer {
	p := &Pacer{}
	p.SetTPS(tps)
	p.accumulator = p.step
	return p
}

// SetTPS changes the tick rate. Safe to call between steps.
func (p *Pacer) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	p.step = time.Second / time.Duration(tps)
}

// ShouldStep reports whether the loop should advance by one generation.
func (p *Pacer) ShouldStep() bool {
	now := time.Now()
	if p.last.IsZero() {
		p.last = now
	}
	p.accumulator += now.Sub(p.last)
	p.last = now
	if p.accumulator >= p.step {
		p.accumulator -= p.step
		return true
	}
	return false
}

// Sleep blocks until roughly the next step is due, so the loop does not
// spin between generations.
func (p *Pacer) Sleep() {
	remaining := p.step - p.accumulator
	if remaining > 0 {
		time.Sleep(remaining)
	}
}
