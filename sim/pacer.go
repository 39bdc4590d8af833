package sim

import (
	"sync"
	"time"
)

// Pacer throttles a runner for interactive viewing. It is safe for use from
// the viewer goroutine while the runner reads it.
type Pacer struct {
	mu     sync.Mutex
	paused bool
	steps  int
	rate   float64 // cycles per second
}

// NewPacer creates a running pacer at the given rate.
func NewPacer(rate float64) *Pacer {
	p := &Pacer{}
	p.SetRate(rate)
	return p
}

// SetPaused pauses or resumes stepping.
func (p *Pacer) SetPaused(paused bool) {
	p.mu.Lock()
	p.paused = paused
	p.mu.Unlock()
}

// Paused reports whether stepping is paused.
func (p *Pacer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// RequestStep lets one cycle run while paused.
func (p *Pacer) RequestStep() {
	p.mu.Lock()
	p.steps++
	p.mu.Unlock()
}

// SetRate sets the target cycles per second, at least 0.1.
func (p *Pacer) SetRate(rate float64) {
	if rate < 0.1 {
		rate = 0.1
	}
	p.mu.Lock()
	p.rate = rate
	p.mu.Unlock()
}

// Rate returns the target cycles per second.
func (p *Pacer) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// next reports whether a cycle may run now and how long to wait after it.
func (p *Pacer) next() (bool, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		if p.steps == 0 {
			return false, 0
		}
		p.steps--
	}
	return true, time.Duration(float64(time.Second) / p.rate)
}
