package sim

import (
	"sync"

	"github.com/pthm-cable/sprout/plant"
	"github.com/pthm-cable/sprout/telemetry"
)

// Frame is what a sink receives after each cycle.
type Frame struct {
	Snapshot plant.PlantSnapshot
	Stats    telemetry.CycleStats
	Perf     telemetry.PerfStats
}

// Handoff is a single-slot mailbox between the runner and a sink. Offer
// never blocks: a frame the sink has not picked up yet is replaced.
type Handoff struct {
	mu    sync.Mutex
	frame Frame
	seq   uint64
	ready chan struct{}
}

// NewHandoff creates an empty handoff.
func NewHandoff() *Handoff {
	return &Handoff{ready: make(chan struct{}, 1)}
}

// Offer publishes a frame, replacing any pending one.
func (h *Handoff) Offer(f Frame) {
	h.mu.Lock()
	h.frame = f
	h.seq++
	h.mu.Unlock()

	select {
	case h.ready <- struct{}{}:
	default:
	}
}

// Latest returns the most recent frame and its sequence number. Sequence 0
// means nothing was offered yet.
func (h *Handoff) Latest() (Frame, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame, h.seq
}

// Ready signals that a new frame was offered since the last receive.
func (h *Handoff) Ready() <-chan struct{} {
	return h.ready
}
