package plant

import (
	"sync"

	"github.com/pthm-cable/sprout/systems"
)

// parallelThreshold is the minimum probe count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk represents a range of probes for a worker to process.
type workChunk struct {
	start, end int
	index      int
	fields     *systems.Fields
	cycle      int
}

// samplerState holds the probe buffers and worker pool for field sampling.
// Workers only read fields and write disjoint ranges of probes, so the
// result is independent of how the range is split.
type samplerState struct {
	kinds  []systems.FieldKind
	points []systems.Vec2
	probes []systems.Probe
	errs   []error

	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newSamplerState(numWorkers int) *samplerState {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &samplerState{
		numWorkers: numWorkers,
		kinds:      make([]systems.FieldKind, 0, 256),
		points:     make([]systems.Vec2, 0, 256),
		errs:       make([]error, numWorkers),
	}
}

// reset clears queued probes for a new cycle.
func (s *samplerState) reset() {
	s.kinds = s.kinds[:0]
	s.points = s.points[:0]
}

// add queues a probe and returns its index.
func (s *samplerState) add(kind systems.FieldKind, pos systems.Vec2) int {
	s.kinds = append(s.kinds, kind)
	s.points = append(s.points, pos)
	return len(s.points) - 1
}

// run evaluates every queued probe. On failure it returns the error of the
// lowest-indexed failing chunk.
func (s *samplerState) run(fields *systems.Fields, cycle int) error {
	n := len(s.points)
	if cap(s.probes) < n {
		s.probes = make([]systems.Probe, n)
	}
	s.probes = s.probes[:n]
	if n == 0 {
		return nil
	}

	if n < parallelThreshold || s.numWorkers == 1 {
		return s.computeChunk(fields, cycle, 0, n)
	}
	return s.computeParallel(fields, cycle, n)
}

// computeChunk probes a contiguous range, batching runs of the same field.
func (s *samplerState) computeChunk(fields *systems.Fields, cycle, i0, i1 int) error {
	for run := i0; run < i1; {
		j := run
		for j < i1 && s.kinds[j] == s.kinds[run] {
			j++
		}
		if err := fields.ProbeBatch(s.kinds[run], s.points[run:j], cycle, s.probes[run:j]); err != nil {
			return err
		}
		run = j
	}
	return nil
}

// startWorkers launches persistent worker goroutines.
func (s *samplerState) startWorkers() {
	if s.running {
		return
	}

	s.workChan = make(chan workChunk, s.numWorkers)
	s.doneChan = make(chan struct{}, s.numWorkers)
	s.stopChan = make(chan struct{})
	s.running = true

	for i := 0; i < s.numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (s *samplerState) stopWorkers() {
	if !s.running {
		return
	}

	close(s.stopChan)
	s.wg.Wait()
	close(s.workChan)
	close(s.doneChan)
	s.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (s *samplerState) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			return
		case chunk, ok := <-s.workChan:
			if !ok {
				return
			}
			s.errs[chunk.index] = s.computeChunk(chunk.fields, chunk.cycle, chunk.start, chunk.end)
			s.doneChan <- struct{}{}
		}
	}
}

// computeParallel dispatches work to the worker pool and waits for it.
func (s *samplerState) computeParallel(fields *systems.Fields, cycle, n int) error {
	if !s.running {
		s.startWorkers()
	}

	chunkSize := (n + s.numWorkers - 1) / s.numWorkers

	chunksDispatched := 0
	for w := 0; w < s.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		s.errs[chunksDispatched] = nil
		s.workChan <- workChunk{start: start, end: end, index: chunksDispatched, fields: fields, cycle: cycle}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-s.doneChan
	}

	for i := 0; i < chunksDispatched; i++ {
		if s.errs[i] != nil {
			return s.errs[i]
		}
	}
	return nil
}
