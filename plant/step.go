package plant

import (
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sprout/systems"
)

// Step advances the plant by one cycle.
//
// The cycle runs in fixed phases: probe the fields at every tip (parallel,
// read-only), decide shoot then root actions against that start-of-cycle
// state, apply shoot then root mutations, then evaluate flowers and leaves on
// every shoot node. Decisions and mutations run on the calling goroutine in
// node ID order, so a fixed seed gives the same plant regardless of worker
// count.
//
// Step is a no-op once the maximum cycle count is reached. A field sampled
// outside the domain returns *systems.OutOfBoundsError; the plant is then in
// an undefined state and the run should stop.
func (p *Plant) Step(fields *systems.Fields, rng *rand.Rand) error {
	if p.Done() {
		return nil
	}
	c := p.cycle + 1
	cfg := p.cfg

	// Phase A: snapshot tips and probe fields
	p.startPhase(PhaseSample)
	shootTips := p.growingTips(systems.ShootNode, nil)
	rootTips := p.growingTips(systems.RootNode, nil)

	s := p.sampler
	s.reset()
	// Water uptake is drawn through every root tip, terminated ones included.
	var uptakeProbes []int
	rootProbe := make(map[NodeID]int, len(rootTips))
	for i := range p.nodes {
		n := &p.nodes[i]
		if n.Kind != systems.RootNode || !n.IsTip() {
			continue
		}
		idx := s.add(systems.Moisture, n.Pos)
		uptakeProbes = append(uptakeProbes, idx)
		if n.State == Growing {
			rootProbe[n.ID] = idx
		}
	}
	sunProbe := len(s.points)
	for _, id := range shootTips {
		s.add(systems.Sunlight, p.nodes[id].Pos)
	}
	tempProbe := len(s.points)
	for _, id := range shootTips {
		s.add(systems.Temperature, p.nodes[id].Pos)
	}
	if err := s.run(fields, c); err != nil {
		return err
	}

	moisture := make([]float64, len(uptakeProbes))
	for i, idx := range uptakeProbes {
		moisture[i] = s.probes[idx].Value
	}
	var uptake float64
	if len(moisture) > 0 {
		uptake = stat.Mean(moisture, nil)
	}

	// Phase B: decide
	p.startPhase(PhaseDecide)
	shootActions := make([]systems.GrowthAction, len(shootTips))
	for i, id := range shootTips {
		sun := s.probes[sunProbe+i]
		samples := systems.ShootSamples{
			Sunlight:    sun.Value,
			Temperature: s.probes[tempProbe+i].Value,
			Water:       uptake,
			Gradient:    sun.Gradient,
		}
		shootActions[i] = systems.DecideShootGrowth(p.nodes[id].view(), samples, cfg.Shoot, p.domain, rng)
	}
	rootActions := make([]systems.GrowthAction, len(rootTips))
	for i, id := range rootTips {
		probe := s.probes[rootProbe[id]]
		samples := systems.RootSamples{Moisture: probe.Value, Gradient: probe.Gradient}
		rootActions[i] = systems.DecideRootGrowth(p.nodes[id].view(), samples, cfg.Root, p.domain, rng)
	}

	// Phase C: apply
	p.startPhase(PhaseApply)
	for i, id := range shootTips {
		p.apply(id, shootActions[i], c)
	}
	for i, id := range rootTips {
		p.apply(id, rootActions[i], c)
	}

	// Phase D: flowers and leaves on every shoot node
	p.startPhase(PhaseOrgans)
	n := len(p.nodes)
	for i := 0; i < n; i++ {
		node := &p.nodes[i]
		if node.Kind != systems.ShootNode {
			continue
		}
		if systems.ShouldFlower(node.view(), c, cfg.Flower.CycleThreshold) {
			node.Flowered = true
			p.flowers = append(p.flowers, Flower{
				Node:  node.ID,
				Pos:   node.Pos,
				Born:  c,
				Color: systems.PickColor(cfg.Flower.Colors, rng),
				Size:  cfg.Flower.BaseSize,
			})
		}
		if systems.ShouldGrowLeaf(cfg.Leaf.Probability, rng) &&
			(cfg.Leaf.MaxPerNode == 0 || node.Leaves < cfg.Leaf.MaxPerNode) {
			node.Leaves++
			p.leaves = append(p.leaves, Leaf{
				Node: node.ID,
				Pos:  node.Pos,
				Born: c,
				Size: cfg.Leaf.BaseSize * node.Vigor,
			})
		}
	}

	p.cycle = c
	return nil
}

// apply mutates the tree for one tip's decision. An extension continues the
// tip's axis; a branch continues it through the first child and starts a new
// axis at the second.
func (p *Plant) apply(id NodeID, act systems.GrowthAction, c int) {
	tip := &p.nodes[id]
	kind, axis := tip.Kind, tip.AxisBorn
	tip.Vigor = act.Vigor

	switch act.Kind {
	case systems.Extend:
		tip.State = Extended
		p.addNode(kind, act.Positions[0], act.Headings[0], c, axis, id, act.Vigor)
	case systems.Branch:
		tip.State = Branched
		p.addNode(kind, act.Positions[0], act.Headings[0], c, axis, id, act.Vigor)
		p.addNode(kind, act.Positions[1], act.Headings[1], c, c, id, act.Vigor)
	case systems.Terminate:
		tip.State = Terminated
	}
}
