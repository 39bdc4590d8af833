// Package plant holds the plant model: an arena of shoot and root nodes with
// their leaves and flowers, and the per-cycle growth driver that applies the
// growth rules against the scalar fields.
package plant

import (
	"fmt"
	"math"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/systems"
)

// Phase names reported through the phase hook.
const (
	PhaseSample = "sample"
	PhaseDecide = "decide"
	PhaseApply  = "apply"
	PhaseOrgans = "organs"
)

// Plant owns every node, leaf and flower of one simulated plant. Nodes live
// in an arena indexed by NodeID; parent links are IDs, never pointers.
type Plant struct {
	cfg    *config.Config
	domain systems.Domain

	nodes     []Node
	shootRoot NodeID
	rootRoot  NodeID
	leaves    []Leaf
	flowers   []Flower

	cycle     int
	maxCycles int

	sampler *samplerState
	phase   func(string)
}

// Origin returns the configured stem base on the ground line. cfg must have
// been loaded or refreshed after its domain was last changed.
func Origin(cfg *config.Config) systems.Vec2 {
	return systems.Vec2{X: cfg.Derived.OriginX, Y: 0}
}

// New creates a plant with one shoot seed pointing up and one root seed
// pointing down, both at origin. The origin must lie on the ground line.
func New(origin systems.Vec2, cfg *config.Config) (*Plant, error) {
	if err := cfg.Refresh(); err != nil {
		return nil, err
	}
	d := systems.NewDomain(cfg)
	if !d.InAir(origin) || !d.InSoil(origin) {
		return nil, &config.ConfigurationError{
			Field:  "origin",
			Reason: fmt.Sprintf("(%g, %g) is not on the ground line within the domain", origin.X, origin.Y),
		}
	}

	workers := cfg.Derived.Workers

	p := &Plant{
		cfg:       cfg.Clone(),
		domain:    d,
		nodes:     make([]Node, 0, 256),
		maxCycles: cfg.Run.MaxCycles,
		sampler:   newSamplerState(workers),
	}
	p.shootRoot = p.addNode(systems.ShootNode, origin, math.Pi/2, 0, 0, NoParent, 1)
	p.rootRoot = p.addNode(systems.RootNode, origin, -math.Pi/2, 0, 0, NoParent, 1)
	return p, nil
}

// Close stops the sampling workers. The plant stays readable.
func (p *Plant) Close() {
	p.sampler.stopWorkers()
}

// SetPhaseHook registers a callback invoked at the start of each step phase.
func (p *Plant) SetPhaseHook(fn func(phase string)) {
	p.phase = fn
}

func (p *Plant) startPhase(name string) {
	if p.phase != nil {
		p.phase(name)
	}
}

// Cycle returns the number of completed cycles.
func (p *Plant) Cycle() int { return p.cycle }

// MaxCycles returns the cycle count after which Step is a no-op.
func (p *Plant) MaxCycles() int { return p.maxCycles }

// Done reports whether the plant reached its maximum cycle count.
func (p *Plant) Done() bool { return p.cycle >= p.maxCycles }

// Domain returns the region the plant grows in.
func (p *Plant) Domain() systems.Domain { return p.domain }

// ShootRoot returns the ID of the shoot seed node.
func (p *Plant) ShootRoot() NodeID { return p.shootRoot }

// RootRoot returns the ID of the root seed node.
func (p *Plant) RootRoot() NodeID { return p.rootRoot }

// NumNodes returns the number of nodes in both trees.
func (p *Plant) NumNodes() int { return len(p.nodes) }

// Node returns a copy of a node. The Children slice is copied too.
func (p *Plant) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(p.nodes) {
		return Node{}, false
	}
	n := p.nodes[id]
	n.Children = append([]NodeID(nil), n.Children...)
	return n, true
}

// Tips returns the IDs of growing tips of the given tree, in ID order.
func (p *Plant) Tips(kind systems.NodeKind) []NodeID {
	return p.growingTips(kind, nil)
}

func (p *Plant) growingTips(kind systems.NodeKind, dst []NodeID) []NodeID {
	for i := range p.nodes {
		n := &p.nodes[i]
		if n.Kind == kind && n.State == Growing {
			dst = append(dst, n.ID)
		}
	}
	return dst
}

// addNode appends a node to the arena and links it to its parent.
func (p *Plant) addNode(kind systems.NodeKind, pos systems.Vec2, heading float64, born, axisBorn int, parent NodeID, vigor float64) NodeID {
	id := NodeID(len(p.nodes))
	p.nodes = append(p.nodes, Node{
		ID:       id,
		Kind:     kind,
		Pos:      pos,
		Heading:  heading,
		Born:     born,
		AxisBorn: axisBorn,
		Parent:   parent,
		State:    Growing,
		Vigor:    vigor,
	})
	if parent != NoParent {
		p.nodes[parent].Children = append(p.nodes[parent].Children, id)
	}
	return id
}
