package plant

import (
	"math"

	"github.com/pthm-cable/sprout/systems"
)

// Edge is one segment from a parent node to a child node.
type Edge struct {
	From systems.Vec2 `json:"from"`
	To   systems.Vec2 `json:"to"`
}

// LeafView is the rendered form of a leaf.
type LeafView struct {
	Pos  systems.Vec2 `json:"pos"`
	Size float64      `json:"size"`
}

// FlowerView is the rendered form of a flower.
type FlowerView struct {
	Pos   systems.Vec2 `json:"pos"`
	Color string       `json:"color"`
	Size  float64      `json:"size"`
}

// PlantSnapshot is an immutable geometry view of the plant after a cycle.
// Edges are ordered by child node ID; leaves and flowers by creation.
type PlantSnapshot struct {
	Cycle   int          `json:"cycle"`
	Shoots  []Edge       `json:"shoots"`
	Roots   []Edge       `json:"roots"`
	Leaves  []LeafView   `json:"leaves"`
	Flowers []FlowerView `json:"flowers"`
}

// Snapshot copies the plant geometry. The result shares no memory with the plant.
func (p *Plant) Snapshot() PlantSnapshot {
	snap := PlantSnapshot{Cycle: p.cycle}
	for i := range p.nodes {
		n := &p.nodes[i]
		if n.Parent == NoParent {
			continue
		}
		e := Edge{From: p.nodes[n.Parent].Pos, To: n.Pos}
		if n.Kind == systems.RootNode {
			snap.Roots = append(snap.Roots, e)
		} else {
			snap.Shoots = append(snap.Shoots, e)
		}
	}
	if len(p.leaves) > 0 {
		snap.Leaves = make([]LeafView, len(p.leaves))
		for i, l := range p.leaves {
			snap.Leaves[i] = LeafView{Pos: l.Pos, Size: l.Size}
		}
	}
	if len(p.flowers) > 0 {
		snap.Flowers = make([]FlowerView, len(p.flowers))
		for i, f := range p.flowers {
			snap.Flowers[i] = FlowerView{Pos: f.Pos, Color: f.Color, Size: f.Size}
		}
	}
	return snap
}

// Census holds the counts and per-node measurements used for statistics.
type Census struct {
	Cycle      int
	ShootNodes int
	RootNodes  int
	Leaves     int
	Flowers    int
	ShootTips  int // growing shoot tips
	RootTips   int // growing root tips
	Terminated int

	Height     float64 // highest shoot node
	RootDepth  float64 // deepest root node, as a positive distance
	ShootXs    []float64
	TipVigor   []float64 // growth factor of each shoot tip's last decision
	LeafArea   float64   // sum of leaf sizes
	StemLength float64   // total shoot edge length
	RootLength float64   // total root edge length
}

// Census counts the plant's parts.
func (p *Plant) Census() Census {
	c := Census{
		Cycle:   p.cycle,
		Leaves:  len(p.leaves),
		Flowers: len(p.flowers),
	}
	for i := range p.nodes {
		n := &p.nodes[i]
		var seg float64
		if n.Parent != NoParent {
			seg = n.Pos.Sub(p.nodes[n.Parent].Pos).Len()
		}
		if n.State == Terminated {
			c.Terminated++
		}
		switch n.Kind {
		case systems.ShootNode:
			c.ShootNodes++
			c.StemLength += seg
			c.Height = math.Max(c.Height, n.Pos.Y)
			c.ShootXs = append(c.ShootXs, n.Pos.X)
			if n.IsTip() {
				c.TipVigor = append(c.TipVigor, n.Vigor)
			}
			if n.State == Growing {
				c.ShootTips++
			}
		case systems.RootNode:
			c.RootNodes++
			c.RootLength += seg
			c.RootDepth = math.Max(c.RootDepth, -n.Pos.Y)
			if n.State == Growing {
				c.RootTips++
			}
		}
	}
	for _, l := range p.leaves {
		c.LeafArea += l.Size
	}
	return c
}
