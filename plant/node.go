package plant

import "github.com/pthm-cable/sprout/systems"

// NodeID is a stable index into the plant's node arena.
type NodeID int32

// NoParent marks the two seed nodes.
const NoParent NodeID = -1

// GrowthState is the per-node growth state machine:
//
//	Growing -> Extended | Branched | Terminated
//
// Only Growing nodes are tips that take growth decisions. No state leads back
// to Growing.
type GrowthState uint8

const (
	Growing GrowthState = iota
	Extended
	Branched
	Terminated
)

func (s GrowthState) String() string {
	switch s {
	case Growing:
		return "growing"
	case Extended:
		return "extended"
	case Branched:
		return "branched"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Node is a point of the shoot or root tree.
type Node struct {
	ID       NodeID
	Kind     systems.NodeKind
	Pos      systems.Vec2
	Heading  float64
	Born     int
	AxisBorn int
	Parent   NodeID
	Children []NodeID
	State    GrowthState
	Flowered bool
	Leaves   int
	Vigor    float64 // growth factor of the decision that created or last evaluated the node
}

// IsTip reports whether the node has no children. Terminated tips stay tips.
func (n *Node) IsTip() bool { return len(n.Children) == 0 }

// view returns the read-only state the growth rules decide on.
func (n *Node) view() systems.NodeState {
	return systems.NodeState{
		Kind:     n.Kind,
		Pos:      n.Pos,
		Heading:  n.Heading,
		Born:     n.Born,
		AxisBorn: n.AxisBorn,
		Tip:      n.IsTip(),
		Flowered: n.Flowered,
	}
}

// Leaf is attached to a shoot node.
type Leaf struct {
	Node NodeID
	Pos  systems.Vec2
	Born int
	Size float64
}

// Flower is attached to a shoot tip; each node carries at most one.
type Flower struct {
	Node  NodeID
	Pos   systems.Vec2
	Born  int
	Color string
	Size  float64
}
