package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/sprout/config"
)

// Growth rules are pure functions of a node's local state and the field
// samples at its tip. All randomness comes from the injected *rand.Rand, and
// each decision consumes draws in a fixed order:
//
//	shoot/root: [branch draw, perturbation, (second perturbation if branching)]
//	leaf:       one draw per call
//
// Terminated decisions consume no draws.

const (
	upAngle   = math.Pi / 2
	downAngle = -math.Pi / 2

	// pinnedEpsilon is the minimum move for a clamped tip to count as growth.
	pinnedEpsilon = 1e-9
)

// NewRNG creates the seeded random source shared by all growth decisions.
func NewRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NodeKind distinguishes the shoot tree from the root tree.
type NodeKind uint8

const (
	ShootNode NodeKind = iota
	RootNode
)

func (k NodeKind) String() string {
	if k == RootNode {
		return "root"
	}
	return "shoot"
}

// NodeState is the read-only view of a node that the rules decide on.
type NodeState struct {
	Kind     NodeKind
	Pos      Vec2
	Heading  float64 // radians, 0 = +x, pi/2 = up
	Born     int     // cycle the node was created
	AxisBorn int     // cycle the axis (unbranched run of extensions) began
	Tip      bool    // no children
	Flowered bool
}

// ShootSamples are the field values seen by a shoot tip.
type ShootSamples struct {
	Sunlight    float64
	Temperature float64
	Water       float64 // plant water uptake, mean moisture over root tips
	Gradient    Vec2    // sunlight gradient
}

// RootSamples are the field values seen by a root tip.
type RootSamples struct {
	Moisture float64
	Gradient Vec2 // moisture gradient
}

// ActionKind is the outcome of a growth decision.
type ActionKind uint8

const (
	Extend ActionKind = iota
	Branch
	Terminate
)

func (k ActionKind) String() string {
	switch k {
	case Extend:
		return "extend"
	case Branch:
		return "branch"
	case Terminate:
		return "terminate"
	}
	return fmt.Sprintf("action(%d)", uint8(k))
}

// GrowthAction describes how a tip changes this cycle. Extend uses index 0 of
// Headings/Positions, Branch uses both, Terminate uses neither.
type GrowthAction struct {
	Kind      ActionKind
	Headings  [2]float64
	Positions [2]Vec2
	Vigor     float64 // growth factor the decision was based on
}

// Children returns the number of nodes the action creates.
func (a GrowthAction) Children() int {
	switch a.Kind {
	case Extend:
		return 1
	case Branch:
		return 2
	}
	return 0
}

// TemperatureFactor is 1 at the optimum, falling linearly to 0 at the tolerance.
func TemperatureFactor(t float64, p config.ShootConfig) float64 {
	return clamp01(1 - math.Abs(t-p.OptimalTemperature)/p.TemperatureTolerance)
}

// ShootGrowthFactor combines light, water and temperature into [0,1].
func ShootGrowthFactor(s ShootSamples, p config.ShootConfig) float64 {
	return clamp01(s.Sunlight) * clamp01(s.Water) * TemperatureFactor(s.Temperature, p)
}

// tropism returns the heading change toward a gradient. The pull saturates
// with gradient magnitude m as m*k/(1+m*k).
func tropism(heading float64, grad Vec2, weight, sensitivity float64) float64 {
	m := grad.Len()
	if m == 0 || weight == 0 {
		return 0
	}
	strength := m * sensitivity / (1 + m*sensitivity)
	return weight * strength * normalizeAngle(grad.Angle()-heading)
}

func perturbation(rng *rand.Rand, angleRange float64) float64 {
	return (rng.Float64()*2 - 1) * angleRange
}

type growthStep struct {
	kind         FieldKind
	baseHeading  float64
	length       float64
	angleRange   float64
	branchProb   float64
	branchSpread float64
}

// decide applies the shared branch-or-extend logic. The branch check runs
// first; a branch whose children would both be pinned against the domain
// terminates, and one with a single pinned child degrades to an extension.
func decide(n NodeState, g growthStep, vigor float64, d Domain, rng *rand.Rand) GrowthAction {
	grow := func(h float64) (Vec2, bool) {
		p := d.Clamp(g.kind, n.Pos.Add(FromAngle(h).Scale(g.length)))
		return p, p.Sub(n.Pos).Len() > pinnedEpsilon
	}

	if rng.Float64() < g.branchProb {
		h0 := normalizeAngle(g.baseHeading - g.branchSpread/2 + perturbation(rng, g.angleRange))
		h1 := normalizeAngle(g.baseHeading + g.branchSpread/2 + perturbation(rng, g.angleRange))
		p0, ok0 := grow(h0)
		p1, ok1 := grow(h1)
		switch {
		case ok0 && ok1:
			return GrowthAction{Kind: Branch, Headings: [2]float64{h0, h1}, Positions: [2]Vec2{p0, p1}, Vigor: vigor}
		case ok0:
			return GrowthAction{Kind: Extend, Headings: [2]float64{h0}, Positions: [2]Vec2{p0}, Vigor: vigor}
		case ok1:
			return GrowthAction{Kind: Extend, Headings: [2]float64{h1}, Positions: [2]Vec2{p1}, Vigor: vigor}
		}
		return GrowthAction{Kind: Terminate, Vigor: vigor}
	}

	h := normalizeAngle(g.baseHeading + perturbation(rng, g.angleRange))
	p, ok := grow(h)
	if !ok {
		return GrowthAction{Kind: Terminate, Vigor: vigor}
	}
	return GrowthAction{Kind: Extend, Headings: [2]float64{h}, Positions: [2]Vec2{p}, Vigor: vigor}
}

// DecideShootGrowth picks the action of a growing shoot tip. The heading
// bends toward brighter light and toward vertical, then gets a random
// perturbation of at most ±AngleRange. Segment length scales with the growth
// factor; tips below MinGrowth terminate.
func DecideShootGrowth(n NodeState, s ShootSamples, p config.ShootConfig, d Domain, rng *rand.Rand) GrowthAction {
	vigor := ShootGrowthFactor(s, p)
	if vigor < p.MinGrowth {
		return GrowthAction{Kind: Terminate, Vigor: vigor}
	}
	turn := tropism(n.Heading, s.Gradient, p.Phototropism, p.GradientSensitivity) +
		p.Gravitropism*normalizeAngle(upAngle-n.Heading)
	return decide(n, growthStep{
		kind:         Sunlight,
		baseHeading:  n.Heading + turn,
		length:       p.BaseLength * vigor,
		angleRange:   p.AngleRange,
		branchProb:   p.BranchProbability,
		branchSpread: p.BranchSpread,
	}, vigor, d, rng)
}

// DecideRootGrowth picks the action of a growing root tip. Roots bend toward
// wetter soil and toward straight down; length scales with local moisture.
func DecideRootGrowth(n NodeState, s RootSamples, p config.RootConfig, d Domain, rng *rand.Rand) GrowthAction {
	vigor := clamp01(s.Moisture)
	if vigor < p.MinMoisture {
		return GrowthAction{Kind: Terminate, Vigor: vigor}
	}
	turn := tropism(n.Heading, s.Gradient, p.Hydrotropism, p.GradientSensitivity) +
		p.Gravitropism*normalizeAngle(downAngle-n.Heading)
	return decide(n, growthStep{
		kind:         Moisture,
		baseHeading:  n.Heading + turn,
		length:       p.BaseLength * vigor,
		angleRange:   p.AngleRange,
		branchProb:   p.BranchProbability,
		branchSpread: p.BranchSpread,
	}, vigor, d, rng)
}

// ShouldFlower reports whether a node gets its flower this cycle: it must be
// an unflowered shoot tip whose axis is at least threshold cycles old.
// Once Flowered is set the answer is always false.
func ShouldFlower(n NodeState, cycle, threshold int) bool {
	return n.Kind == ShootNode && n.Tip && !n.Flowered && cycle-n.AxisBorn >= threshold
}

// ShouldGrowLeaf is a Bernoulli draw with the given probability.
func ShouldGrowLeaf(probability float64, rng *rand.Rand) bool {
	return rng.Float64() < probability
}

// PickColor draws a flower color token from the palette.
func PickColor(palette []string, rng *rand.Rand) string {
	return palette[rng.Intn(len(palette))]
}
