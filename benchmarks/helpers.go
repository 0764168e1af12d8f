// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"
	"math"

	bt "github.com/comalice/behaviortreex"
	"github.com/comalice/behaviortreex/tank"
)

// NopActuator discards every command.
type NopActuator struct{}

func (NopActuator) Turn(float64) {}
func (NopActuator) Move(float64) {}
func (NopActuator) Fire(float64) {}

// OrbitingTarget is a perception source whose target circles the agent, so
// conditions flip and selectors preempt over time.
type OrbitingTarget struct {
	Radius float64
	Step   float64
	angle  float64
}

func (o *OrbitingTarget) Sample() tank.Perception {
	o.angle += o.Step
	return tank.FromLocal(o.Radius*math.Sin(o.angle), o.Radius*math.Cos(o.angle))
}

// ProfileTree builds a started tree for p against a circling target.
func ProfileTree(p tank.Profile) (*bt.Root, error) {
	root, err := tank.Build(p, NopActuator{}, &OrbitingTarget{Radius: 20, Step: 0.05}, tank.WithSeed(1), tank.WithID(p.String()))
	if err != nil {
		return nil, err
	}
	return root, root.Activate()
}

// GenWideSelector creates a selector of n guarded actions where only the
// last guard passes, so every tick evaluates every guard.
func GenWideSelector(n int) bt.Node {
	if n < 1 {
		n = 1
	}
	children := make([]bt.Node, n)
	for i := 0; i < n-1; i++ {
		children[i] = bt.NewBlackboardCondition(fmt.Sprintf("k%d", i), bt.OpIsSet, nil, bt.StopsLowerPriority,
			bt.NewAction(fmt.Sprintf("a%d", i), func() {}))
	}
	children[n-1] = bt.NewAction("fallback", func() {})
	return bt.NewSelector(children...)
}

// GenDeepSequence nests depth sequences around a single action.
func GenDeepSequence(depth int) bt.Node {
	var n bt.Node = bt.NewAction("leaf", func() {})
	for i := 0; i < depth; i++ {
		n = bt.NewSequence(n)
	}
	return n
}
