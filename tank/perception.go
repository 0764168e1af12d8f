package tank

import (
	"math"

	bt "github.com/comalice/behaviortreex"
)

// Blackboard keys written by the perception sampler.
const (
	KeyDistance  = "targetDistance"
	KeyInFront   = "targetInFront"
	KeyOnRight   = "targetOnRight"
	KeyOffCentre = "targetOffCentre"
)

// Perception is what a tank knows about its target.
type Perception struct {
	Distance  float64
	InFront   bool
	OnRight   bool
	OffCentre float64 // |x| of the unit direction to the target, 0 when dead ahead
}

// FromLocal derives a Perception from the target's position in the tank's
// own frame, where +z is forward and +x is right. A target at the origin
// is neither in front nor on the right.
func FromLocal(x, z float64) Perception {
	dist := math.Hypot(x, z)
	if dist == 0 {
		return Perception{}
	}
	hx, hz := x/dist, z/dist
	return Perception{
		Distance:  dist,
		InFront:   hz > 0,
		OnRight:   hx > 0,
		OffCentre: math.Abs(hx),
	}
}

// WriteTo stores the perception under the sampler keys.
func (p Perception) WriteTo(bb *bt.Blackboard) {
	bb.Set(KeyDistance, p.Distance)
	bb.Set(KeyInFront, p.InFront)
	bb.Set(KeyOnRight, p.OnRight)
	bb.Set(KeyOffCentre, p.OffCentre)
}

// PerceptionSource reads the current perception of one tank.
type PerceptionSource interface {
	Sample() Perception
}

// PerceptionFunc adapts a func to PerceptionSource.
type PerceptionFunc func() Perception

func (f PerceptionFunc) Sample() Perception { return f() }

// Sampler returns a service callback that refreshes bb from src.
func Sampler(src PerceptionSource, bb *bt.Blackboard) func() {
	return func() { src.Sample().WriteTo(bb) }
}
