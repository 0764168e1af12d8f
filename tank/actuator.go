package tank

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	bt "github.com/comalice/behaviortreex"
)

// Actuator is the movement and weapon interface of a tank body. Rates are
// normalised to [-1, 1] (positive turns right and moves forward); fire power
// is normalised to [0, 1].
type Actuator interface {
	Turn(rate float64)
	Move(rate float64)
	Fire(power float64)
}

// Op is an actuator operation.
type Op int

const (
	OpTurn Op = iota
	OpMove
	OpFire
)

func (o Op) String() string {
	switch o {
	case OpTurn:
		return "turn"
	case OpMove:
		return "move"
	case OpFire:
		return "fire"
	default:
		return "op(" + strconv.Itoa(int(o)) + ")"
	}
}

// Command describes an actuator call. Random fire commands draw their power
// from the tree's random source at tick time.
type Command struct {
	Op     Op
	Value  float64
	Random bool
}

// Turn sets the turn rate.
func Turn(rate float64) Command { return Command{Op: OpTurn, Value: rate} }

// Move sets the forward rate; negative reverses.
func Move(rate float64) Command { return Command{Op: OpMove, Value: rate} }

// Fire launches a shell at the given power.
func Fire(power float64) Command { return Command{Op: OpFire, Value: power} }

// StopTurning sets the turn rate to zero.
func StopTurning() Command { return Turn(0) }

// RandomFire launches a shell at a power drawn uniformly from [0, 1).
func RandomFire() Command { return Command{Op: OpFire, Random: true} }

// Name renders the command as an action name, e.g. "turn(0.2)".
func (c Command) Name() string {
	if c.Random {
		return c.Op.String() + "(random)"
	}
	return fmt.Sprintf("%s(%g)", c.Op, c.Value)
}

// Apply issues the command to a, clamping the value to the operation's range.
func (c Command) Apply(a Actuator, rng *rand.Rand) {
	v := c.Value
	if c.Random && rng != nil {
		v = rng.Float64()
	}
	switch c.Op {
	case OpTurn:
		a.Turn(clamp(v, -1, 1))
	case OpMove:
		a.Move(clamp(v, -1, 1))
	case OpFire:
		a.Fire(clamp(v, 0, 1))
	}
}

// Action binds the command to a and rng as a tree leaf.
func (c Command) Action(a Actuator, rng *rand.Rand) *bt.Action {
	return bt.NewAction(c.Name(), func() { c.Apply(a, rng) })
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
