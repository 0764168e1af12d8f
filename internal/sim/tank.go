package sim

import (
	"math"
	"time"

	"github.com/comalice/behaviortreex/tank"
)

// Tank is a body in the arena. It implements tank.Actuator and
// tank.PerceptionSource; every method is safe for concurrent use.
type Tank struct {
	name     string
	world    *World
	pose     Pose
	turn     float64
	move     float64
	trigger  float64 // pending fire power, -1 when none
	health   float64
	lastShot time.Duration
	shots    int
	hits     int
}

var (
	_ tank.Actuator         = (*Tank)(nil)
	_ tank.PerceptionSource = (*Tank)(nil)
)

// Name returns the tank name.
func (t *Tank) Name() string { return t.name }

// Turn sets the turn rate in [-1, 1].
func (t *Tank) Turn(rate float64) {
	t.world.mu.Lock()
	defer t.world.mu.Unlock()
	t.turn = rate
}

// Move sets the forward rate in [-1, 1].
func (t *Tank) Move(rate float64) {
	t.world.mu.Lock()
	defer t.world.mu.Unlock()
	t.move = rate
}

// Fire requests a shot at power in [0, 1], resolved by the next world step.
// Shots during reload are dropped.
func (t *Tank) Fire(power float64) {
	t.world.mu.Lock()
	defer t.world.mu.Unlock()
	t.trigger = power
}

// Sample perceives the nearest living opponent. With no opponent left the
// target reads as infinitely far, behind and to the left.
func (t *Tank) Sample() tank.Perception {
	t.world.mu.Lock()
	defer t.world.mu.Unlock()

	var target *Tank
	best := math.Inf(1)
	for _, o := range t.world.tanks {
		if o == t || !o.alive() {
			continue
		}
		if d := math.Hypot(o.pose.X-t.pose.X, o.pose.Z-t.pose.Z); d < best {
			best, target = d, o
		}
	}
	if target == nil {
		return tank.Perception{Distance: math.Inf(1), OffCentre: 1}
	}
	return tank.FromLocal(t.pose.Local(target.pose.X, target.pose.Z))
}

// State is a snapshot of a tank.
type State struct {
	Name   string
	Pose   Pose
	Health float64
	Alive  bool
	Shots  int
	Hits   int
}

// State returns a snapshot of the tank.
func (t *Tank) State() State {
	t.world.mu.Lock()
	defer t.world.mu.Unlock()
	return State{Name: t.name, Pose: t.pose, Health: t.health, Alive: t.alive(), Shots: t.shots, Hits: t.hits}
}

// Alive reports whether the tank has health left.
func (t *Tank) Alive() bool {
	t.world.mu.Lock()
	defer t.world.mu.Unlock()
	return t.alive()
}

func (t *Tank) alive() bool { return t.health > 0 }
