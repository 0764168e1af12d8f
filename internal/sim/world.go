// Package sim is a headless 2D arena for tank agents: bodies that implement
// tank.Actuator and tank.PerceptionSource, hitscan shells, and a match that
// keeps behavior trees and physics in lock step.
package sim

import (
	"math"
	"sync"
	"time"

	"github.com/comalice/behaviortreex/internal/config"
)

// Settings are the physical constants of an arena.
type Settings struct {
	ArenaSize    float64 // half-width of the square arena
	HitRadius    float64
	MaxSpeed     float64 // units per second at move rate 1
	MaxTurnSpeed float64 // radians per second at turn rate 1
	ShellRange   float64 // range at fire power 1
	ShellDamage  float64
	Health       float64
	Reload       time.Duration
}

// SettingsFrom converts the simulation section of a configuration.
func SettingsFrom(c *config.SimulationConfig) Settings {
	return Settings{
		ArenaSize:    c.ArenaSize,
		HitRadius:    c.HitRadius,
		MaxSpeed:     c.MaxSpeed,
		MaxTurnSpeed: c.MaxTurnSpeed * math.Pi / 180,
		ShellRange:   c.ShellRange,
		ShellDamage:  c.ShellDamage,
		Health:       c.Health,
		Reload:       c.Reload.Duration,
	}
}

// Pose is a position and heading. Heading is in radians, 0 faces +z and
// positive angles turn right (clockwise seen from above).
type Pose struct {
	X, Z    float64
	Heading float64
}

// Local returns the position of (x, z) in the frame of p: +z ahead, +x right.
func (p Pose) Local(x, z float64) (lx, lz float64) {
	dx, dz := x-p.X, z-p.Z
	sin, cos := math.Sincos(p.Heading)
	return dx*cos - dz*sin, dx*sin + dz*cos
}

// EventKind classifies a world event.
type EventKind int

const (
	EventShot EventKind = iota
	EventHit
	EventKill
)

func (k EventKind) String() string {
	switch k {
	case EventShot:
		return "shot"
	case EventHit:
		return "hit"
	case EventKill:
		return "kill"
	default:
		return "unknown"
	}
}

// Event is something that happened during a step.
type Event struct {
	At     time.Duration
	Kind   EventKind
	Tank   string
	Target string
	Power  float64
}

// World owns every tank. Actuator and perception calls may come from tree
// goroutines, so all state is guarded by mu.
type World struct {
	mu       sync.Mutex
	settings Settings
	tanks    []*Tank
	now      time.Duration
	events   []Event
}

// NewWorld creates an empty arena.
func NewWorld(s Settings) *World {
	return &World{settings: s}
}

// Spawn adds a tank at pose with full health.
func (w *World) Spawn(name string, pose Pose) *Tank {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := &Tank{name: name, world: w, pose: pose, trigger: -1, health: w.settings.Health, lastShot: -w.settings.Reload}
	w.tanks = append(w.tanks, t)
	return t
}

// Now returns the simulated time.
func (w *World) Now() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.now
}

// Events returns a copy of every event so far.
func (w *World) Events() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Event, len(w.events))
	copy(out, w.events)
	return out
}

// Alive returns the number of living tanks.
func (w *World) Alive() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, t := range w.tanks {
		if t.alive() {
			n++
		}
	}
	return n
}

// Step integrates motion for dt and resolves pending shots in spawn order.
func (w *World) Step(dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.now += dt
	secs := dt.Seconds()
	for _, t := range w.tanks {
		if !t.alive() {
			continue
		}
		t.pose.Heading = normalizeAngle(t.pose.Heading + t.turn*w.settings.MaxTurnSpeed*secs)
		sin, cos := math.Sincos(t.pose.Heading)
		dist := t.move * w.settings.MaxSpeed * secs
		t.pose.X = clamp(t.pose.X+sin*dist, w.settings.ArenaSize)
		t.pose.Z = clamp(t.pose.Z+cos*dist, w.settings.ArenaSize)
	}
	for _, t := range w.tanks {
		if t.alive() && t.trigger >= 0 {
			w.shoot(t, t.trigger)
		}
		t.trigger = -1
	}
}

// shoot fires a hitscan shell along t's heading. The nearest living tank
// within HitRadius of the firing line and within range is hit.
func (w *World) shoot(t *Tank, power float64) {
	if w.now-t.lastShot < w.settings.Reload {
		return
	}
	t.lastShot = w.now
	t.shots++
	w.events = append(w.events, Event{At: w.now, Kind: EventShot, Tank: t.name, Power: power})

	reach := power * w.settings.ShellRange
	var victim *Tank
	best := math.Inf(1)
	for _, o := range w.tanks {
		if o == t || !o.alive() {
			continue
		}
		lx, lz := t.pose.Local(o.pose.X, o.pose.Z)
		if lz < 0 || lz > reach || math.Abs(lx) > w.settings.HitRadius {
			continue
		}
		if lz < best {
			best, victim = lz, o
		}
	}
	if victim == nil {
		return
	}
	t.hits++
	victim.health -= w.settings.ShellDamage
	w.events = append(w.events, Event{At: w.now, Kind: EventHit, Tank: t.name, Target: victim.name, Power: power})
	if !victim.alive() {
		w.events = append(w.events, Event{At: w.now, Kind: EventKill, Tank: t.name, Target: victim.name})
	}
}

func clamp(v, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	return max(-limit, min(limit, v))
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
