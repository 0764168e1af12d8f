// Package tank is the behavior catalog for tank agents: it builds a
// behaviortreex tree per profile, bound to an actuator and a perception
// source.
package tank

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	bt "github.com/comalice/behaviortreex"
)

var (
	// ErrNoActuator is returned when Build is given a nil actuator.
	ErrNoActuator = errors.New("tank: nil actuator")

	// ErrNoPerception is returned when a perceiving profile is built without
	// a perception source.
	ErrNoPerception = errors.New("tank: nil perception source")
)

type buildOptions struct {
	params    *Params
	seed      uint64
	logger    *slog.Logger
	id        string
	observers []bt.TickObserver
}

// Option configures Build.
type Option func(*buildOptions)

// WithParams replaces the profile's default parameters.
func WithParams(p Params) Option {
	return func(o *buildOptions) { o.params = &p }
}

// WithSeed seeds the tree's random source.
func WithSeed(seed uint64) Option {
	return func(o *buildOptions) { o.seed = seed }
}

// WithLogger sets the tree logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// WithID sets the tree id, typically the agent name.
func WithID(id string) Option {
	return func(o *buildOptions) { o.id = id }
}

// WithObserver registers a tick observer on the tree.
func WithObserver(obs bt.TickObserver) Option {
	return func(o *buildOptions) { o.observers = append(o.observers, obs) }
}

// Build constructs the tree for profile p. Nothing is sampled or actuated
// until the returned root is started and ticked. Profiles outside the
// catalog get the default tree.
func Build(p Profile, act Actuator, src PerceptionSource, opts ...Option) (*bt.Root, error) {
	o := buildOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	params := DefaultParams(p)
	if o.params != nil {
		params = *o.params
	}
	if act == nil {
		return nil, ErrNoActuator
	}
	if !p.Known() {
		o.logger.Info("unknown behavior profile, using default tree", "profile", int(p))
	}
	if src == nil && perceives(p) {
		return nil, fmt.Errorf("%w: profile %s", ErrNoPerception, p)
	}

	b := &builder{
		params: params,
		act:    act,
		bb:     bt.NewBlackboard(),
		rng:    bt.NewRand(o.seed),
	}
	if src != nil {
		b.sampler = Sampler(src, b.bb)
	}

	rootOpts := []bt.Option{
		bt.WithBlackboard(b.bb),
		bt.WithRand(b.rng),
		bt.WithLogger(o.logger.With("profile", p.String())),
		bt.WithID(o.id),
	}
	for _, obs := range o.observers {
		rootOpts = append(rootOpts, bt.WithObserver(obs))
	}
	root, err := bt.NewRoot(b.tree(p), rootOpts...)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", p, err)
	}
	return root, nil
}

func perceives(p Profile) bool {
	return p.Known() && p != StationaryTurret
}

// builder assembles one profile tree around a shared blackboard and random
// source.
type builder struct {
	params  Params
	act     Actuator
	bb      *bt.Blackboard
	rng     *rand.Rand
	sampler func()
}

func (b *builder) tree(p Profile) bt.Node {
	switch p {
	case Frantic:
		return b.perceive(bt.NewSelector(
			b.when(KeyOffCentre, bt.OpLessOrEqual, b.params.FacingTolerance, b.aimAndFire()),
			b.when(KeyOnRight, bt.OpEqual, true, b.do(Turn(b.params.TurnRate))),
			b.when(KeyOnRight, bt.OpEqual, false, b.do(Turn(b.params.TurnRate))),
		))
	case AggressiveTracker:
		approach := fmt.Sprintf("%s && %s > %g", KeyInFront, KeyDistance, b.params.EngageRange)
		return b.perceive(bt.NewSelector(
			b.when(KeyOffCentre, bt.OpLessOrEqual, b.params.FacingTolerance, b.aimAndFire()),
			bt.NewExprCondition(approach, bt.StopsImmediateRestart, b.do(Move(0.1))),
			b.when(KeyOnRight, bt.OpEqual, true, b.do(Turn(b.params.TurnRate))),
			b.when(KeyOnRight, bt.OpEqual, false, b.do(Turn(-b.params.TurnRate))),
		))
	case Defensive:
		return b.perceive(bt.NewSelector(
			b.when(KeyDistance, bt.OpLessOrEqual, b.params.FleeRange, b.do(Move(-1))),
			b.when(KeyDistance, bt.OpLessOrEqual, b.params.FireRange, b.aimAndFire()),
		))
	case Erratic:
		wander := (b.rng.Float64()*2 - 1) * b.params.MaxRandomTurn
		return b.perceive(bt.NewSelector(
			b.when(KeyInFront, bt.OpEqual, true, bt.NewSequence(b.do(Move(1)), b.do(Fire(1)))),
			bt.Named(b.do(Turn(wander)), "wander"),
		))
	case StationaryTurret:
		return bt.NewSequence(b.do(Turn(b.params.SpinRate)), b.do(Fire(b.params.SpinPower)))
	case Tracker:
		return b.perceive(bt.NewSelector(
			b.when(KeyOffCentre, bt.OpLessOrEqual, b.params.FacingTolerance, b.aimAndFire()),
			b.when(KeyOnRight, bt.OpEqual, true, b.do(Turn(b.params.TurnRate))),
			b.do(Turn(-b.params.TurnRate)),
		))
	default:
		return b.do(Turn(b.params.TurnRate))
	}
}

func (b *builder) perceive(child bt.Node) bt.Node {
	name := "perception(" + b.params.PerceptionInterval.String() + ")"
	return bt.Named(bt.NewService(b.params.PerceptionInterval, b.sampler, child), name)
}

func (b *builder) when(key string, op bt.Operator, threshold any, child bt.Node) bt.Node {
	return bt.NewBlackboardCondition(key, op, threshold, bt.StopsImmediateRestart, child)
}

// aimAndFire stops turning, waits for the fire delay and fires at random power.
func (b *builder) aimAndFire() bt.Node {
	return bt.NewSequence(b.do(StopTurning()), bt.NewWait(b.params.FireDelay), b.do(RandomFire()))
}

func (b *builder) do(c Command) *bt.Action {
	return c.Action(b.act, b.rng)
}
