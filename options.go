package behaviortreex

import (
	"log/slog"
	"math/rand/v2"
)

// Option configures a Root via the functional options pattern.
type Option func(*Root)

// WithBlackboard supplies the tree's blackboard. Samplers built before the
// root usually need it, so tree factories create it first and pass it here.
func WithBlackboard(bb *Blackboard) Option {
	return func(r *Root) {
		if bb != nil {
			r.bb = bb
		}
	}
}

// WithClock supplies the tree's clock.
func WithClock(c *Clock) Option {
	return func(r *Root) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the structured logger. The tree id is attached to it.
func WithLogger(l *slog.Logger) Option {
	return func(r *Root) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRand supplies the random source owned by this tree.
func WithRand(rng *rand.Rand) Option {
	return func(r *Root) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithSeed seeds a new random source owned by this tree.
func WithSeed(seed uint64) Option {
	return func(r *Root) {
		r.rng = NewRand(seed)
	}
}

// WithID overrides the generated tree id.
func WithID(id string) Option {
	return func(r *Root) {
		if id != "" {
			r.id = id
		}
	}
}

// WithObserver registers a tick observer.
func WithObserver(o TickObserver) Option {
	return func(r *Root) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// NewRand returns a deterministic PCG source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
