package behaviortreex

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// TickRecord describes one completed root tick.
type TickRecord struct {
	TreeID string
	Tick   uint64
	Status Status
	Now    time.Duration
	Dirty  []string
}

// TickObserver is notified after every root tick, on the ticking goroutine.
type TickObserver interface {
	ObserveTick(TickRecord)
}

// TickObserverFunc adapts a func to TickObserver.
type TickObserverFunc func(TickRecord)

func (f TickObserverFunc) ObserveTick(rec TickRecord) { f(rec) }

// Root is the single entry point of a tree and the handle the host drives.
// It owns the subtree, the blackboard, the clock and the random source.
//
// Lifecycle: NewRoot once per agent, Start when the agent activates, Update
// once per simulation step, Stop on deactivation. A stopped root is never
// restarted.
type Root struct {
	node
	child     Node
	id        string
	bb        *Blackboard
	clock     *Clock
	logger    *slog.Logger
	rng       *rand.Rand
	observers []TickObserver
	ticks     uint64
	tickStart time.Duration
	started   bool
	stopped   bool
}

// NewRoot attaches every node under child to a new root and validates the
// tree. All construction errors are joined and wrapped in ErrInvalidTree.
func NewRoot(child Node, opts ...Option) (*Root, error) {
	r := &Root{
		node:  node{name: "root"},
		child: child,
		bb:    NewBlackboard(),
		clock: NewClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.id == "" {
		r.id = uuid.NewString()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("tree", r.id)
	if r.rng == nil {
		r.rng = NewRand(0)
	}
	r.root = r

	if child == nil {
		return nil, fmt.Errorf("%w: %w: root", ErrInvalidTree, ErrNilChild)
	}
	var errs []error
	r.attach(child, &errs)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTree, errors.Join(errs...))
	}
	return r, nil
}

func (r *Root) attach(n Node, errs *[]error) {
	if _, nested := n.(*Root); nested {
		*errs = append(*errs, fmt.Errorf("%w: root %q nested inside another tree", ErrAttached, n.Name()))
		return
	}
	b := n.base()
	if b.root != nil {
		*errs = append(*errs, fmt.Errorf("%w: %q", ErrAttached, n.Name()))
		return
	}
	b.root = r
	if b.err != nil {
		*errs = append(*errs, b.err)
	}
	for _, c := range n.Children() {
		if c != nil {
			r.attach(c, errs)
		}
	}
}

// ID returns the tree id.
func (r *Root) ID() string { return r.id }

// Blackboard returns the tree's blackboard.
func (r *Root) Blackboard() *Blackboard { return r.bb }

// Clock returns the tree's clock.
func (r *Root) Clock() *Clock { return r.clock }

// Rand returns the random source owned by the tree.
func (r *Root) Rand() *rand.Rand { return r.rng }

// Logger returns the tree's logger.
func (r *Root) Logger() *slog.Logger { return r.logger }

// TickCount returns the number of updates evaluated so far.
func (r *Root) TickCount() uint64 { return r.ticks }

// Running reports whether the root has been started and not stopped.
func (r *Root) Running() bool { return r.started && !r.stopped }

func (r *Root) Children() []Node { return []Node{r.child} }

// Start activates the root. Starting a running root is a no-op; starting a
// stopped root returns ErrStopped. No node is touched until the first Update.
func (r *Root) Start() {
	_ = r.Activate()
}

// Activate is Start with an error for hosts that need to detect reuse of a
// stopped tree.
func (r *Root) Activate() error {
	if r.stopped {
		return ErrStopped
	}
	if r.started {
		return nil
	}
	r.started = true
	r.status = StatusRunning
	r.logger.Debug("tree started")
	return nil
}

// Stop synchronously stops every active node, clears the blackboard and
// retires the root.
func (r *Root) Stop() {
	if r.stopped {
		return
	}
	r.child.Stop()
	r.bb.Clear()
	r.stopped = true
	r.status = StatusInactive
	r.logger.Debug("tree stopped", "ticks", r.ticks)
}

// Tick evaluates the tree without advancing the clock.
func (r *Root) Tick() Status {
	return r.Update(0)
}

// Update advances the clock by dt and evaluates the tree once. It never
// panics and never returns an error: a failing or panicking subtree resolves
// to StatusFailure. It reports StatusInactive when the root is not running.
// When the child completes, the next update restarts it. The root's own
// Status stays running until Stop.
func (r *Root) Update(dt time.Duration) Status {
	if !r.Running() {
		return StatusInactive
	}
	r.ticks++
	r.tickStart = r.clock.Now()
	r.clock.Advance(dt)

	st := r.tickChild()

	rec := TickRecord{TreeID: r.id, Tick: r.ticks, Status: st, Now: r.clock.Now(), Dirty: r.bb.Dirty()}
	r.bb.ResetDirty()
	for _, o := range r.observers {
		o.ObserveTick(rec)
	}
	return st
}

func (r *Root) tickChild() (st Status) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("tick panicked, resetting tree", "tick", r.ticks, "panic", fmt.Sprint(p))
			r.child.Stop()
			st = StatusFailure
		}
	}()
	return r.child.Tick()
}

// Walk visits every node depth first, starting with the root, until fn
// returns false.
func (r *Root) Walk(fn func(n Node, depth int) bool) {
	walk(r, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) bool {
	if !fn(n, depth) {
		return false
	}
	for _, c := range n.Children() {
		if !walk(c, depth+1, fn) {
			return false
		}
	}
	return true
}
