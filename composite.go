package behaviortreex

import "fmt"

// Sequence ticks its children in order and succeeds when all succeed (AND).
//
// On child success the cursor advances and the next child is ticked within
// the same pass. The first failure fails the whole sequence; both outcomes
// reset the cursor to the first child.
type Sequence struct {
	node
	children []Node
	cursor   int
}

// NewSequence creates a Sequence over children in authored order.
func NewSequence(children ...Node) *Sequence {
	s := &Sequence{node: node{name: "sequence"}, children: children}
	s.err = checkChildren(s.name, children)
	return s
}

func (s *Sequence) Children() []Node { return s.children }

func (s *Sequence) Start() {
	s.cursor = 0
	s.status = StatusRunning
}

func (s *Sequence) Stop() {
	if s.status == StatusInactive {
		return
	}
	stopAll(s.children)
	s.cursor = 0
	s.status = StatusInactive
}

func (s *Sequence) Tick() Status {
	if !s.running() {
		s.Start()
	}
	for s.cursor < len(s.children) {
		switch s.children[s.cursor].Tick() {
		case StatusRunning:
			return s.status
		case StatusSuccess:
			s.cursor++
		default:
			return s.finish(StatusFailure)
		}
	}
	return s.finish(StatusSuccess)
}

func (s *Sequence) finish(st Status) Status {
	s.cursor = 0
	s.status = st
	return st
}

// Selector ticks its children in priority order and reports the first child
// that runs or succeeds (OR). Children are re-checked from the top on every
// tick, so a higher-priority branch preempts a running lower one.
//
// While a lower child is running, an earlier guard (a Condition) is consulted
// without side effects. It only preempts when its Stops policy aborts lower
// priority and its predicate holds; the running child is stopped before the
// guard's subtree is ticked. Earlier non-guard children are simply re-ticked.
type Selector struct {
	node
	children []Node
	active   int
}

// guard is implemented by decorators that can preempt lower-priority siblings.
type guard interface {
	Node
	evaluate() bool
	abortsLowerPriority() bool
	restartsImmediately() bool
}

// NewSelector creates a Selector over children in priority order.
func NewSelector(children ...Node) *Selector {
	s := &Selector{node: node{name: "selector"}, children: children, active: -1}
	s.err = checkChildren(s.name, children)
	return s
}

func (s *Selector) Children() []Node { return s.children }

// Active returns the index of the running child, or -1.
func (s *Selector) Active() int { return s.active }

func (s *Selector) Start() {
	s.active = -1
	s.status = StatusRunning
}

func (s *Selector) Stop() {
	if s.status == StatusInactive {
		return
	}
	stopAll(s.children)
	s.active = -1
	s.status = StatusInactive
}

func (s *Selector) Tick() Status {
	if !s.running() {
		s.Start()
	}
	prev := s.active
	for i := 0; i < len(s.children); i++ {
		c := s.children[i]
		if prev >= 0 && i < prev {
			if g, ok := c.(guard); ok {
				if !g.abortsLowerPriority() || !g.evaluate() {
					continue
				}
				s.preempt(prev, c)
				if !g.restartsImmediately() {
					// The aborted child counts as failed; carry on after it.
					i, prev = prev, -1
					continue
				}
				prev = -1
			}
		}

		st := c.Tick()
		if st == StatusFailure {
			continue
		}
		if prev >= 0 && i < prev {
			s.preempt(prev, c)
		}
		if st == StatusRunning {
			s.active = i
			return s.status
		}
		return s.finish(st)
	}
	return s.finish(StatusFailure)
}

func (s *Selector) preempt(idx int, by Node) {
	victim := s.children[idx]
	s.logger().Debug("preempting lower priority branch",
		"node", s.name, "stopped", victim.Name(), "by", by.Name())
	victim.Stop()
	s.active = -1
}

func (s *Selector) finish(st Status) Status {
	s.active = -1
	s.status = st
	return st
}

func checkChildren(name string, children []Node) error {
	for i, c := range children {
		if c == nil {
			return fmt.Errorf("%w: %s child %d", ErrNilChild, name, i)
		}
	}
	return nil
}
