package behaviortreex

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// predicate is the test a Condition gates its child on.
type predicate interface {
	evaluate(c *Condition) bool
	String() string
}

// Condition gates a single child on a predicate over the blackboard.
//
// Each tick the predicate is evaluated. While false and the child is not
// running, the condition fails without touching the child. While true, the
// child is started and ticked and its status propagated. A running child
// whose predicate turns false is stopped immediately when the Stops policy
// includes self, and the condition fails in that same tick.
type Condition struct {
	node
	pred      predicate
	stops     Stops
	child     Node
	last      bool
	evaluated bool
}

// NewBlackboardCondition gates child on op(blackboard[key], threshold).
// Invalid key/operator/threshold combinations are reported by NewRoot.
func NewBlackboardCondition(key string, op Operator, threshold any, stops Stops, child Node) *Condition {
	cmp, err := newComparison(key, op, threshold)
	c := newCondition(cmp, stops, child)
	if err != nil {
		c.err = err
	}
	return c
}

// NewExprCondition gates child on a boolean expr-lang expression evaluated
// against a snapshot of the blackboard, e.g. "targetInFront && targetDistance > 15".
// The expression is compiled here; compile errors are reported by NewRoot.
// Evaluation errors, such as comparing an unset key, read as false.
func NewExprCondition(expression string, stops Stops, child Node) *Condition {
	program, err := expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
	c := newCondition(&exprPredicate{source: expression, program: program}, stops, child)
	if err != nil {
		c.err = fmt.Errorf("%w: expression %q: %w", ErrInvalidCondition, expression, err)
	}
	return c
}

func newCondition(p predicate, stops Stops, child Node) *Condition {
	c := &Condition{node: node{name: "if " + p.String()}, pred: p, stops: stops, child: child}
	switch {
	case child == nil:
		c.err = fmt.Errorf("%w: condition %q", ErrNilChild, c.name)
	case !stops.valid():
		c.err = fmt.Errorf("%w: condition %q: unknown stops policy %s", ErrInvalidCondition, c.name, stops)
	}
	return c
}

// Stops returns the abort policy.
func (c *Condition) Stops() Stops { return c.stops }

// LastResult returns the most recently evaluated predicate value.
func (c *Condition) LastResult() bool { return c.last }

func (c *Condition) Children() []Node {
	if c.child == nil {
		return nil
	}
	return []Node{c.child}
}

func (c *Condition) Start() { c.status = StatusRunning }

func (c *Condition) Stop() {
	if c.status == StatusInactive {
		return
	}
	c.child.Stop()
	c.status = StatusInactive
}

func (c *Condition) Tick() Status {
	met := c.evaluate()
	if c.running() && c.child.Status() == StatusRunning {
		if !met && c.stops.self() {
			c.logger().Debug("condition aborting running child", "node", c.name, "child", c.child.Name())
			c.child.Stop()
			c.status = StatusFailure
			return c.status
		}
		c.status = c.child.Tick()
		return c.status
	}
	if !met {
		c.status = StatusFailure
		return c.status
	}
	c.Start()
	c.status = c.child.Tick()
	return c.status
}

func (c *Condition) evaluate() bool {
	met := c.pred.evaluate(c)
	if c.evaluated && met != c.last {
		c.logger().Debug("condition changed", "node", c.name, "value", met)
	}
	c.last, c.evaluated = met, true
	return met
}

func (c *Condition) abortsLowerPriority() bool { return c.stops.lowerPriority() }
func (c *Condition) restartsImmediately() bool { return c.stops.immediateRestart() }

type exprPredicate struct {
	source  string
	program *vm.Program
}

func (p *exprPredicate) evaluate(c *Condition) bool {
	bb := c.blackboard()
	if p.program == nil || bb == nil {
		return false
	}
	out, err := expr.Run(p.program, bb.Snapshot())
	if err != nil {
		c.logger().Warn("condition expression failed", "node", c.name, "expression", p.source, "error", err)
		return false
	}
	b, _ := out.(bool)
	return b
}

func (p *exprPredicate) String() string { return p.source }

// Service runs a sampler while its subtree is active: once on activation and
// again whenever the tree clock has advanced at least interval since the last
// sample. It stays active while it is ticked on consecutive root ticks, even
// when its child completes; missing a tick or being stopped deactivates it and
// cancels the pending sample. The child's status is forwarded unchanged.
type Service struct {
	node
	interval   time.Duration
	sampler    func()
	child      Node
	active     bool
	lastSample time.Duration
	lastTick   uint64
	samples    uint64
}

// NewService creates a Service. The interval must be positive.
func NewService(interval time.Duration, sampler func(), child Node) *Service {
	s := &Service{
		node:     node{name: "service(" + interval.String() + ")"},
		interval: interval,
		sampler:  sampler,
		child:    child,
	}
	switch {
	case child == nil:
		s.err = fmt.Errorf("%w: %s", ErrNilChild, s.name)
	case sampler == nil:
		s.err = fmt.Errorf("%s: nil sampler", s.name)
	case interval <= 0:
		s.err = fmt.Errorf("%w: service interval %s", ErrInvalidDuration, interval)
	}
	return s
}

// Interval returns the sampling interval.
func (s *Service) Interval() time.Duration { return s.interval }

// Samples returns how many times the sampler has run.
func (s *Service) Samples() uint64 { return s.samples }

func (s *Service) Children() []Node {
	if s.child == nil {
		return nil
	}
	return []Node{s.child}
}

// Start activates the service and samples immediately.
func (s *Service) Start() {
	s.active = true
	s.lastTick = s.tickNumber()
	s.status = StatusRunning
	s.sample()
	s.lastSample = s.activated()
}

func (s *Service) Stop() {
	if !s.active && s.status == StatusInactive {
		return
	}
	s.active = false
	s.child.Stop()
	s.status = StatusInactive
}

func (s *Service) Tick() Status {
	tick := s.tickNumber()
	switch {
	case !s.active || tick != s.lastTick+1:
		s.Start()
	case s.now()-s.lastSample >= s.interval:
		s.sample()
	}
	s.lastTick = tick
	s.status = s.child.Tick()
	return s.status
}

func (s *Service) sample() {
	s.lastSample = s.now()
	s.samples++
	defer func() {
		if r := recover(); r != nil {
			s.logger().Error("service sampler panicked", "node", s.name, "panic", fmt.Sprint(r))
		}
	}()
	s.sampler()
}

func (s *Service) tickNumber() uint64 {
	if s.root == nil {
		return 0
	}
	return s.root.ticks
}
