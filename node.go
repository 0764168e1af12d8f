package behaviortreex

import (
	"log/slog"
	"time"
)

// Node is the unit of a behavior tree. The set of implementations is closed:
// Action, Wait, Sequence, Selector, Condition, Service and Root.
//
// Tick activates the node if it is not already running, so parents only ever
// call Tick. Stop is synchronous and recursively stops every active
// descendant before returning.
type Node interface {
	Name() string
	Status() Status
	Children() []Node
	Start()
	Stop()
	Tick() Status

	base() *node
}

// node holds the state shared by every variant.
type node struct {
	name   string
	status Status
	root   *Root
	err    error // construction error, surfaced by NewRoot
}

func (n *node) Name() string   { return n.name }
func (n *node) Status() Status { return n.status }
func (n *node) base() *node    { return n }

func (n *node) running() bool { return n.status == StatusRunning }

func (n *node) now() time.Duration {
	if n.root == nil {
		return 0
	}
	return n.root.clock.Now()
}

// activated is the time a node started by the current tick counts from: the
// clock before this tick's advance, so the activating step is measured.
func (n *node) activated() time.Duration {
	if n.root == nil {
		return 0
	}
	return n.root.tickStart
}

func (n *node) blackboard() *Blackboard {
	if n.root == nil {
		return nil
	}
	return n.root.bb
}

func (n *node) logger() *slog.Logger {
	if n.root == nil {
		return slog.Default()
	}
	return n.root.logger
}

// Named overrides the display name of a node and returns it, for use inline
// while composing a tree.
func Named[N Node](n N, name string) N {
	n.base().name = name
	return n
}

// stopAll stops every child regardless of status.
func stopAll(children []Node) {
	for _, c := range children {
		c.Stop()
	}
}
