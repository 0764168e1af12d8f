package testutil

import (
	"time"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/comalice/behaviortreex"
	"github.com/comalice/behaviortreex/gobt"
	"github.com/comalice/behaviortreex/realtime"
)

// DriverAdapter provides a common interface over the ways a tree can be
// driven. This allows running the same scenario against every driver.
type DriverAdapter interface {
	Name() string
	Root() *behaviortreex.Root
	Step(dt time.Duration) (behaviortreex.Status, error)
	Stop()
}

// DirectAdapter ticks the root from the caller.
type DirectAdapter struct {
	root *behaviortreex.Root
}

// NewDirectAdapter creates a new adapter calling Root.Update directly.
func NewDirectAdapter(root *behaviortreex.Root) *DirectAdapter {
	return &DirectAdapter{root: root}
}

func (a *DirectAdapter) Name() string              { return "direct" }
func (a *DirectAdapter) Root() *behaviortreex.Root { return a.root }
func (a *DirectAdapter) Stop()                     { a.root.Stop() }

func (a *DirectAdapter) Step(dt time.Duration) (behaviortreex.Status, error) {
	if err := a.root.Activate(); err != nil {
		return behaviortreex.StatusInactive, err
	}
	return a.root.Update(dt), nil
}

// RealtimeAdapter steps a realtime runtime.
type RealtimeAdapter struct {
	rt *realtime.Runtime
}

// NewRealtimeAdapter creates a new adapter for the tick-based runtime.
func NewRealtimeAdapter(root *behaviortreex.Root) *RealtimeAdapter {
	return &RealtimeAdapter{rt: realtime.NewRuntime(root, realtime.Config{})}
}

func (a *RealtimeAdapter) Name() string              { return "realtime" }
func (a *RealtimeAdapter) Root() *behaviortreex.Root { return a.rt.Root() }
func (a *RealtimeAdapter) Stop()                     { _ = a.rt.Stop() }

func (a *RealtimeAdapter) Step(dt time.Duration) (behaviortreex.Status, error) {
	return a.rt.Step(dt)
}

// GobtAdapter ticks the root through a go-behaviortree node. A fresh node is
// built per step so the delta can vary.
type GobtAdapter struct {
	root *behaviortreex.Root
}

// NewGobtAdapter creates a new adapter for go-behaviortree interop.
func NewGobtAdapter(root *behaviortreex.Root) *GobtAdapter {
	return &GobtAdapter{root: root}
}

func (a *GobtAdapter) Name() string              { return "gobt" }
func (a *GobtAdapter) Root() *behaviortreex.Root { return a.root }
func (a *GobtAdapter) Stop()                     { a.root.Stop() }

func (a *GobtAdapter) Step(dt time.Duration) (behaviortreex.Status, error) {
	if err := a.root.Activate(); err != nil {
		return behaviortreex.StatusInactive, err
	}
	st, err := gobt.Node(a.root, dt).Tick()
	if err != nil {
		return behaviortreex.StatusInactive, err
	}
	switch st {
	case bt.Running:
		return behaviortreex.StatusRunning, nil
	case bt.Success:
		return behaviortreex.StatusSuccess, nil
	default:
		return behaviortreex.StatusFailure, nil
	}
}

// Adapters returns one adapter per driver, each built over a fresh root from
// build.
func Adapters(build func() *behaviortreex.Root) []DriverAdapter {
	return []DriverAdapter{
		NewDirectAdapter(build()),
		NewRealtimeAdapter(build()),
		NewGobtAdapter(build()),
	}
}
