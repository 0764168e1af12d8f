// Package gobt exposes behaviortreex roots as github.com/joeycumines/go-behaviortree
// nodes, so a tree can be scheduled by a bt.Ticker or composed under a
// go-behaviortree parent.
package gobt

import (
	"context"
	"errors"
	"fmt"
	"time"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/comalice/behaviortreex"
)

// ErrInactive is returned by a node whose root is not running.
var ErrInactive = errors.New("gobt: tree not running")

// Status maps a tree status to its go-behaviortree equivalent. Inactive has
// no equivalent and maps to ErrInactive.
func Status(s behaviortreex.Status) (bt.Status, error) {
	switch s {
	case behaviortreex.StatusRunning:
		return bt.Running, nil
	case behaviortreex.StatusSuccess:
		return bt.Success, nil
	case behaviortreex.StatusFailure:
		return bt.Failure, nil
	default:
		return bt.Failure, ErrInactive
	}
}

// Node returns a leaf that advances root by dt on every tick. The root must
// be started by the caller and is only touched from the ticking goroutine.
func Node(root *behaviortreex.Root, dt time.Duration) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		st, err := Status(root.Update(dt))
		if err != nil {
			return st, fmt.Errorf("tree %s: %w", root.ID(), err)
		}
		return st, nil
	})
}

// NewTicker starts root and ticks it every rate, advancing its clock by rate.
// The ticker stops when ctx is done or on Stop. Stop the root only after the
// ticker is done.
func NewTicker(ctx context.Context, root *behaviortreex.Root, rate time.Duration) (bt.Ticker, error) {
	if err := root.Activate(); err != nil {
		return nil, err
	}
	return bt.NewTicker(ctx, rate, Node(root, rate)), nil
}

// Lockstep is a bt.Tick that ticks every child once, in order, regardless of
// their outcome. Children reporting ErrInactive are skipped, so agents whose
// trees were stopped drop out without ending the schedule. Any other error
// stops the pass and is returned. It reports Running until a child errors.
func Lockstep(children []bt.Node) (bt.Status, error) {
	for _, c := range children {
		if _, err := c.Tick(); err != nil && !errors.Is(err, ErrInactive) {
			return bt.Failure, err
		}
	}
	return bt.Running, nil
}
