package behaviortreex

import "errors"

// Sentinel errors for tree construction and lifecycle.
var (
	// ErrInvalidTree wraps every construction error reported by NewRoot.
	ErrInvalidTree = errors.New("behaviortreex: invalid tree")

	// ErrStopped is returned by Root.Activate once the root has been stopped.
	// A stopped root is never restarted.
	ErrStopped = errors.New("behaviortreex: tree stopped")

	// ErrNilChild indicates a composite or decorator was given a nil child.
	ErrNilChild = errors.New("behaviortreex: nil child")

	// ErrAttached indicates a node appears more than once in a tree, or in two trees.
	ErrAttached = errors.New("behaviortreex: node already attached")

	// ErrInvalidCondition indicates a key/operator/threshold combination that
	// cannot be evaluated.
	ErrInvalidCondition = errors.New("behaviortreex: invalid condition")

	// ErrInvalidDuration indicates a negative wait or a non-positive service interval.
	ErrInvalidDuration = errors.New("behaviortreex: invalid duration")
)
