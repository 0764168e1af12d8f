package behaviortreex_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/comalice/behaviortreex"
)

// startedRoot builds and starts a root, failing the test on construction errors.
func startedRoot(t testing.TB, child Node, opts ...Option) *Root {
	t.Helper()
	r, err := NewRoot(child, opts...)
	require.NoError(t, err)
	require.NoError(t, r.Activate())
	return r
}

// counting returns an action that increments *n on every tick.
func counting(name string, n *int) *Action {
	return NewAction(name, func() { *n++ })
}

// when gates child on key == true with the given policy.
func when(key string, stops Stops, child Node) *Condition {
	return NewBlackboardCondition(key, OpEqual, true, stops, child)
}

// run updates r n times by dt and returns the last status.
func run(r *Root, n int, dt time.Duration) Status {
	var st Status
	for i := 0; i < n; i++ {
		st = r.Update(dt)
	}
	return st
}
