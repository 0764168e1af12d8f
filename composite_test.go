package behaviortreex_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/comalice/behaviortreex"
)

func TestSequenceAllSucceed(t *testing.T) {
	var a, b, c int
	seq := NewSequence(counting("a", &a), counting("b", &b), counting("c", &c))
	r := startedRoot(t, seq)

	// Continue-immediately: all three run within one tick
	assert.Equal(t, StatusSuccess, r.Tick())
	assert.Equal(t, []int{1, 1, 1}, []int{a, b, c})
}

func TestSequenceFailureResetsCursor(t *testing.T) {
	var first, guarded, last int
	seq := NewSequence(
		counting("first", &first),
		when("ok", StopsNone, counting("guarded", &guarded)),
		counting("last", &last),
	)
	r := startedRoot(t, seq)

	assert.Equal(t, StatusFailure, r.Tick())
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, guarded)
	assert.Equal(t, 0, last, "children after a failure must not run")

	// Next activation starts again from the first child
	r.Blackboard().Set("ok", true)
	assert.Equal(t, StatusSuccess, r.Tick())
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, guarded)
	assert.Equal(t, 1, last)
}

func TestSequenceRunningKeepsCursor(t *testing.T) {
	var before, after int
	seq := NewSequence(counting("before", &before), NewWait(time.Second), counting("after", &after))
	r := startedRoot(t, seq)

	assert.Equal(t, StatusRunning, r.Update(400*time.Millisecond))
	assert.Equal(t, StatusRunning, r.Update(400*time.Millisecond))
	assert.Equal(t, StatusSuccess, r.Update(400*time.Millisecond))

	assert.Equal(t, 1, before, "completed children are not re-ticked while a later one runs")
	assert.Equal(t, 1, after)
}

func TestSelectorFirstWinner(t *testing.T) {
	var a, b int
	sel := NewSelector(
		when("a", StopsNone, counting("a", &a)),
		counting("b", &b),
	)
	r := startedRoot(t, sel)

	assert.Equal(t, StatusSuccess, r.Tick())
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)

	r.Blackboard().Set("a", true)
	assert.Equal(t, StatusSuccess, r.Tick())
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b, "lower child must not run once a higher one wins")
}

func TestSelectorAllFail(t *testing.T) {
	sel := NewSelector(
		when("a", StopsNone, NewAction("a", func() {})),
		when("b", StopsNone, NewAction("b", func() {})),
	)
	r := startedRoot(t, sel)
	assert.Equal(t, StatusFailure, r.Tick())
	assert.Equal(t, -1, sel.Active())
}

// patrolTree is a selector with a flee guard above a long running patrol.
func patrolTree(stops Stops, flee *int) (*Selector, *Sequence) {
	patrol := NewSequence(NewWait(10*time.Second), NewAction("patrol", func() {}))
	return NewSelector(when("threat", stops, counting("flee", flee)), patrol), patrol
}

func TestSelectorImmediateRestartPreemptsSameTick(t *testing.T) {
	var flee int
	sel, patrol := patrolTree(StopsImmediateRestart, &flee)
	r := startedRoot(t, sel)

	require.Equal(t, StatusRunning, r.Update(100*time.Millisecond))
	require.Equal(t, 1, sel.Active())
	require.Equal(t, StatusRunning, patrol.Status())

	r.Blackboard().Set("threat", true)
	assert.Equal(t, StatusSuccess, r.Update(100*time.Millisecond))
	assert.Equal(t, 1, flee, "guard takes control within the same tick")
	assert.Equal(t, StatusInactive, patrol.Status(), "lower branch is stopped")
	assert.Equal(t, StatusInactive, patrol.Children()[0].Status())
}

func TestSelectorLowerPriorityPreemptsNextTick(t *testing.T) {
	var flee int
	sel, patrol := patrolTree(StopsLowerPriority, &flee)
	r := startedRoot(t, sel)

	require.Equal(t, StatusRunning, r.Update(100*time.Millisecond))

	r.Blackboard().Set("threat", true)
	assert.Equal(t, StatusFailure, r.Update(100*time.Millisecond), "aborted child counts as failed")
	assert.Equal(t, 0, flee)
	assert.Equal(t, StatusInactive, patrol.Status())

	assert.Equal(t, StatusSuccess, r.Update(100*time.Millisecond))
	assert.Equal(t, 1, flee)
}

func TestSelectorStopsNoneDoesNotPreempt(t *testing.T) {
	var flee int
	sel, patrol := patrolTree(StopsNone, &flee)
	r := startedRoot(t, sel)

	require.Equal(t, StatusRunning, r.Update(100*time.Millisecond))
	r.Blackboard().Set("threat", true)
	assert.Equal(t, StatusRunning, r.Update(100*time.Millisecond))
	assert.Equal(t, 0, flee)
	assert.Equal(t, StatusRunning, patrol.Status())
}

func TestSelectorPlainHigherChildPreempts(t *testing.T) {
	var flee int
	// A sequence is not a guard: it is re-ticked and wins by succeeding
	higher := NewSequence(when("threat", StopsNone, counting("flee", &flee)))
	patrol := NewWait(10 * time.Second)
	sel := NewSelector(higher, patrol)
	r := startedRoot(t, sel)

	require.Equal(t, StatusRunning, r.Update(100*time.Millisecond))
	require.Equal(t, StatusRunning, patrol.Status())

	r.Blackboard().Set("threat", true)
	assert.Equal(t, StatusSuccess, r.Update(100*time.Millisecond))
	assert.Equal(t, 1, flee)
	assert.Equal(t, StatusInactive, patrol.Status())
}

func TestSelectorRunningChildContinues(t *testing.T) {
	sel := NewSelector(when("never", StopsImmediateRestart, NewAction("x", func() {})), NewWait(time.Second))
	r := startedRoot(t, sel)

	assert.Equal(t, StatusRunning, r.Update(400*time.Millisecond))
	assert.Equal(t, StatusRunning, r.Update(400*time.Millisecond))
	assert.Equal(t, StatusSuccess, r.Update(600*time.Millisecond))
	assert.Equal(t, -1, sel.Active())
}
