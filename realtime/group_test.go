package realtime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bt "github.com/comalice/behaviortreex"
)

func TestGroupTicksInOrder(t *testing.T) {
	var order []string
	tree := func(name string) *bt.Root {
		r, err := bt.NewRoot(bt.NewAction(name, func() { order = append(order, name) }), bt.WithID(name))
		require.NoError(t, err)
		return r
	}
	a, b := tree("a"), tree("b")

	var hooks []uint64
	g := NewGroup(GroupConfig{AfterTick: func(tick uint64, dt time.Duration) {
		order = append(order, "world")
		hooks = append(hooks, tick)
		assert.Equal(t, 10*time.Millisecond, dt)
	}}, a, b)

	for i := 0; i < 2; i++ {
		statuses, err := g.Step(10 * time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, []bt.Status{bt.StatusSuccess, bt.StatusSuccess}, statuses)
	}
	assert.Equal(t, []string{"a", "b", "world", "a", "b", "world"}, order)
	assert.Equal(t, []uint64{1, 2}, hooks)
	assert.Equal(t, uint64(2), g.TickNumber())
}

func TestGroupHostMayStopTree(t *testing.T) {
	var n atomic.Int64
	a := guardedCounter(t, &n)
	b := guardedCounter(t, &n)
	a.Blackboard().Set("go", true)
	b.Blackboard().Set("go", true)

	g := NewGroup(GroupConfig{AfterTick: func(tick uint64, _ time.Duration) {
		if tick == 1 {
			a.Stop()
		}
	}}, a, b)

	_, err := g.Step(time.Millisecond)
	require.NoError(t, err)
	statuses, err := g.Step(time.Millisecond)
	require.NoError(t, err, "stopped trees are skipped, not restarted")
	assert.Equal(t, []bt.Status{bt.StatusInactive, bt.StatusSuccess}, statuses)
}

func TestGroupLoop(t *testing.T) {
	var n atomic.Int64
	a := guardedCounter(t, &n)
	a.Blackboard().Set("go", true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g := NewGroup(GroupConfig{
		TickRate: 2 * time.Millisecond,
		AfterTick: func(tick uint64, _ time.Duration) {
			if tick == 5 {
				cancel()
			}
		},
	}, a)
	require.NoError(t, g.Start(ctx))

	g.Wait()
	assert.GreaterOrEqual(t, g.TickNumber(), uint64(5))
	require.NoError(t, g.Stop())
	assert.False(t, a.Running())
	assert.GreaterOrEqual(t, n.Load(), int64(5))
}
