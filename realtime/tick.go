package realtime

import (
	"time"

	bt "github.com/comalice/behaviortreex"
)

// processTick processes one loop tick
func (rt *Runtime) processTick() {
	rt.tick(rt.tickRate)
}

// tick runs one complete tick
func (rt *Runtime) tick(dt time.Duration) bt.Status {
	// Phase 1: Collect facts atomically
	facts := rt.collectFacts()

	// Phase 2: Sort for deterministic order
	sortFacts(facts)

	// Phase 3: Apply facts to the blackboard
	applyFacts(rt.root.Blackboard(), facts)

	// Phase 4: Evaluate the tree
	st := rt.root.Update(dt)

	rt.batchMu.Lock()
	rt.tickNum++
	rt.lastStatus = st
	rt.batchMu.Unlock()
	return st
}

// collectFacts atomically retrieves and clears the fact batch
func (rt *Runtime) collectFacts() []FactWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	facts := rt.batch
	rt.batch = make([]FactWithMeta, 0, cap(rt.batch))
	return facts
}

func applyFacts(bb *bt.Blackboard, facts []FactWithMeta) {
	for _, f := range facts {
		if f.Delete {
			bb.Delete(f.Key)
			continue
		}
		bb.Set(f.Key, f.Value)
	}
}
