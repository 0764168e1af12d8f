package realtime

import "sort"

// Fact is a blackboard write queued from outside the tick loop.
type Fact struct {
	Key    string
	Value  any
	Delete bool
}

// FactWithMeta adds sequencing metadata for deterministic ordering
type FactWithMeta struct {
	Fact
	SequenceNum uint64
	Priority    int
}

// sortFacts orders facts by priority, highest first, then by submission
// order. Stable sort preserves insertion order for equal keys.
func sortFacts(facts []FactWithMeta) {
	sort.SliceStable(facts, func(i, j int) bool {
		if facts[i].Priority != facts[j].Priority {
			return facts[i].Priority > facts[j].Priority
		}
		return facts[i].SequenceNum < facts[j].SequenceNum
	})
}
