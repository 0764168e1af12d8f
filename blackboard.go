package behaviortreex

import (
	"sort"
	"sync"
)

// AnyKey subscribes an observer to every key.
const AnyKey = "*"

// Observer is called after a key changes. For deletes, value is nil.
type Observer func(key string, old, value any)

type observerEntry struct {
	id int
	fn Observer
}

// Blackboard is the per-tree fact store read by conditions and written by
// samplers. Values are bool, float64 (every Go numeric kind is normalised to
// float64 on write) or string markers. Reads never fail: absent keys and
// values of another type yield the zero value of the requested type.
//
// A tree only touches its blackboard from the goroutine that ticks it; the
// lock lets drivers and mirrors read or post facts from elsewhere.
type Blackboard struct {
	mu        sync.RWMutex
	data      map[string]any
	dirty     map[string]struct{}
	observers map[string][]observerEntry
	nextID    int
}

// NewBlackboard creates an empty blackboard.
func NewBlackboard() *Blackboard {
	return &Blackboard{
		data:      make(map[string]any),
		dirty:     make(map[string]struct{}),
		observers: make(map[string][]observerEntry),
	}
}

// Get retrieves a raw value by key.
func (b *Blackboard) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	return v, ok
}

// Bool returns the value of key as a bool, false if absent or not a bool.
func (b *Blackboard) Bool(key string) bool {
	v, _ := b.Get(key)
	out, _ := v.(bool)
	return out
}

// Float returns the value of key as a float64, 0 if absent or not numeric.
func (b *Blackboard) Float(key string) float64 {
	v, _ := b.Get(key)
	out, _ := v.(float64)
	return out
}

// Marker returns the value of key as a string marker, "" if absent or not a string.
func (b *Blackboard) Marker(key string) string {
	v, _ := b.Get(key)
	out, _ := v.(string)
	return out
}

// Has reports whether key is present.
func (b *Blackboard) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

// Set stores value under key, overwriting unconditionally, marks the key
// dirty and notifies observers. No type consistency is enforced across writes.
func (b *Blackboard) Set(key string, value any) {
	if n, ok := normalize(value); ok {
		value = n
	}
	b.mu.Lock()
	old := b.data[key]
	b.data[key] = value
	b.dirty[key] = struct{}{}
	obs := b.observersLocked(key)
	b.mu.Unlock()

	for _, fn := range obs {
		fn(key, old, value)
	}
}

// Delete removes key, marks it dirty and notifies observers with a nil value.
func (b *Blackboard) Delete(key string) {
	b.mu.Lock()
	old, ok := b.data[key]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.data, key)
	b.dirty[key] = struct{}{}
	obs := b.observersLocked(key)
	b.mu.Unlock()

	for _, fn := range obs {
		fn(key, old, nil)
	}
}

// Keys returns all keys in sorted order.
func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (b *Blackboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Clear discards every value and the dirty set. Observers stay registered
// and are notified of each removed key, in key order, as for Delete.
func (b *Blackboard) Clear() {
	type removal struct {
		key string
		old any
		obs []Observer
	}
	b.mu.Lock()
	removed := make([]removal, 0, len(b.data))
	for k, v := range b.data {
		if obs := b.observersLocked(k); len(obs) > 0 {
			removed = append(removed, removal{key: k, old: v, obs: obs})
		}
	}
	b.data = make(map[string]any)
	b.dirty = make(map[string]struct{})
	b.mu.Unlock()

	sort.Slice(removed, func(i, j int) bool { return removed[i].key < removed[j].key })
	for _, r := range removed {
		for _, fn := range r.obs {
			fn(r.key, r.old, nil)
		}
	}
}

// Snapshot returns a copy of the data. Values are immutable scalars so the
// copy is safe to hand to expression evaluation or serialization.
func (b *Blackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := make(map[string]any, len(b.data))
	for k, v := range b.data {
		snap[k] = v
	}
	return snap
}

// Dirty returns the sorted keys written since the last ResetDirty.
func (b *Blackboard) Dirty() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.dirty) == 0 {
		return nil
	}
	keys := make([]string, 0, len(b.dirty))
	for k := range b.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResetDirty clears the dirty set. Root calls it at the end of every tick.
func (b *Blackboard) ResetDirty() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.dirty) > 0 {
		b.dirty = make(map[string]struct{})
	}
}

// Observe registers fn for changes to key, or to every key with AnyKey.
// The returned func cancels the registration.
func (b *Blackboard) Observe(key string, fn Observer) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.observers[key] = append(b.observers[key], observerEntry{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			entries := b.observers[key]
			for i, e := range entries {
				if e.id == id {
					b.observers[key] = append(entries[:i:i], entries[i+1:]...)
					break
				}
			}
			if len(b.observers[key]) == 0 {
				delete(b.observers, key)
			}
		})
	}
}

func (b *Blackboard) observersLocked(key string) []Observer {
	specific, wildcard := b.observers[key], b.observers[AnyKey]
	if len(specific) == 0 && len(wildcard) == 0 {
		return nil
	}
	out := make([]Observer, 0, len(specific)+len(wildcard))
	for _, e := range specific {
		out = append(out, e.fn)
	}
	if key != AnyKey {
		for _, e := range wildcard {
			out = append(out, e.fn)
		}
	}
	return out
}

// normalize converts numeric kinds to float64. It reports false for values
// that are not bool, numeric or string.
func normalize(v any) (any, bool) {
	switch x := v.(type) {
	case bool, string, float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return v, false
	}
}
