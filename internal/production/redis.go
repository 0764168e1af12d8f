package production

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	bt "github.com/comalice/behaviortreex"
)

// BlackboardKey returns the Redis hash holding a tree's blackboard.
func BlackboardKey(treeID string) string {
	return fmt.Sprintf("bt:%s:blackboard", treeID)
}

// BlackboardEventsChannel returns the Pub/Sub channel carrying a tree's
// blackboard changes.
func BlackboardEventsChannel(treeID string) string {
	return fmt.Sprintf("bt:%s:blackboard_events", treeID)
}

// BlackboardChange is the event published for every mirrored write.
type BlackboardChange struct {
	TreeID  string `json:"tree_id"`
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// RedisMirror copies blackboard writes to Redis. Writes are buffered by the
// blackboard observer and only sent by Flush, so ticking never waits on the
// network.
type RedisMirror struct {
	rdb *redis.Client

	mu      sync.Mutex
	pending []BlackboardChange
	cancels []func()
}

// NewRedisMirror creates a mirror with its own Redis connection.
func NewRedisMirror(opts *redis.Options) *RedisMirror {
	return &RedisMirror{rdb: redis.NewClient(opts)}
}

// Ping verifies Redis connectivity.
func (m *RedisMirror) Ping(ctx context.Context) error {
	return m.rdb.Ping(ctx).Err()
}

// Attach mirrors every later write to bb under treeID.
func (m *RedisMirror) Attach(treeID string, bb *bt.Blackboard) {
	cancel := bb.Observe(bt.AnyKey, func(key string, _, value any) {
		c := BlackboardChange{TreeID: treeID, Key: key}
		if value == nil {
			c.Deleted = true
		} else {
			c.Value = encodeValue(value)
		}
		m.mu.Lock()
		m.pending = append(m.pending, c)
		m.mu.Unlock()
	})
	m.mu.Lock()
	m.cancels = append(m.cancels, cancel)
	m.mu.Unlock()
}

// Pending returns the number of buffered changes.
func (m *RedisMirror) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Flush writes buffered changes to the blackboard hashes and publishes one
// event per change, in write order, in a single transaction. Changes are
// dropped if the transaction fails.
func (m *RedisMirror) Flush(ctx context.Context) error {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	_, err := m.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, c := range pending {
			key := BlackboardKey(c.TreeID)
			if c.Deleted {
				pipe.HDel(ctx, key, c.Key)
			} else {
				pipe.HSet(ctx, key, c.Key, c.Value)
			}
			event, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("failed to marshal blackboard event: %w", err)
			}
			pipe.Publish(ctx, BlackboardEventsChannel(c.TreeID), event)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mirror %d blackboard changes: %w", len(pending), err)
	}
	return nil
}

// Detach stops observing every attached blackboard. Changes already buffered
// are kept for the next Flush.
func (m *RedisMirror) Detach() {
	m.mu.Lock()
	cancels := m.cancels
	m.cancels = nil
	m.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// Close detaches from every blackboard and closes the Redis connection.
// Unflushed changes are discarded.
func (m *RedisMirror) Close() error {
	m.Detach()
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
	return m.rdb.Close()
}

func encodeValue(v any) string {
	switch v := v.(type) {
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
