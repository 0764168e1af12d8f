// Package realtime drives behavior trees from a fixed-rate tick loop.
//
// A Runtime owns one started Root and ticks it on its own goroutine. Facts
// posted from other goroutines are queued and applied to the blackboard at
// the next tick boundary, so the tree itself is only ever touched by the
// loop:
//   - Facts are batched and applied before the tree is evaluated
//   - Deterministic fact ordering via priority and sequence numbers
//   - Fixed time-step: every tick advances the tree clock by TickRate
//
// # Example Usage
//
//	root, _ := tank.Build(tank.Tracker, body, eyes)
//	rt := realtime.NewRuntime(root, realtime.Config{
//		TickRate: 20 * time.Millisecond, // 50 Hz
//	})
//	rt.Start(ctx)
//	rt.Post("targetDistance", 12.5)
//
// # Fact Ordering Guarantees
//
// Facts queued within one tick are applied in order of:
//  1. Priority (higher priority applied first)
//  2. Sequence number (FIFO for same priority)
//
// A later write to the same key wins, so low-priority facts override
// high-priority ones for the same key within a batch.
//
// # Deterministic Stepping
//
// Step runs exactly one tick on the caller's goroutine with an explicit
// delta. Replays, tests and lock-step hosts use Step instead of Start; the
// two are mutually exclusive.
//
// # Groups
//
// A Group ticks several trees in a fixed order on a single goroutine and
// calls an optional hook after each tick, which is how a simulation host
// keeps agents and world physics in lock step.
package realtime
