package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	bt "github.com/comalice/behaviortreex"
)

var (
	// ErrQueueFull is returned when the per-tick fact batch is at capacity.
	ErrQueueFull = errors.New("realtime: fact queue full")

	// ErrRunning is returned by Step and Start while the tick loop runs.
	ErrRunning = errors.New("realtime: tick loop running")
)

// Config configures the real-time runtime
type Config struct {
	TickRate        time.Duration // Fixed tick rate and tree clock step (default 20ms)
	MaxFactsPerTick int           // Fact queue capacity (default: 1000)
	Logger          *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.MaxFactsPerTick <= 0 {
		c.MaxFactsPerTick = 1000
	}
	if c.TickRate <= 0 {
		c.TickRate = 20 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Runtime ticks one behavior tree at a fixed rate and applies queued facts
// at tick boundaries.
type Runtime struct {
	root     *bt.Root
	tickRate time.Duration
	logger   *slog.Logger
	loop     loop

	// Fact batching
	batch       []FactWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64

	// Guarded by batchMu
	tickNum    uint64
	lastStatus bt.Status
}

// NewRuntime creates a runtime for root. The root is started by Start or by
// the first Step.
func NewRuntime(root *bt.Root, cfg Config) *Runtime {
	cfg.applyDefaults()
	return &Runtime{
		root:     root,
		tickRate: cfg.TickRate,
		logger:   cfg.Logger.With("tree", root.ID()),
		batch:    make([]FactWithMeta, 0, cfg.MaxFactsPerTick),
	}
}

// Root returns the driven tree. Only touch it from the loop goroutine or
// while the loop is not running.
func (rt *Runtime) Root() *bt.Root { return rt.root }

// TickRate returns the fixed tick duration.
func (rt *Runtime) TickRate() time.Duration { return rt.tickRate }

// Start activates the tree and begins tick-based execution.
func (rt *Runtime) Start(ctx context.Context) error {
	if rt.loop.active() {
		return ErrRunning
	}
	if err := rt.root.Activate(); err != nil {
		return fmt.Errorf("start tree: %w", err)
	}
	rt.loop.start(ctx, rt.tickRate, rt.logger, rt.processTick)
	return nil
}

// Stop ends the tick loop, waits for it to exit and stops the tree. The
// tree cannot be started again afterwards.
func (rt *Runtime) Stop() error {
	rt.loop.stop()
	rt.root.Stop()
	return nil
}

// Step runs one tick synchronously, advancing the tree clock by dt. It
// activates the tree on first use and fails with ErrRunning while the tick
// loop is active.
func (rt *Runtime) Step(dt time.Duration) (bt.Status, error) {
	if rt.loop.active() {
		return bt.StatusInactive, ErrRunning
	}
	if err := rt.root.Activate(); err != nil {
		return bt.StatusInactive, err
	}
	return rt.tick(dt), nil
}

// Post queues a blackboard write for the next tick (thread-safe).
func (rt *Runtime) Post(key string, value any) error {
	return rt.PostWithPriority(key, value, 0)
}

// PostWithPriority queues a blackboard write with priority.
func (rt *Runtime) PostWithPriority(key string, value any, priority int) error {
	return rt.enqueue(Fact{Key: key, Value: value}, priority)
}

// Retract queues removal of key for the next tick.
func (rt *Runtime) Retract(key string) error {
	return rt.enqueue(Fact{Key: key, Delete: true}, 0)
}

func (rt *Runtime) enqueue(f Fact, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if len(rt.batch) >= cap(rt.batch) {
		return ErrQueueFull
	}
	rt.batch = append(rt.batch, FactWithMeta{
		Fact:        f,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++
	return nil
}

// TickNumber returns the number of completed ticks.
func (rt *Runtime) TickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}

// LastStatus returns the status of the most recent tick.
func (rt *Runtime) LastStatus() bt.Status {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.lastStatus
}

// loop is a ticker goroutine shared by Runtime and Group.
type loop struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// active reports whether the loop goroutine is still running. A loop whose
// context was cancelled is inactive once its goroutine has exited.
func (l *loop) active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped == nil {
		return false
	}
	select {
	case <-l.stopped:
		return false
	default:
		return true
	}
}

func (l *loop) start(ctx context.Context, rate time.Duration, logger *slog.Logger, tick func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	tickCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	l.cancel, l.stopped = cancel, stopped
	ticker := time.NewTicker(rate)

	go func() {
		defer close(stopped)
		defer ticker.Stop()
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C:
				if tickCtx.Err() != nil {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							logger.Error("tick panicked", "panic", fmt.Sprint(r))
						}
					}()
					tick()
				}()
			}
		}
	}()
}

// stop cancels the loop and waits for it to exit. Stopping a loop that was
// never started is a no-op.
func (l *loop) stop() {
	l.mu.Lock()
	cancel, stopped := l.cancel, l.stopped
	l.cancel, l.stopped = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}
