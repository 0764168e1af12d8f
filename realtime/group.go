package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	bt "github.com/comalice/behaviortreex"
)

// GroupConfig configures a Group.
type GroupConfig struct {
	TickRate time.Duration // default 20ms
	Logger   *slog.Logger

	// AfterTick runs on the tick goroutine after every tree has been
	// ticked. Trees may be stopped from here.
	AfterTick func(tick uint64, dt time.Duration)
}

// Group ticks several trees sequentially, in the order given, on a single
// goroutine. Trees never run concurrently with each other or with AfterTick.
type Group struct {
	roots     []*bt.Root
	tickRate  time.Duration
	logger    *slog.Logger
	afterTick func(uint64, time.Duration)
	loop      loop

	mu       sync.Mutex
	tickNum  uint64
	statuses []bt.Status
}

// NewGroup creates a group over roots.
func NewGroup(cfg GroupConfig, roots ...*bt.Root) *Group {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 20 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Group{
		roots:     roots,
		tickRate:  cfg.TickRate,
		logger:    cfg.Logger,
		afterTick: cfg.AfterTick,
		statuses:  make([]bt.Status, len(roots)),
	}
}

// Start activates every tree and begins ticking them.
func (g *Group) Start(ctx context.Context) error {
	if g.loop.active() {
		return ErrRunning
	}
	if err := g.activate(); err != nil {
		return err
	}
	g.loop.start(ctx, g.tickRate, g.logger, func() { g.tick(g.tickRate) })
	return nil
}

// Stop ends the loop and stops every tree.
func (g *Group) Stop() error {
	g.loop.stop()
	for _, r := range g.roots {
		r.Stop()
	}
	return nil
}

// Step runs one tick synchronously on the caller's goroutine.
func (g *Group) Step(dt time.Duration) ([]bt.Status, error) {
	if g.loop.active() {
		return nil, ErrRunning
	}
	if err := g.activate(); err != nil {
		return nil, err
	}
	g.tick(dt)
	return g.Statuses(), nil
}

// Wait blocks until the loop exits, for example because ctx was cancelled
// from AfterTick.
func (g *Group) Wait() {
	g.loop.mu.Lock()
	stopped := g.loop.stopped
	g.loop.mu.Unlock()
	if stopped != nil {
		<-stopped
	}
}

// TickNumber returns the number of completed ticks.
func (g *Group) TickNumber() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tickNum
}

// Statuses returns the latest status of each tree, in group order.
func (g *Group) Statuses() []bt.Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]bt.Status, len(g.statuses))
	copy(out, g.statuses)
	return out
}

func (g *Group) activate() error {
	for _, r := range g.roots {
		if r.Running() {
			continue
		}
		// Trees stopped by the host stay stopped.
		if err := r.Activate(); err != nil && r.TickCount() == 0 {
			return fmt.Errorf("start tree %s: %w", r.ID(), err)
		}
	}
	return nil
}

func (g *Group) tick(dt time.Duration) {
	statuses := make([]bt.Status, len(g.roots))
	for i, r := range g.roots {
		statuses[i] = r.Update(dt)
	}

	g.mu.Lock()
	g.tickNum++
	tick := g.tickNum
	g.statuses = statuses
	g.mu.Unlock()

	if g.afterTick != nil {
		g.afterTick(tick, dt)
	}
}
