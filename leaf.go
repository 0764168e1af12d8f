package behaviortreex

import (
	"fmt"
	"time"
)

// Action invokes a side-effecting callable once per tick and succeeds.
// Actions are single-step: the intended pattern is an idempotent command such
// as "set turn rate to x" issued every tick the branch stays selected.
type Action struct {
	node
	fn func()
}

// NewAction creates an Action. A panic raised by fn is recovered and the
// action reports failure.
func NewAction(name string, fn func()) *Action {
	a := &Action{node: node{name: name}, fn: fn}
	if fn == nil {
		a.err = fmt.Errorf("action %q: nil callable", name)
	}
	return a
}

func (a *Action) Children() []Node { return nil }

func (a *Action) Start() { a.status = StatusRunning }

func (a *Action) Stop() { a.status = StatusInactive }

func (a *Action) Tick() Status {
	if !a.running() {
		a.Start()
	}
	a.status = a.invoke()
	return a.status
}

func (a *Action) invoke() (st Status) {
	defer func() {
		if r := recover(); r != nil {
			a.logger().Error("action panicked", "node", a.name, "panic", fmt.Sprint(r))
			st = StatusFailure
		}
	}()
	a.fn()
	return StatusSuccess
}

// Wait reports running until its duration has elapsed on the tree clock,
// then succeeds once. The activating tick's step counts toward the duration.
// Stopping it discards the timer.
type Wait struct {
	node
	duration time.Duration
	started  time.Duration
}

// NewWait creates a Wait. Negative durations are a construction error; a zero
// duration succeeds on the activation tick.
func NewWait(d time.Duration) *Wait {
	w := &Wait{node: node{name: "wait(" + d.String() + ")"}, duration: d}
	if d < 0 {
		w.err = fmt.Errorf("%w: wait %s", ErrInvalidDuration, d)
	}
	return w
}

// Duration returns the configured wait.
func (w *Wait) Duration() time.Duration { return w.duration }

func (w *Wait) Children() []Node { return nil }

func (w *Wait) Start() {
	w.started = w.activated()
	w.status = StatusRunning
}

func (w *Wait) Stop() {
	w.started = 0
	w.status = StatusInactive
}

func (w *Wait) Tick() Status {
	if !w.running() {
		w.Start()
	}
	if w.now()-w.started >= w.duration {
		w.status = StatusSuccess
	}
	return w.status
}
