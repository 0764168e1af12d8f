package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/comalice/behaviortreex/gobt"
	"github.com/comalice/behaviortreex/realtime"
)

// Driver selects how a match is ticked.
type Driver string

const (
	// DriverNative steps the match as fast as possible on the caller's goroutine.
	DriverNative Driver = "native"
	// DriverRealtime ticks the match at wall-clock rate with a realtime.Group.
	DriverRealtime Driver = "realtime"
	// DriverGobt ticks the match with a go-behaviortree ticker.
	DriverGobt Driver = "gobt"
)

var errMatchOver = errors.New("match over")

// ParseDriver validates a driver name.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(s); d {
	case DriverNative, DriverRealtime, DriverGobt:
		return d, nil
	default:
		return "", fmt.Errorf("unknown driver %q (valid: native, realtime, gobt)", s)
	}
}

// Run plays m for up to steps steps of dt, or until one tank is left, and
// stops every tree before returning.
func Run(ctx context.Context, m *Match, d Driver, steps int, dt time.Duration) (Result, error) {
	if err := m.Start(); err != nil {
		return Result{}, err
	}
	defer m.Stop()

	var err error
	switch d {
	case DriverNative:
		err = runNative(ctx, m, steps, dt)
	case DriverRealtime:
		err = runRealtime(ctx, m, steps, dt)
	case DriverGobt:
		err = runGobt(ctx, m, steps, dt)
	default:
		err = fmt.Errorf("unknown driver %q", d)
	}
	if m.onFinish != nil {
		m.onFinish(m)
	}
	return m.Result(), err
}

func runNative(ctx context.Context, m *Match, steps int, dt time.Duration) error {
	for i := 0; i < steps && !m.Over(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.Step(dt)
	}
	return nil
}

func runRealtime(ctx context.Context, m *Match, steps int, dt time.Duration) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := realtime.NewGroup(realtime.GroupConfig{
		TickRate: dt,
		Logger:   m.logger,
		AfterTick: func(tick uint64, dt time.Duration) {
			m.AfterStep(dt)
			if tick >= uint64(steps) || m.Over() {
				cancel()
			}
		},
	}, m.Roots()...)
	if err := g.Start(runCtx); err != nil {
		return err
	}
	g.Wait()
	if err := g.Stop(); err != nil {
		return err
	}
	return ctx.Err()
}

func runGobt(ctx context.Context, m *Match, steps int, dt time.Duration) error {
	children := make([]bt.Node, 0, len(m.agents)+1)
	for _, r := range m.Roots() {
		children = append(children, gobt.Node(r, dt))
	}
	children = append(children, bt.New(func([]bt.Node) (bt.Status, error) {
		m.AfterStep(dt)
		if m.Steps() >= uint64(steps) || m.Over() {
			return bt.Success, errMatchOver
		}
		return bt.Running, nil
	}))

	ticker := bt.NewTicker(ctx, dt, bt.New(gobt.Lockstep, children...))
	<-ticker.Done()
	if err := ticker.Err(); err != nil && !errors.Is(err, errMatchOver) && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}
