package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bt "github.com/comalice/behaviortreex"
	"github.com/comalice/behaviortreex/internal/config"
	"github.com/comalice/behaviortreex/tank"
)

func testSettings() Settings {
	return Settings{
		ArenaSize:    50,
		HitRadius:    1,
		MaxSpeed:     10,
		MaxTurnSpeed: math.Pi / 2,
		ShellRange:   60,
		ShellDamage:  20,
		Health:       40,
		Reload:       100 * time.Millisecond,
	}
}

func TestPoseLocal(t *testing.T) {
	x, z := Pose{}.Local(1, 0)
	assert.InDelta(t, 1, x, 1e-9, "+x is to the right when facing +z")
	assert.InDelta(t, 0, z, 1e-9)

	x, z = Pose{Heading: math.Pi / 2}.Local(1, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 1, z, 1e-9, "facing +x puts +x ahead")

	x, z = Pose{X: 5, Z: 5, Heading: math.Pi}.Local(5, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 5, z, 1e-9)
}

func TestTankSample(t *testing.T) {
	w := NewWorld(testSettings())
	alpha := w.Spawn("alpha", Pose{})
	w.Spawn("bravo", Pose{X: 3, Z: 4})
	w.Spawn("charlie", Pose{X: -30, Z: 0})

	p := alpha.Sample()
	assert.InDelta(t, 5, p.Distance, 1e-9, "nearest opponent")
	assert.True(t, p.InFront)
	assert.True(t, p.OnRight)
	assert.InDelta(t, 0.6, p.OffCentre, 1e-9)

	lone := NewWorld(testSettings()).Spawn("solo", Pose{})
	p = lone.Sample()
	assert.True(t, math.IsInf(p.Distance, 1))
	assert.Equal(t, 1.0, p.OffCentre)
}

func TestStepMovesAndClamps(t *testing.T) {
	s := testSettings()
	s.ArenaSize = 5
	w := NewWorld(s)
	a := w.Spawn("alpha", Pose{})

	a.Move(1)
	w.Step(time.Second)
	assert.InDelta(t, 5, a.State().Pose.Z, 1e-9, "clamped to the arena")

	a.Move(0)
	a.Turn(1)
	w.Step(time.Second)
	st := a.State()
	assert.InDelta(t, math.Pi/2, st.Pose.Heading, 1e-9)
	assert.InDelta(t, 5, st.Pose.Z, 1e-9)
	assert.Equal(t, time.Second*2, w.Now())
}

func TestShootHitsReloadsAndKills(t *testing.T) {
	w := NewWorld(testSettings())
	alpha := w.Spawn("alpha", Pose{})
	bravo := w.Spawn("bravo", Pose{Z: 10})

	alpha.Fire(1)
	w.Step(10 * time.Millisecond)
	assert.Equal(t, 20.0, bravo.State().Health)

	alpha.Fire(1)
	w.Step(10 * time.Millisecond)
	assert.Equal(t, 1, alpha.State().Shots, "shot dropped while reloading")

	w.Step(100 * time.Millisecond)
	alpha.Fire(0.1)
	w.Step(10 * time.Millisecond)
	assert.Equal(t, 2, alpha.State().Shots)
	assert.Equal(t, 20.0, bravo.State().Health, "weak shell falls short")

	w.Step(100 * time.Millisecond)
	alpha.Fire(1)
	w.Step(10 * time.Millisecond)
	assert.False(t, bravo.Alive())
	assert.Equal(t, 1, w.Alive())

	var kinds []EventKind
	for _, e := range w.Events() {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []EventKind{EventShot, EventHit, EventShot, EventShot, EventHit, EventKill}, kinds)

	bravo.Fire(1)
	w.Step(time.Second)
	assert.Zero(t, bravo.State().Shots, "dead tanks do not shoot")
}

func TestShotHitsNearestInLine(t *testing.T) {
	w := NewWorld(testSettings())
	alpha := w.Spawn("alpha", Pose{})
	far := w.Spawn("far", Pose{Z: 20})
	near := w.Spawn("near", Pose{X: 0.5, Z: 10})
	side := w.Spawn("side", Pose{X: 5, Z: 5})

	alpha.Fire(1)
	w.Step(time.Millisecond)
	assert.Equal(t, 20.0, near.State().Health)
	assert.Equal(t, 40.0, far.State().Health)
	assert.Equal(t, 40.0, side.State().Health)
}

func duel(steps int, dt time.Duration) *config.SimConfig {
	cfg := config.Default()
	cfg.Simulation.Steps = steps
	cfg.Simulation.DT = config.Duration{Duration: dt}
	cfg.Simulation.Seed = 42
	cfg.Agents = map[string]config.Agent{
		"alpha": {Profile: "tracker", Z: -10},
		"bravo": {Profile: "tracker", Z: 10},
	}
	return cfg
}

func TestNewMatch(t *testing.T) {
	var observed []string
	var steps []uint64
	finished := 0
	m, err := NewMatch(duel(10, 20*time.Millisecond), Options{
		Observers: func(agent string) []bt.TickObserver {
			observed = append(observed, agent)
			return nil
		},
		OnStep: func(step uint64) { steps = append(steps, step) },
		OnFinish: func(m *Match) {
			finished++
			assert.True(t, m.Agents()[0].Root.Running(), "trees still run in OnFinish")
		},
	})
	require.NoError(t, err)

	require.Len(t, m.Agents(), 2)
	assert.Equal(t, []string{"alpha", "bravo"}, observed)
	for i, a := range m.Agents() {
		assert.Equal(t, a.Name, m.Roots()[i].ID())
		assert.Equal(t, tank.Tracker, a.Profile)
	}
	assert.False(t, m.Over())

	res, err := Run(context.Background(), m, DriverNative, 3, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, steps)
	assert.Equal(t, 1, finished)
	assert.Equal(t, 60*time.Millisecond, res.Elapsed)
	for _, a := range res.Agents {
		assert.Equal(t, uint64(3), a.Ticks)
		assert.Equal(t, bt.StatusRunning, a.Status)
	}
}

func TestMatchTrackerDestroysTarget(t *testing.T) {
	cfg := duel(3000, 20*time.Millisecond)
	m, err := NewMatch(cfg, Options{
		Selector: tank.StaticSelector{Agents: map[string]tank.Profile{"alpha": tank.Tracker}, Fallback: tank.Default},
	})
	require.NoError(t, err)

	res, err := Run(context.Background(), m, DriverNative, cfg.Simulation.Steps, cfg.Simulation.DT.Duration)
	require.NoError(t, err)

	assert.Equal(t, "alpha", res.Winner)
	assert.Less(t, res.Steps, uint64(3000), "the match ends once one tank is left")
	require.Len(t, res.Agents, 2)
	alpha, bravo := res.Agents[0], res.Agents[1]
	assert.Equal(t, 5, alpha.Hits, "100 health at 20 damage")
	assert.GreaterOrEqual(t, alpha.Shots, alpha.Hits)
	assert.False(t, bravo.Alive)
	assert.Equal(t, tank.Default, bravo.Profile)
	assert.Equal(t, alpha.Ticks, bravo.Ticks, "the killing step is the last one")
	for _, a := range m.Agents() {
		assert.False(t, a.Root.Running(), "Run stops every tree")
	}
}

func TestDeadTankTreeStops(t *testing.T) {
	m, err := NewMatch(duel(10, 20*time.Millisecond), Options{})
	require.NoError(t, err)
	require.NoError(t, m.Start())

	bravo := m.Agents()[1]
	bravo.Body.world.mu.Lock()
	bravo.Body.health = 0
	bravo.Body.world.mu.Unlock()

	m.Step(20 * time.Millisecond)
	assert.False(t, bravo.Root.Running())
	assert.True(t, m.Agents()[0].Root.Running())
	assert.True(t, m.Over())
	assert.Equal(t, "alpha", m.Result().Winner)
}

func TestDriversAgree(t *testing.T) {
	const steps = 40
	dt := 2 * time.Millisecond
	play := func(d Driver) Result {
		cfg := duel(steps, dt)
		cfg.Agents["alpha"] = config.Agent{Profile: "tracker", X: -20}
		cfg.Agents["bravo"] = config.Agent{Profile: "erratic", X: 20}
		m, err := NewMatch(cfg, Options{})
		require.NoError(t, err)
		res, err := Run(context.Background(), m, d, steps, dt)
		require.NoError(t, err)
		return res
	}

	want := play(DriverNative)
	assert.Equal(t, uint64(steps), want.Steps)
	for _, d := range []Driver{DriverRealtime, DriverGobt} {
		t.Run(string(d), func(t *testing.T) {
			assert.Equal(t, want, play(d))
		})
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	m, err := NewMatch(duel(10, 20*time.Millisecond), Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, m, DriverNative, 10, 20*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Steps)
}

func TestParseDriver(t *testing.T) {
	for _, name := range []string{"native", "realtime", "gobt"} {
		d, err := ParseDriver(name)
		require.NoError(t, err)
		assert.Equal(t, Driver(name), d)
	}
	_, err := ParseDriver("warp")
	assert.ErrorContains(t, err, "unknown driver")
}
