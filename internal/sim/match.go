package sim

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	bt "github.com/comalice/behaviortreex"
	"github.com/comalice/behaviortreex/internal/config"
	"github.com/comalice/behaviortreex/tank"
)

// Agent is a tank body with the tree that drives it.
type Agent struct {
	Name    string
	Profile tank.Profile
	Body    *Tank
	Root    *bt.Root

	last bt.Status
}

// LastStatus returns the status of the agent's latest tick. Read it only
// from the ticking goroutine or after the match has finished.
func (a *Agent) LastStatus() bt.Status { return a.last }

// Options configures a Match.
type Options struct {
	Logger *slog.Logger

	// Selector overrides the configured profile of each agent.
	Selector tank.ProfileSelector

	// Observers returns extra tick observers for an agent's tree.
	Observers func(agent string) []bt.TickObserver

	// OnStep runs after every world step, on the ticking goroutine.
	OnStep func(step uint64)

	// OnFinish runs once when Run returns, before the trees are stopped.
	OnFinish func(m *Match)
}

// Match is one arena and its agents. Agents are ticked in name order, then
// the world is stepped.
type Match struct {
	world    *World
	agents   []*Agent
	logger   *slog.Logger
	onStep   func(uint64)
	onFinish func(*Match)
	steps    uint64
}

// NewMatch spawns one tank per configured agent and builds its tree. Agent
// i (in name order) is seeded with seed+i.
func NewMatch(cfg *config.SimConfig, opts Options) (*Match, error) {
	cfg.ApplyDefaults()
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	var selector tank.ProfileSelector = cfg
	if opts.Selector != nil {
		selector = opts.Selector
	}

	m := &Match{
		world:    NewWorld(SettingsFrom(cfg.Simulation)),
		logger:   opts.Logger,
		onStep:   opts.OnStep,
		onFinish: opts.OnFinish,
	}
	for i, name := range cfg.AgentNames() {
		ac := cfg.Agents[name]
		profile := selector.Profile(name)
		params := ac.Params.Apply(tank.DefaultParams(profile))

		a := &Agent{Name: name, Profile: profile}
		a.Body = m.world.Spawn(name, Pose{X: ac.X, Z: ac.Z, Heading: ac.Heading * math.Pi / 180})

		buildOpts := []tank.Option{
			tank.WithParams(params),
			tank.WithSeed(cfg.Simulation.Seed + uint64(i)),
			tank.WithLogger(opts.Logger.With("agent", name)),
			tank.WithID(name),
			tank.WithObserver(bt.TickObserverFunc(func(rec bt.TickRecord) { a.last = rec.Status })),
		}
		if opts.Observers != nil {
			for _, obs := range opts.Observers(name) {
				buildOpts = append(buildOpts, tank.WithObserver(obs))
			}
		}
		root, err := tank.Build(profile, a.Body, a.Body, buildOpts...)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}
		a.Root = root
		m.agents = append(m.agents, a)
	}
	return m, nil
}

// World returns the arena.
func (m *Match) World() *World { return m.world }

// Agents returns the agents in tick order.
func (m *Match) Agents() []*Agent { return m.agents }

// Roots returns every agent's tree in tick order.
func (m *Match) Roots() []*bt.Root {
	roots := make([]*bt.Root, len(m.agents))
	for i, a := range m.agents {
		roots[i] = a.Root
	}
	return roots
}

// Start activates every tree.
func (m *Match) Start() error {
	for _, a := range m.agents {
		if err := a.Root.Activate(); err != nil {
			return fmt.Errorf("agent %s: %w", a.Name, err)
		}
	}
	return nil
}

// Step ticks every tree once and then advances the world.
func (m *Match) Step(dt time.Duration) {
	for _, a := range m.agents {
		a.Root.Update(dt)
	}
	m.AfterStep(dt)
}

// AfterStep advances the world by dt and stops the trees of destroyed
// tanks. Drivers that tick trees themselves call it once per tick.
func (m *Match) AfterStep(dt time.Duration) {
	m.world.Step(dt)
	for _, a := range m.agents {
		if a.Root.Running() && !a.Body.Alive() {
			m.logger.Info("tank destroyed", "agent", a.Name, "at", m.world.Now())
			a.Root.Stop()
		}
	}
	m.steps++
	if m.onStep != nil {
		m.onStep(m.steps)
	}
}

// Over reports whether at most one tank of a multi-tank match survives.
func (m *Match) Over() bool {
	return len(m.agents) > 1 && m.world.Alive() <= 1
}

// Stop stops every tree.
func (m *Match) Stop() {
	for _, a := range m.agents {
		a.Root.Stop()
	}
}

// Steps returns the number of completed world steps.
func (m *Match) Steps() uint64 { return m.steps }

// AgentResult summarises one agent after a match.
type AgentResult struct {
	State
	Profile tank.Profile
	Ticks   uint64
	Status  bt.Status
}

// Result summarises a match.
type Result struct {
	Steps   uint64
	Elapsed time.Duration
	Agents  []AgentResult
	Winner  string // empty unless exactly one tank survives a multi-tank match
}

// Result returns the match summary. Call it after the driver has finished.
func (m *Match) Result() Result {
	r := Result{Steps: m.steps, Elapsed: m.world.Now()}
	var alive []string
	for _, a := range m.agents {
		st := a.Body.State()
		r.Agents = append(r.Agents, AgentResult{State: st, Profile: a.Profile, Ticks: a.Root.TickCount(), Status: a.last})
		if st.Alive {
			alive = append(alive, a.Name)
		}
	}
	if len(m.agents) > 1 && len(alive) == 1 {
		r.Winner = alive[0]
	}
	return r
}
