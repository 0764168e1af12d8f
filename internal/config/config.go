package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/comalice/behaviortreex/tank"
)

// Version is the only supported configuration version.
const Version = "1"

// SimConfig represents the top-level tanksim.yml configuration
type SimConfig struct {
	Version       string               `yaml:"version"`
	Simulation    *SimulationConfig    `yaml:"simulation,omitempty"`
	Observability *ObservabilityConfig `yaml:"observability,omitempty"`
	Agents        map[string]Agent     `yaml:"agents"`
}

// SimulationConfig specifies the arena and the step schedule
type SimulationConfig struct {
	Steps        int      `yaml:"steps,omitempty"`          // Number of simulation steps (default 3000)
	DT           Duration `yaml:"dt,omitempty"`             // Step duration (default 20ms)
	Seed         uint64   `yaml:"seed,omitempty"`           // Base seed; agent i uses seed+i
	ArenaSize    float64  `yaml:"arena_size,omitempty"`     // Half-width of the square arena (default 80)
	HitRadius    float64  `yaml:"hit_radius,omitempty"`     // Shell hit radius (default 2.5)
	MaxSpeed     float64  `yaml:"max_speed,omitempty"`      // Units per second at move rate 1 (default 12)
	MaxTurnSpeed float64  `yaml:"max_turn_speed,omitempty"` // Degrees per second at turn rate 1 (default 180)
	ShellRange   float64  `yaml:"shell_range,omitempty"`    // Range at fire power 1 (default 60)
	ShellDamage  float64  `yaml:"shell_damage,omitempty"`   // Health removed per hit (default 20)
	Health       float64  `yaml:"health,omitempty"`         // Starting health (default 100)
	Reload       Duration `yaml:"reload,omitempty"`         // Minimum time between shots (default 500ms)
}

// ObservabilityConfig specifies optional tick and blackboard export
type ObservabilityConfig struct {
	RedisAddr string `yaml:"redis_addr,omitempty"` // Mirror blackboards to this Redis server
}

// Agent represents a single tank configuration
type Agent struct {
	Profile string          `yaml:"profile"` // Catalog name or numeric id (required)
	X       float64         `yaml:"x"`
	Z       float64         `yaml:"z"`
	Heading float64         `yaml:"heading"` // Degrees clockwise from +z
	Params  *ParamOverrides `yaml:"params,omitempty"`
}

// ParamOverrides replaces individual profile parameters
type ParamOverrides struct {
	FacingTolerance    *float64  `yaml:"facing_tolerance,omitempty"`
	EngageRange        *float64  `yaml:"engage_range,omitempty"`
	FleeRange          *float64  `yaml:"flee_range,omitempty"`
	FireRange          *float64  `yaml:"fire_range,omitempty"`
	TurnRate           *float64  `yaml:"turn_rate,omitempty"`
	FireDelay          *Duration `yaml:"fire_delay,omitempty"`
	PerceptionInterval *Duration `yaml:"perception_interval,omitempty"`
	SpinRate           *float64  `yaml:"spin_rate,omitempty"`
	SpinPower          *float64  `yaml:"spin_power,omitempty"`
	MaxRandomTurn      *float64  `yaml:"max_random_turn,omitempty"`
}

// Apply returns p with every set override replaced.
func (o *ParamOverrides) Apply(p tank.Params) tank.Params {
	if o == nil {
		return p
	}
	setFloat(&p.FacingTolerance, o.FacingTolerance)
	setFloat(&p.EngageRange, o.EngageRange)
	setFloat(&p.FleeRange, o.FleeRange)
	setFloat(&p.FireRange, o.FireRange)
	setFloat(&p.TurnRate, o.TurnRate)
	setFloat(&p.SpinRate, o.SpinRate)
	setFloat(&p.SpinPower, o.SpinPower)
	setFloat(&p.MaxRandomTurn, o.MaxRandomTurn)
	if o.FireDelay != nil {
		p.FireDelay = o.FireDelay.Duration
	}
	if o.PerceptionInterval != nil {
		p.PerceptionInterval = o.PerceptionInterval.Duration
	}
	return p
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Duration is a time.Duration written as a Go duration string ("20ms").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string like \"20ms\"", value.Line)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Default returns the built-in two-tank match.
func Default() *SimConfig {
	c := &SimConfig{
		Version: Version,
		Agents: map[string]Agent{
			"alpha": {Profile: tank.Tracker.String(), X: -20, Heading: 90},
			"bravo": {Profile: tank.Defensive.String(), X: 20, Heading: -90},
		},
	}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset simulation settings.
func (c *SimConfig) ApplyDefaults() {
	if c.Simulation == nil {
		c.Simulation = &SimulationConfig{}
	}
	s := c.Simulation
	if s.Steps == 0 {
		s.Steps = 3000
	}
	if s.DT.Duration == 0 {
		s.DT.Duration = 20 * time.Millisecond
	}
	if s.ArenaSize == 0 {
		s.ArenaSize = 80
	}
	if s.HitRadius == 0 {
		s.HitRadius = 2.5
	}
	if s.MaxSpeed == 0 {
		s.MaxSpeed = 12
	}
	if s.MaxTurnSpeed == 0 {
		s.MaxTurnSpeed = 180
	}
	if s.ShellRange == 0 {
		s.ShellRange = 60
	}
	if s.ShellDamage == 0 {
		s.ShellDamage = 20
	}
	if s.Health == 0 {
		s.Health = 100
	}
	if s.Reload.Duration == 0 {
		s.Reload.Duration = 500 * time.Millisecond
	}
}

// Validate performs strict validation on the configuration
func (c *SimConfig) Validate() error {
	// Required: version
	if c.Version != Version {
		return fmt.Errorf("unsupported version: %q (expected: %q)", c.Version, Version)
	}

	// Required: at least one agent
	if len(c.Agents) == 0 {
		return fmt.Errorf("no agents defined")
	}

	for _, name := range c.AgentNames() {
		if err := c.Agents[name].Validate(name); err != nil {
			return err
		}
	}

	if s := c.Simulation; s != nil {
		if s.Steps < 0 {
			return fmt.Errorf("simulation.steps must not be negative, got %d", s.Steps)
		}
		if s.DT.Duration < 0 {
			return fmt.Errorf("simulation.dt must not be negative, got %s", s.DT)
		}
		if s.ArenaSize < 0 || s.HitRadius < 0 || s.MaxSpeed < 0 || s.MaxTurnSpeed < 0 ||
			s.ShellRange < 0 || s.ShellDamage < 0 || s.Health < 0 || s.Reload.Duration < 0 {
			return fmt.Errorf("simulation settings must not be negative")
		}
	}
	return nil
}

// Validate performs validation on a single agent configuration
func (a Agent) Validate(name string) error {
	// Required: profile
	if a.Profile == "" {
		return fmt.Errorf("agent '%s': profile is required", name)
	}
	if _, err := tank.ParseProfile(a.Profile); err != nil {
		return fmt.Errorf("agent '%s': %w", name, err)
	}
	if o := a.Params; o != nil {
		if o.FireDelay != nil && o.FireDelay.Duration < 0 {
			return fmt.Errorf("agent '%s': params.fire_delay must not be negative", name)
		}
		if o.PerceptionInterval != nil && o.PerceptionInterval.Duration <= 0 {
			return fmt.Errorf("agent '%s': params.perception_interval must be > 0", name)
		}
	}
	return nil
}

// AgentNames returns agent names in sorted order, which is also the order
// agents are ticked in.
func (c *SimConfig) AgentNames() []string {
	names := make([]string, 0, len(c.Agents))
	for name := range c.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile implements tank.ProfileSelector. Unknown agents and unparsable
// profiles select the default tree.
func (c *SimConfig) Profile(agent string) tank.Profile {
	a, ok := c.Agents[agent]
	if !ok {
		return tank.Default
	}
	p, err := tank.ParseProfile(a.Profile)
	if err != nil {
		return tank.Default
	}
	return p
}

// Params returns the effective parameters of agent.
func (c *SimConfig) Params(agent string) tank.Params {
	return c.Agents[agent].Params.Apply(tank.DefaultParams(c.Profile(agent)))
}

// Parse decodes, defaults and validates configuration data.
func Parse(data []byte) (*SimConfig, error) {
	var config SimConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config.ApplyDefaults()
	return &config, nil
}

// Load reads and validates tanksim.yml from the specified path
func Load(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}
