package tank

import "time"

// Params are the tunable thresholds and rates of a profile tree.
type Params struct {
	FacingTolerance    float64       `yaml:"facing_tolerance"`    // max targetOffCentre that counts as aimed
	EngageRange        float64       `yaml:"engage_range"`        // approach while farther than this
	FleeRange          float64       `yaml:"flee_range"`          // reverse while closer than this
	FireRange          float64       `yaml:"fire_range"`          // hold and fire while closer than this
	TurnRate           float64       `yaml:"turn_rate"`           // tracking turn speed
	FireDelay          time.Duration `yaml:"fire_delay"`          // pause between stopping and firing
	PerceptionInterval time.Duration `yaml:"perception_interval"` // sampler interval
	SpinRate           float64       `yaml:"spin_rate"`
	SpinPower          float64       `yaml:"spin_power"`
	MaxRandomTurn      float64       `yaml:"max_random_turn"` // bound of the erratic wander rate
}

// DefaultParams returns the catalog values for p.
func DefaultParams(p Profile) Params {
	base := Params{
		PerceptionInterval: 200 * time.Millisecond,
		MaxRandomTurn:      1,
		SpinPower:          1,
	}
	switch p {
	case Frantic:
		base.FacingTolerance = 0.5
		base.TurnRate = 0.9
		base.FireDelay = time.Second
	case AggressiveTracker:
		base.FacingTolerance = 0.1
		base.EngageRange = 15
		base.TurnRate = 0.2
		base.FireDelay = time.Second
	case Defensive:
		base.FleeRange = 25
		base.FireRange = 50
		base.FireDelay = 500 * time.Millisecond
	case Erratic:
	case StationaryTurret:
		base.SpinRate = -0.05
	case Tracker:
		base.FacingTolerance = 0.1
		base.TurnRate = 0.2
		base.FireDelay = 2 * time.Second
	default:
		base.TurnRate = 0.1
	}
	return base
}
