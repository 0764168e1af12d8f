package tank

import (
	"fmt"
	"strconv"
	"strings"
)

// Profile selects a behavior from the catalog. The integer ids are stable
// and are what configuration files and older hosts refer to.
type Profile int

const (
	Frantic           Profile = 0
	AggressiveTracker Profile = 1
	Defensive         Profile = 2
	Erratic           Profile = 3
	StationaryTurret  Profile = 4
	Tracker           Profile = 5

	// Default is any id outside the catalog: turn slowly, never fire.
	Default Profile = -1
)

type profileInfo struct {
	name        string
	description string
}

var catalog = map[Profile]profileInfo{
	Frantic:           {"frantic", "spin hard toward the target, fire at random power when roughly facing it"},
	AggressiveTracker: {"aggressive-tracker", "face the target, close distance when far, fire when aligned"},
	Defensive:         {"defensive", "reverse away when close, hold and fire at medium range"},
	Erratic:           {"erratic", "charge and fire at anything in front, otherwise wander at a random turn rate"},
	StationaryTurret:  {"stationary-turret", "turn slowly on the spot, firing at full power every step"},
	Tracker:           {"tracker", "turn to face the target, pause, then fire at random power"},
	Default:           {"default", "turn slowly, never fire"},
}

// Profiles returns the catalog profiles in id order.
func Profiles() []Profile {
	return []Profile{Frantic, AggressiveTracker, Defensive, Erratic, StationaryTurret, Tracker}
}

// Known reports whether p has a catalog tree of its own.
func (p Profile) Known() bool {
	_, ok := catalog[p]
	return ok && p != Default
}

func (p Profile) String() string {
	if info, ok := catalog[p]; ok && p.Known() {
		return info.name
	}
	return "default"
}

// Description is a one-line summary of the behavior.
func (p Profile) Description() string {
	if !p.Known() {
		return catalog[Default].description
	}
	return catalog[p].description
}

// ParseProfile accepts a catalog name or a decimal id. Ids outside the
// catalog are valid and select the default tree.
func ParseProfile(s string) (Profile, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if id, err := strconv.Atoi(s); err == nil {
		return Profile(id), nil
	}
	for p, info := range catalog {
		if info.name == s {
			return p, nil
		}
	}
	return Default, fmt.Errorf("unknown profile %q", s)
}

// ProfileSelector decides which behavior an agent runs.
type ProfileSelector interface {
	Profile(agent string) Profile
}

// StaticSelector maps agent names to profiles; unmapped agents get Fallback.
type StaticSelector struct {
	Agents   map[string]Profile
	Fallback Profile
}

func (s StaticSelector) Profile(agent string) Profile {
	if p, ok := s.Agents[agent]; ok {
		return p
	}
	return s.Fallback
}
