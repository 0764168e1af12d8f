// Package testutil holds test doubles and driver adapters shared by the
// package tests and benchmarks.
package testutil

import (
	"fmt"
	"sync"

	"github.com/comalice/behaviortreex/tank"
)

// Call is one recorded actuator call.
type Call struct {
	Op    tank.Op
	Value float64
}

func (c Call) String() string { return fmt.Sprintf("%s(%.4f)", c.Op, c.Value) }

// RecordingActuator records every actuator call in order.
type RecordingActuator struct {
	mu    sync.Mutex
	calls []Call
}

func (r *RecordingActuator) Turn(rate float64)  { r.record(tank.OpTurn, rate) }
func (r *RecordingActuator) Move(rate float64)  { r.record(tank.OpMove, rate) }
func (r *RecordingActuator) Fire(power float64) { r.record(tank.OpFire, power) }

func (r *RecordingActuator) record(op tank.Op, v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: op, Value: v})
}

// Calls returns a copy of the recorded calls.
func (r *RecordingActuator) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many calls of op were recorded.
func (r *RecordingActuator) Count(op tank.Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Last returns the most recent call of op.
func (r *RecordingActuator) Last(op tank.Op) (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].Op == op {
			return r.calls[i], true
		}
	}
	return Call{}, false
}

// Reset discards the recorded calls.
func (r *RecordingActuator) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// ScriptedPerception returns whatever perception was last set.
type ScriptedPerception struct {
	mu      sync.Mutex
	current tank.Perception
	samples int
}

// NewScriptedPerception starts with p.
func NewScriptedPerception(p tank.Perception) *ScriptedPerception {
	return &ScriptedPerception{current: p}
}

// Set changes what the next sample returns.
func (s *ScriptedPerception) Set(p tank.Perception) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
}

func (s *ScriptedPerception) Sample() tank.Perception {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples++
	return s.current
}

// Samples returns how many times Sample was called.
func (s *ScriptedPerception) Samples() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples
}
