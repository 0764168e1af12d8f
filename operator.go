package behaviortreex

import (
	"fmt"
	"strconv"
)

// Operator compares a blackboard value against a threshold.
type Operator int

const (
	OpIsSet Operator = iota
	OpIsNotSet
	OpEqual
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
)

var operatorSymbols = map[Operator]string{
	OpIsSet:          "is-set",
	OpIsNotSet:       "is-not-set",
	OpEqual:          "==",
	OpNotEqual:       "!=",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
}

func (op Operator) String() string {
	if s, ok := operatorSymbols[op]; ok {
		return s
	}
	return "op(" + strconv.Itoa(int(op)) + ")"
}

func (op Operator) valid() bool {
	_, ok := operatorSymbols[op]
	return ok
}

func (op Operator) ordering() bool {
	return op == OpLess || op == OpLessOrEqual || op == OpGreater || op == OpGreaterOrEqual
}

// Stops selects what a Condition aborts when its predicate changes.
type Stops int

const (
	// StopsNone checks the predicate only when the child is not running.
	StopsNone Stops = iota
	// StopsSelf aborts the running child when the predicate turns false.
	StopsSelf
	// StopsLowerPriority aborts a running lower-priority sibling when the
	// predicate turns true; the enclosing Selector treats the aborted sibling as
	// failed and the condition takes over on a later tick.
	StopsLowerPriority
	// StopsBoth combines StopsSelf and StopsLowerPriority.
	StopsBoth
	// StopsLowerPriorityImmediateRestart aborts a running lower-priority
	// sibling and takes control within the same tick.
	StopsLowerPriorityImmediateRestart
	// StopsImmediateRestart is the restart-on-change policy: StopsSelf plus
	// StopsLowerPriorityImmediateRestart.
	StopsImmediateRestart
)

var stopsNames = map[Stops]string{
	StopsNone:                          "none",
	StopsSelf:                          "self",
	StopsLowerPriority:                 "lower-priority",
	StopsBoth:                          "both",
	StopsLowerPriorityImmediateRestart: "lower-priority-immediate-restart",
	StopsImmediateRestart:              "immediate-restart",
}

func (s Stops) String() string {
	if n, ok := stopsNames[s]; ok {
		return n
	}
	return "stops(" + strconv.Itoa(int(s)) + ")"
}

func (s Stops) valid() bool {
	_, ok := stopsNames[s]
	return ok
}

func (s Stops) self() bool {
	return s == StopsSelf || s == StopsBoth || s == StopsImmediateRestart
}

func (s Stops) lowerPriority() bool {
	return s == StopsLowerPriority || s == StopsBoth ||
		s == StopsLowerPriorityImmediateRestart || s == StopsImmediateRestart
}

func (s Stops) immediateRestart() bool {
	return s == StopsLowerPriorityImmediateRestart || s == StopsImmediateRestart
}

// comparison is the predicate of a blackboard condition.
type comparison struct {
	key       string
	op        Operator
	threshold any
}

func newComparison(key string, op Operator, threshold any) (comparison, error) {
	c := comparison{key: key, op: op}
	if key == "" {
		return c, fmt.Errorf("%w: empty key", ErrInvalidCondition)
	}
	if !op.valid() {
		return c, fmt.Errorf("%w: key %q: unknown operator %s", ErrInvalidCondition, key, op)
	}
	if op == OpIsSet || op == OpIsNotSet {
		return c, nil
	}
	v, ok := normalize(threshold)
	if !ok {
		return c, fmt.Errorf("%w: key %q: unsupported threshold type %T", ErrInvalidCondition, key, threshold)
	}
	if _, numeric := v.(float64); op.ordering() && !numeric {
		return c, fmt.Errorf("%w: key %q: operator %s needs a numeric threshold, got %T", ErrInvalidCondition, key, op, threshold)
	}
	c.threshold = v
	return c, nil
}

func (c comparison) evaluate(cond *Condition) bool { return c.test(cond.blackboard()) }

// test applies the operator. An absent key reads as the zero value of the
// threshold's type; a value of a different type never matches.
func (c comparison) test(bb *Blackboard) bool {
	if bb == nil {
		return false
	}
	v, ok := bb.Get(c.key)
	switch c.op {
	case OpIsSet:
		return ok
	case OpIsNotSet:
		return !ok
	}
	if !ok {
		v = zeroLike(c.threshold)
	}

	switch t := c.threshold.(type) {
	case bool:
		b, ok := v.(bool)
		if !ok {
			return false
		}
		return c.equality(b == t)
	case string:
		s, ok := v.(string)
		if !ok {
			return false
		}
		return c.equality(s == t)
	case float64:
		f, ok := v.(float64)
		if !ok {
			return false
		}
		switch c.op {
		case OpLess:
			return f < t
		case OpLessOrEqual:
			return f <= t
		case OpGreater:
			return f > t
		case OpGreaterOrEqual:
			return f >= t
		default:
			return c.equality(f == t)
		}
	}
	return false
}

func (c comparison) equality(eq bool) bool {
	if c.op == OpNotEqual {
		return !eq
	}
	return c.op == OpEqual && eq
}

func (c comparison) String() string {
	if c.op == OpIsSet || c.op == OpIsNotSet {
		return c.key + " " + c.op.String()
	}
	return fmt.Sprintf("%s %s %v", c.key, c.op, c.threshold)
}

func zeroLike(v any) any {
	switch v.(type) {
	case bool:
		return false
	case string:
		return ""
	default:
		return 0.0
	}
}
