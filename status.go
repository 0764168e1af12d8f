package behaviortreex

import "fmt"

// Status is the completion state a node reports after a tick.
type Status int

const (
	StatusInactive Status = iota
	StatusRunning
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Done reports whether the status is terminal (success or failure).
func (s Status) Done() bool {
	return s == StatusSuccess || s == StatusFailure
}

// ParseStatus is the inverse of String.
func ParseStatus(s string) (Status, error) {
	for st := StatusInactive; st <= StatusFailure; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return StatusInactive, fmt.Errorf("unknown status %q", s)
}
