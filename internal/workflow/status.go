package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the shared tri-state of every approvable entity. It is persisted and
// serialised as a number: 0 Pending, 1 Approved, 2 Rejected.
type Status int

const (
	StatusPending  Status = 0
	StatusApproved Status = 1
	StatusRejected Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseStatus accepts the numeric form or the name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "pending":
		return StatusPending, nil
	case "1", "approved":
		return StatusApproved, nil
	case "2", "rejected":
		return StatusRejected, nil
	default:
		return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
	}
}

// Event drives a transition.
type Event string

const (
	EventApprove Event = "approve"
	EventReject  Event = "reject"
)

var transitions = map[Status]map[Event]Status{
	StatusPending:  {EventApprove: StatusApproved, EventReject: StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

// Next returns the state reached from `from` on ev, or ErrInvalidTransition.
func Next(from Status, ev Event) (Status, error) {
	m, ok := transitions[from]
	if !ok {
		return 0, fmt.Errorf("%w: unknown status %d", ErrInvalidTransition, from)
	}
	to, ok := m[ev]
	if !ok {
		return 0, fmt.Errorf("%w: cannot %s a %s request", ErrInvalidTransition, ev, strings.ToLower(from.String()))
	}
	return to, nil
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
