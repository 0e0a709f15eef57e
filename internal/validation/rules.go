// Package validation decides whether a booking proposal for a laboratory or room is legal.
//
// Everything here is pure: callers pass the clock and the resource capacity in, so the rules
// can be exercised exhaustively without a store.
package validation

import (
	"fmt"
	"time"
)

// Rule identifies which booking rule a proposal broke.
type Rule string

const (
	RuleWeekday       Rule = "WEEKDAY"
	RuleFuture        Rule = "NOT_IN_FUTURE"
	RuleBusinessHours Rule = "OUTSIDE_BUSINESS_HOURS"
	RuleOrdering      Rule = "INVALID_ORDER"
	RuleDuration      Rule = "DURATION_OUT_OF_RANGE"
	RuleCapacity      Rule = "CAPACITY_EXCEEDED"
	RuleOverlap       Rule = "SLOT_TAKEN"
)

// Booking limits.
const (
	OpeningHour = 6

	ClosingHour   = 16
	ClosingMinute = 20

	MinDuration = 30 * time.Minute
	MaxDuration = 8 * time.Hour
)

// RuleViolation is returned for any broken rule. Message is shown to the requester verbatim.
type RuleViolation struct {
	Rule    Rule
	Message string
}

func (v *RuleViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

func violation(rule Rule, format string, args ...any) *RuleViolation {
	return &RuleViolation{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// Proposal is a booking candidate with both ends already combined into wall-clock instants.
type Proposal struct {
	Start     time.Time
	End       time.Time
	Attendees int
}

// Validate applies the booking rules in order and returns the first violation, or nil.
//
// Order: weekday, future, business hours (start then end), ordering, duration, capacity.
func Validate(capacity uint32, p Proposal, now time.Time) error {
	if wd := p.Start.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return violation(RuleWeekday, "reservations are only allowed Monday to Friday; %s is a %s",
			p.Start.Format(DateLayout), wd)
	}

	if p.Start.Before(now) {
		return violation(RuleFuture, "the reservation must start in the future")
	}

	if !withinBusinessHours(p.Start) {
		return violation(RuleBusinessHours, "start time %s is outside business hours (%s to %s)",
			p.Start.Format(ClockLayout), openingLabel(), closingLabel())
	}
	if !withinBusinessHours(p.End) {
		return violation(RuleBusinessHours, "end time %s is outside business hours (%s to %s)",
			p.End.Format(ClockLayout), openingLabel(), closingLabel())
	}

	if !p.Start.Before(p.End) {
		return violation(RuleOrdering, "the start must be before the end")
	}

	d := p.End.Sub(p.Start)
	if d < MinDuration {
		return violation(RuleDuration, "the reservation must last at least %d minutes", int(MinDuration/time.Minute))
	}
	if d > MaxDuration {
		return violation(RuleDuration, "the reservation cannot last more than %d hours", int(MaxDuration/time.Hour))
	}

	if p.Attendees < 1 {
		return violation(RuleCapacity, "at least one attendee is required")
	}
	if uint64(p.Attendees) > uint64(capacity) {
		return violation(RuleCapacity, "%d attendees exceed the capacity of %d", p.Attendees, capacity)
	}

	return nil
}

// withinBusinessHours checks hour and minute only: 16:20 passes, 16:21 does not.
func withinBusinessHours(t time.Time) bool {
	h, m := t.Hour(), t.Minute()
	if h < OpeningHour || h > ClosingHour {
		return false
	}
	return !(h == ClosingHour && m > ClosingMinute)
}

func openingLabel() string { return fmt.Sprintf("%02d:00", OpeningHour) }
func closingLabel() string { return fmt.Sprintf("%02d:%02d", ClosingHour, ClosingMinute) }
