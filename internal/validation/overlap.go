package validation

import (
	"iter"
	"time"
)

// Interval is a half-open [Start, End) booking already holding a resource.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) intersects i. Touching ends do not overlap.
func (i Interval) Overlaps(start, end time.Time) bool {
	return start.Before(i.End) && i.Start.Before(end)
}

// CheckOverlap is the optional double-booking rule. It is not part of Validate: the
// availability calendar is informational unless a deployment opts in.
func CheckOverlap(start, end time.Time, approved iter.Seq[Interval]) error {
	for i := range approved {
		if i.Overlaps(start, end) {
			return violation(RuleOverlap, "the resource is already reserved from %s to %s",
				i.Start.Format(DateLayout+" "+ClockLayout), i.End.Format(ClockLayout))
		}
	}
	return nil
}
