// Package availability projects approved reservations of a resource onto a calendar.
// Pending and rejected requests never appear.
package availability

import (
	"context"
	"iter"
	"strings"
	"time"

	"campusreserve/internal/reservation"
	"campusreserve/internal/validation"
)

// Window is an occupied span of a resource.
type Window struct {
	ResourceID int64     `json:"resourceId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Label      string    `json:"label"`
}

// Source is the reservation storage read path.
type Source interface {
	Approved(ctx context.Context, resourceID int64, from, to time.Time) iter.Seq2[reservation.Request, error]
}

type View struct {
	Source Source
}

func NewView(src Source) *View {
	return &View{Source: src}
}

// ListApproved yields every approved window of the resource, ordered by start.
//
// Nothing is read until the sequence is ranged, and each range reads again, so a sequence
// kept across a resolution observes it. Breaking out of the loop stops the scan.
func (v *View) ListApproved(ctx context.Context, resourceID int64) iter.Seq2[Window, error] {
	return v.Between(ctx, resourceID, time.Time{}, time.Time{})
}

// Between yields the approved windows intersecting [from, to). A zero bound is open.
func (v *View) Between(ctx context.Context, resourceID int64, from, to time.Time) iter.Seq2[Window, error] {
	return func(yield func(Window, error) bool) {
		for r, err := range v.Source.Approved(ctx, resourceID, from, to) {
			if err != nil {
				yield(Window{}, err)
				return
			}
			if !yield(windowOf(r), nil) {
				return
			}
		}
	}
}

// Intervals collects the approved spans intersecting [from, to) for the double-booking rule.
func (v *View) Intervals(ctx context.Context, resourceID int64, from, to time.Time) ([]validation.Interval, error) {
	var out []validation.Interval
	for w, err := range v.Between(ctx, resourceID, from, to) {
		if err != nil {
			return nil, err
		}
		out = append(out, validation.Interval{Start: w.Start, End: w.End})
	}
	return out, nil
}

func windowOf(r reservation.Request) Window {
	return Window{
		ResourceID: r.ResourceID,
		Start:      r.Start,
		End:        r.End,
		Label:      Label(r),
	}
}

// Label is "<requester name>: <activity>", falling back to the requester id.
func Label(r reservation.Request) string {
	who := strings.TrimSpace(r.RequesterName)
	if who == "" {
		who = r.RequesterID
	}
	if r.ActivityDescription == "" {
		return who
	}
	return who + ": " + r.ActivityDescription
}
