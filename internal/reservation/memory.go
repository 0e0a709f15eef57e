package reservation

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"campusreserve/internal/events"
	"campusreserve/internal/workflow"
)

// Memory keeps requests in process. It backs the memory store backend and tests.
type Memory struct {
	table *workflow.MemoryTable[Request]
}

func NewMemory(enforceOverlap bool) *Memory {
	t := workflow.NewMemoryTable(workflow.KindReservation,
		func(r Request, id int64, at time.Time) Request {
			r.ID = id
			r.CreatedAt = at
			return r
		},
		func(r Request, d workflow.Decision) Request {
			r.Review = r.Review.Applied(d)
			return r
		},
	)
	if enforceOverlap {
		t.Guard = func(cur Request, d workflow.Decision, rows []Request) error {
			if d.To != workflow.StatusApproved {
				return nil
			}
			for _, o := range rows {
				if o.ID == cur.ID || o.ResourceID != cur.ResourceID || o.Status != workflow.StatusApproved {
					continue
				}
				if o.Interval().Overlaps(cur.Start, cur.End) {
					return fmt.Errorf("%w: overlaps approved reservation %d", workflow.ErrConflict, o.ID)
				}
			}
			return nil
		}
	}
	return &Memory{table: t}
}

func (m *Memory) Create(ctx context.Context, r Request) (Request, error) {
	r.Review = workflow.Review{Status: workflow.StatusPending}
	return m.table.Insert(ctx, r, r.RequesterID, r.CreatedAt, map[string]any{
		"resourceId": r.ResourceID,
		"startsAt":   r.Start,
		"endsAt":     r.End,
		"attendees":  r.NumberOfAttendees,
	})
}

func (m *Memory) Get(ctx context.Context, id int64) (Request, error) {
	return m.table.Get(ctx, id)
}

func (m *Memory) List(ctx context.Context, requesterID string) ([]Request, error) {
	if requesterID == "" {
		return m.table.List(ctx, nil)
	}
	return m.table.List(ctx, func(r Request) bool { return r.RequesterID == requesterID })
}

func (m *Memory) Approved(ctx context.Context, resourceID int64, from, to time.Time) iter.Seq2[Request, error] {
	return func(yield func(Request, error) bool) {
		rows, err := m.table.List(ctx, func(r Request) bool {
			if r.ResourceID != resourceID || r.Status != workflow.StatusApproved {
				return false
			}
			if !from.IsZero() && !r.End.After(from) {
				return false
			}
			return to.IsZero() || r.Start.Before(to)
		})
		if err != nil {
			yield(Request{}, err)
			return
		}
		slices.SortStableFunc(rows, func(a, b Request) int {
			if c := a.Start.Compare(b.Start); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		for _, r := range rows {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (m *Memory) Resolve(ctx context.Context, id int64, d workflow.Decision) (Request, error) {
	return m.table.Resolve(ctx, id, d)
}

func (m *Memory) Timeline(ctx context.Context, id int64) ([]events.Event, error) {
	return m.table.Timeline(ctx, id)
}
