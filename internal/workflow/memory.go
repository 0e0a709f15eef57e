package workflow

import (
	"context"
	"slices"
	"sync"
	"time"

	"campusreserve/internal/events"
)

// MemoryTable is an in-process store for one approvable kind. It backs the memory store
// backend and tests. T should be a value type; rows are copied in and out.
type MemoryTable[T Approvable] struct {
	kind Kind

	// assign stamps a new row with its id and creation time.
	assign func(v T, id int64, at time.Time) T
	// apply returns a copy of v with the decision written to it.
	apply func(v T, d Decision) T

	// Guard runs under the write lock before a decision is applied; rows is every stored row.
	Guard func(current T, d Decision, rows []T) error

	mu       sync.RWMutex
	seq      int64
	order    []int64
	rows     map[int64]T
	timeline map[int64][]events.Event
	eventSeq int64
}

func NewMemoryTable[T Approvable](kind Kind, assign func(T, int64, time.Time) T, apply func(T, Decision) T) *MemoryTable[T] {
	return &MemoryTable[T]{
		kind:     kind,
		assign:   assign,
		apply:    apply,
		rows:     map[int64]T{},
		timeline: map[int64][]events.Event{},
	}
}

// Insert stores v as a new Pending row and records its SUBMITTED event.
func (m *MemoryTable[T]) Insert(ctx context.Context, v T, actor string, at time.Time, data map[string]any) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	v = m.assign(v, m.seq, at)
	m.rows[m.seq] = v
	m.order = append(m.order, m.seq)
	m.appendEvent(m.seq, events.TypeSubmitted, "Request submitted", actor, at, data)
	return v, nil
}

func (m *MemoryTable[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.rows[id]
	if !ok {
		return zero, ErrNotFound
	}
	return v, nil
}

// List returns a snapshot of rows matching keep, newest first. A nil keep matches all.
func (m *MemoryTable[T]) List(ctx context.Context, keep func(T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.order))
	for _, id := range slices.Backward(m.order) {
		v := m.rows[id]
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *MemoryTable[T]) Resolve(ctx context.Context, id int64, d Decision) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.rows[id]
	if !ok {
		return zero, ErrNotFound
	}
	if _, err := Next(cur.ApprovalStatus(), d.Event); err != nil {
		return zero, err
	}
	if m.Guard != nil {
		all := make([]T, 0, len(m.order))
		for _, rid := range m.order {
			all = append(all, m.rows[rid])
		}
		if err := m.Guard(cur, d, all); err != nil {
			return zero, err
		}
	}

	next := m.apply(cur, d)
	m.rows[id] = next

	eventType, summary := events.TypeApproved, "Request approved"
	if d.To == StatusRejected {
		eventType, summary = events.TypeRejected, "Request rejected"
	}
	data := map[string]any{"from": cur.ApprovalStatus(), "to": d.To}
	if d.Message != nil {
		data["message"] = *d.Message
	}
	m.appendEvent(id, eventType, summary, d.ReviewerID, d.At, data)
	return next, nil
}

func (m *MemoryTable[T]) Timeline(ctx context.Context, id int64) ([]events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.rows[id]; !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(m.timeline[id]), nil
}

func (m *MemoryTable[T]) appendEvent(id int64, eventType, summary, actor string, at time.Time, data map[string]any) {
	m.eventSeq++
	m.timeline[id] = append(m.timeline[id], events.Event{
		ID:         m.eventSeq,
		EntityKind: string(m.kind),
		EntityID:   id,
		EventType:  eventType,
		Summary:    summary,
		Actor:      actor,
		OccurredAt: at,
		Data:       data,
	})
}
