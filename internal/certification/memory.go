package certification

import (
	"context"
	"time"

	"campusreserve/internal/events"
	"campusreserve/internal/workflow"
)

type Memory struct {
	table *workflow.MemoryTable[Request]
}

func NewMemory() *Memory {
	return &Memory{table: workflow.NewMemoryTable(workflow.KindCertification,
		func(r Request, id int64, at time.Time) Request {
			r.ID = id
			r.CreatedAt = at
			return r
		},
		func(r Request, d workflow.Decision) Request {
			r.Review = r.Review.Applied(d)
			return r
		},
	)}
}

func (m *Memory) Create(ctx context.Context, r Request) (Request, error) {
	r.Review = workflow.Review{Status: workflow.StatusPending}
	return m.table.Insert(ctx, r, r.RequesterID, r.CreatedAt, map[string]any{
		"certification": r.CertificationName,
		"examDate":      r.ExamDate.String(),
		"cost":          r.Cost.String(),
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

func (m *Memory) Resolve(ctx context.Context, id int64, d workflow.Decision) (Request, error) {
	return m.table.Resolve(ctx, id, d)
}

func (m *Memory) Timeline(ctx context.Context, id int64) ([]events.Event, error) {
	return m.table.Timeline(ctx, id)
}
