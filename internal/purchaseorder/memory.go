package purchaseorder

import (
	"context"
	"slices"
	"time"

	"campusreserve/internal/events"
	"campusreserve/internal/workflow"
)

type Memory struct {
	table *workflow.MemoryTable[Order]
}

func NewMemory() *Memory {
	return &Memory{table: workflow.NewMemoryTable(workflow.KindPurchaseOrder,
		func(o Order, id int64, at time.Time) Order {
			o.ID = id
			o.CreatedAt = at
			return o
		},
		func(o Order, d workflow.Decision) Order {
			o.Review = o.Review.Applied(d)
			return o
		},
	)}
}

func (m *Memory) Create(ctx context.Context, o Order) (Order, error) {
	o.Review = workflow.Review{Status: workflow.StatusPending}
	// Rows are copied in and out; the item slice must not be shared with the caller.
	o.Items = slices.Clone(o.Items)
	created, err := m.table.Insert(ctx, o, o.RequesterID, o.CreatedAt, map[string]any{
		"supplier": o.Supplier,
		"total":    o.Total.String(),
		"currency": o.Currency,
	})
	if err != nil {
		return Order{}, err
	}
	created.Items = slices.Clone(created.Items)
	return created, nil
}

func (m *Memory) Get(ctx context.Context, id int64) (Order, error) {
	return m.table.Get(ctx, id)
}

func (m *Memory) List(ctx context.Context, requesterID string) ([]Order, error) {
	if requesterID == "" {
		return m.table.List(ctx, nil)
	}
	return m.table.List(ctx, func(o Order) bool { return o.RequesterID == requesterID })
}

func (m *Memory) Resolve(ctx context.Context, id int64, d workflow.Decision) (Order, error) {
	return m.table.Resolve(ctx, id, d)
}

func (m *Memory) Timeline(ctx context.Context, id int64) ([]events.Event, error) {
	return m.table.Timeline(ctx, id)
}
