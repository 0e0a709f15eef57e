package purchaseorder

import (
	"context"

	"campusreserve/internal/workflow"
)

type Store interface {
	workflow.Store[Order]

	Create(ctx context.Context, o Order) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	// List returns orders newest first; an empty requesterID lists everyone's.
	List(ctx context.Context, requesterID string) ([]Order, error)
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*Memory)(nil)
)
