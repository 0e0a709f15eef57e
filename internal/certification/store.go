package certification

import (
	"context"

	"campusreserve/internal/workflow"
)

type Store interface {
	workflow.Store[Request]

	Create(ctx context.Context, r Request) (Request, error)
	Get(ctx context.Context, id int64) (Request, error)
	// List returns requests newest first; an empty requesterID lists everyone's.
	List(ctx context.Context, requesterID string) ([]Request, error)
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*Memory)(nil)
)
