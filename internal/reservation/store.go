package reservation

import (
	"context"
	"iter"
	"time"

	"campusreserve/internal/workflow"
)

// Store persists reservation requests. It also resolves them for the approval engine.
type Store interface {
	workflow.Store[Request]

	Create(ctx context.Context, r Request) (Request, error)
	Get(ctx context.Context, id int64) (Request, error)
	// List returns requests newest first; an empty requesterID lists everyone's.
	List(ctx context.Context, requesterID string) ([]Request, error)
	// Approved yields the approved requests of a resource intersecting [from, to), ordered
	// by start. A zero bound is open. The query runs when the sequence is ranged.
	Approved(ctx context.Context, resourceID int64, from, to time.Time) iter.Seq2[Request, error]
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*Memory)(nil)
)
