package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"campusreserve/internal/audit"
	"campusreserve/internal/events"
	"campusreserve/pkg/db"
)

// PGStore resolves entities of one kind stored in Table. Every approvable table carries the
// same review columns: status, response_message, reviewed_by, reviewed_at, updated_at.
type PGStore[T Approvable] struct {
	Pool  *pgxpool.Pool
	Kind  Kind
	Table string
	// Columns is the select list Scan understands; it is reused for RETURNING.
	Columns string
	Scan    func(row pgx.Row) (T, error)
	// Guard runs inside the transaction after the row lock and before the update.
	Guard func(ctx context.Context, tx pgx.Tx, current T, d Decision) error
	Log   *zap.SugaredLogger
}

func (s *PGStore[T]) Resolve(ctx context.Context, id int64, d Decision) (T, error) {
	var out T
	err := db.WithTx(ctx, s.Pool, func(tx pgx.Tx) error {
		lockQ := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, s.Columns, s.Table)
		cur, err := s.Scan(tx.QueryRow(ctx, lockQ, id))
		if err != nil {
			if db.IsNoRows(err) {
				return ErrNotFound
			}
			return fmt.Errorf("lock %s %d: %w", s.Kind, id, err)
		}

		if _, err := Next(cur.ApprovalStatus(), d.Event); err != nil {
			return err
		}
		if s.Guard != nil {
			if err := s.Guard(ctx, tx, cur, d); err != nil {
				return err
			}
		}

		// The status predicate keeps the update a compare-and-set even without the lock.
		updateQ := fmt.Sprintf(`
UPDATE %s
SET status = $2,
    response_message = $3,
    reviewed_by = $4,
    reviewed_at = $5,
    updated_at = NOW()
WHERE id = $1 AND status = $6
RETURNING %s
`, s.Table, s.Columns)
		out, err = s.Scan(tx.QueryRow(ctx, updateQ, id, int16(d.To), d.Message, d.ReviewerID, d.At, int16(StatusPending)))
		if err != nil {
			if db.IsNoRows(err) {
				return ErrInvalidTransition
			}
			return fmt.Errorf("update %s %d: %w", s.Kind, id, err)
		}

		eventType, summary := events.TypeApproved, "Request approved"
		if d.To == StatusRejected {
			eventType, summary = events.TypeRejected, "Request rejected"
		}
		data := map[string]any{"from": cur.ApprovalStatus(), "to": d.To}
		if d.Message != nil {
			data["message"] = *d.Message
		}
		if err := events.Insert(ctx, tx, string(s.Kind), id, eventType, summary, d.ReviewerID, d.At, data); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		if err := audit.Insert(ctx, tx, string(s.Kind), id, "STATUS_CHANGED", d.ReviewerID, data); err != nil {
			return fmt.Errorf("insert audit: %w", err)
		}
		return nil
	})
	if err != nil {
		var zero T
		if !isDomainError(err) && s.Log != nil {
			s.Log.Errorw("resolve failed", "kind", s.Kind, "id", id, "error", err)
		}
		return zero, err
	}
	return out, nil
}

func (s *PGStore[T]) Timeline(ctx context.Context, id int64) ([]events.Event, error) {
	var exists bool
	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, s.Table)
	if err := s.Pool.QueryRow(ctx, q, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return events.ListByEntity(ctx, s.Pool, string(s.Kind), id)
}

// RecordSubmission writes the SUBMITTED timeline entry and audit row in the creating transaction.
func RecordSubmission(ctx context.Context, tx pgx.Tx, kind Kind, id int64, actor string, at time.Time, data any) error {
	if err := events.Insert(ctx, tx, string(kind), id, events.TypeSubmitted, "Request submitted", actor, at, data); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if err := audit.Insert(ctx, tx, string(kind), id, "SUBMITTED", actor, data); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrConflict)
}
