// Package events records the per-entity timeline shown next to each request.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	TypeSubmitted = "SUBMITTED"
	TypeApproved  = "APPROVED"
	TypeRejected  = "REJECTED"
)

type Event struct {
	ID         int64          `json:"id"`
	EntityKind string         `json:"entityKind"`
	EntityID   int64          `json:"entityId"`
	EventType  string         `json:"eventType"`
	Summary    string         `json:"summary"`
	Actor      string         `json:"actor"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data,omitempty"`
}

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Insert must run in the same transaction as the state change it describes.
func Insert(ctx context.Context, tx pgx.Tx, kind string, entityID int64, eventType, summary, actor string, occurredAt time.Time, data any) error {
	var s *string
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO entity_events (entity_kind, entity_id, event_type, summary, actor, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, $6, CAST($7 AS jsonb))
`
	_, err := tx.Exec(ctx, q, kind, entityID, eventType, summary, actor, occurredAt, s)
	return err
}

func ListByEntity(ctx context.Context, db Querier, kind string, entityID int64) ([]Event, error) {
	const q = `
SELECT id, entity_kind, entity_id, event_type, summary, actor, occurred_at, COALESCE(data, '{}'::jsonb)
FROM entity_events
WHERE entity_kind = $1 AND entity_id = $2
ORDER BY occurred_at ASC, id ASC
`
	rows, err := db.Query(ctx, q, kind, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EntityKind, &e.EntityID, &e.EventType, &e.Summary, &e.Actor, &e.OccurredAt, &e.Data); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
