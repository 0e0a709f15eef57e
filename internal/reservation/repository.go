package reservation

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"campusreserve/internal/events"
	"campusreserve/internal/workflow"
	"campusreserve/pkg/db"
)

const columns = `
  reservation_requests.id,
  reservation_requests.resource_id,
  COALESCE((SELECT name FROM resources WHERE resources.id = reservation_requests.resource_id), ''),
  reservation_requests.requester_id,
  reservation_requests.requester_name,
  reservation_requests.activity_description,
  reservation_requests.number_of_attendees,
  reservation_requests.starts_at,
  reservation_requests.ends_at,
  reservation_requests.status,
  reservation_requests.response_message,
  reservation_requests.reviewed_by,
  reservation_requests.reviewed_at,
  reservation_requests.created_at`

type Repository struct {
	db       *pgxpool.Pool
	loc      *time.Location
	approval *workflow.PGStore[Request]
}

// NewRepository returns the Postgres store. With enforceOverlap, approving a request that
// intersects an already approved one on the same resource fails with workflow.ErrConflict.
func NewRepository(pool *pgxpool.Pool, loc *time.Location, enforceOverlap bool, log *zap.SugaredLogger) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	r := &Repository{db: pool, loc: loc}
	r.approval = &workflow.PGStore[Request]{
		Pool:    pool,
		Kind:    workflow.KindReservation,
		Table:   "reservation_requests",
		Columns: columns,
		Scan:    r.scan,
		Log:     log,
	}
	if enforceOverlap {
		r.approval.Guard = GuardOverlap
	}
	return r
}

func (r *Repository) Create(ctx context.Context, req Request) (Request, error) {
	var out Request
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		q := `
INSERT INTO reservation_requests (
  resource_id, requester_id, requester_name, activity_description, number_of_attendees,
  starts_at, ends_at, status, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
RETURNING ` + columns
		var err error
		out, err = r.scan(tx.QueryRow(ctx, q,
			req.ResourceID, req.RequesterID, req.RequesterName, req.ActivityDescription, int32(req.NumberOfAttendees),
			req.Start, req.End, int16(workflow.StatusPending), req.CreatedAt,
		))
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		return workflow.RecordSubmission(ctx, tx, workflow.KindReservation, out.ID, out.RequesterID, out.CreatedAt, map[string]any{
			"resourceId": out.ResourceID,
			"startsAt":   out.Start,
			"endsAt":     out.End,
			"attendees":  out.NumberOfAttendees,
		})
	})
	if err != nil {
		return Request{}, err
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Request, error) {
	out, err := r.scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM reservation_requests WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Request{}, workflow.ErrNotFound
		}
		return Request{}, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context, requesterID string) ([]Request, error) {
	q := `SELECT ` + columns + `
FROM reservation_requests
WHERE ($1 = '' OR requester_id = $1)
ORDER BY created_at DESC, id DESC
`
	rows, err := r.db.Query(ctx, q, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Request{}
	for rows.Next() {
		req, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *Repository) Approved(ctx context.Context, resourceID int64, from, to time.Time) iter.Seq2[Request, error] {
	q := `SELECT ` + columns + `
FROM reservation_requests
WHERE resource_id = $1
  AND status = $2
  AND ($3::timestamptz IS NULL OR ends_at > $3)
  AND ($4::timestamptz IS NULL OR starts_at < $4)
ORDER BY starts_at, id
`
	return func(yield func(Request, error) bool) {
		rows, err := r.db.Query(ctx, q, resourceID, int16(workflow.StatusApproved), optionalTime(from), optionalTime(to))
		if err != nil {
			yield(Request{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			req, err := r.scan(rows)
			if err != nil {
				yield(Request{}, err)
				return
			}
			if !yield(req, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Request{}, err)
		}
	}
}

func (r *Repository) Resolve(ctx context.Context, id int64, d workflow.Decision) (Request, error) {
	return r.approval.Resolve(ctx, id, d)
}

func (r *Repository) Timeline(ctx context.Context, id int64) ([]events.Event, error) {
	return r.approval.Timeline(ctx, id)
}

// GuardOverlap serialises approvals per resource by locking the resource row, then refuses
// an approval that would intersect another approved request.
func GuardOverlap(ctx context.Context, tx pgx.Tx, cur Request, d workflow.Decision) error {
	if d.To != workflow.StatusApproved {
		return nil
	}
	if _, err := tx.Exec(ctx, `SELECT 1 FROM resources WHERE id = $1 FOR UPDATE`, cur.ResourceID); err != nil {
		return fmt.Errorf("lock resource %d: %w", cur.ResourceID, err)
	}

	const q = `
SELECT id
FROM reservation_requests
WHERE resource_id = $1
  AND status = $2
  AND id <> $3
  AND starts_at < $5
  AND ends_at > $4
ORDER BY starts_at
LIMIT 1
`
	var clash int64
	err := tx.QueryRow(ctx, q, cur.ResourceID, int16(workflow.StatusApproved), cur.ID, cur.Start, cur.End).Scan(&clash)
	if db.IsNoRows(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: overlaps approved reservation %d", workflow.ErrConflict, clash)
}

func (r *Repository) scan(row pgx.Row) (Request, error) {
	var (
		out        Request
		attendees  int32
		status     int16
		message    *string
		reviewedBy *string
		reviewedAt *time.Time
	)
	if err := row.Scan(
		&out.ID, &out.ResourceID, &out.ResourceName, &out.RequesterID, &out.RequesterName,
		&out.ActivityDescription, &attendees, &out.Start, &out.End,
		&status, &message, &reviewedBy, &reviewedAt, &out.CreatedAt,
	); err != nil {
		return Request{}, err
	}
	out.NumberOfAttendees = int(attendees)
	out.Start = out.Start.In(r.loc)
	out.End = out.End.In(r.loc)
	out.Review = workflow.ScanReview(status, message, reviewedBy, reviewedAt)
	return out, nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
