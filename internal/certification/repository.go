package certification

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"campusreserve/internal/events"
	"campusreserve/internal/workflow"
	"campusreserve/pkg/db"
)

const columns = `id, requester_id, requester_name, certification_name, provider, exam_date::text, cost::text,
  currency, justification, status, response_message, reviewed_by, reviewed_at, created_at`

type Repository struct {
	db       *pgxpool.Pool
	approval *workflow.PGStore[Request]
}

func NewRepository(pool *pgxpool.Pool, log *zap.SugaredLogger) *Repository {
	return &Repository{
		db: pool,
		approval: &workflow.PGStore[Request]{
			Pool:    pool,
			Kind:    workflow.KindCertification,
			Table:   "certification_requests",
			Columns: columns,
			Scan:    scanRequest,
			Log:     log,
		},
	}
}

func (r *Repository) Create(ctx context.Context, req Request) (Request, error) {
	var out Request
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		q := `
INSERT INTO certification_requests (
  requester_id, requester_name, certification_name, provider, exam_date, cost, currency,
  justification, status, created_at, updated_at
)
VALUES ($1, $2, $3, $4, CAST($5 AS date), CAST($6 AS numeric), $7, $8, $9, $10, $10)
RETURNING ` + columns
		var err error
		out, err = scanRequest(tx.QueryRow(ctx, q,
			req.RequesterID, req.RequesterName, req.CertificationName, req.Provider,
			req.ExamDate.String(), req.Cost.String(), req.Currency, req.Justification,
			int16(workflow.StatusPending), req.CreatedAt,
		))
		if err != nil {
			return fmt.Errorf("insert certification request: %w", err)
		}
		return workflow.RecordSubmission(ctx, tx, workflow.KindCertification, out.ID, out.RequesterID, out.CreatedAt, map[string]any{
			"certification": out.CertificationName,
			"examDate":      out.ExamDate.String(),
			"cost":          out.Cost.String(),
		})
	})
	if err != nil {
		return Request{}, err
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Request, error) {
	out, err := scanRequest(r.db.QueryRow(ctx, `SELECT `+columns+` FROM certification_requests WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Request{}, workflow.ErrNotFound
		}
		return Request{}, fmt.Errorf("get certification request %d: %w", id, err)
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context, requesterID string) ([]Request, error) {
	q := `SELECT ` + columns + `
FROM certification_requests
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
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *Repository) Resolve(ctx context.Context, id int64, d workflow.Decision) (Request, error) {
	return r.approval.Resolve(ctx, id, d)
}

func (r *Repository) Timeline(ctx context.Context, id int64) ([]events.Event, error) {
	return r.approval.Timeline(ctx, id)
}

func scanRequest(row pgx.Row) (Request, error) {
	var (
		out        Request
		examDate   string
		cost       string
		status     int16
		message    *string
		reviewedBy *string
		reviewedAt *time.Time
	)
	if err := row.Scan(
		&out.ID, &out.RequesterID, &out.RequesterName, &out.CertificationName, &out.Provider,
		&examDate, &cost, &out.Currency, &out.Justification,
		&status, &message, &reviewedBy, &reviewedAt, &out.CreatedAt,
	); err != nil {
		return Request{}, err
	}
	d, err := ParseDate(examDate)
	if err != nil {
		return Request{}, fmt.Errorf("decode exam date of request %d: %w", out.ID, err)
	}
	c, err := decimal.NewFromString(cost)
	if err != nil {
		return Request{}, fmt.Errorf("decode cost of request %d: %w", out.ID, err)
	}
	out.ExamDate = d
	out.Cost = c
	out.Review = workflow.ScanReview(status, message, reviewedBy, reviewedAt)
	return out, nil
}
