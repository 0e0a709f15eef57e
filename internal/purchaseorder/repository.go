package purchaseorder

import (
	"context"
	"encoding/json"
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

const columns = `id, requester_id, requester_name, udp, supplier, justification, currency, items, total::text,
  status, response_message, reviewed_by, reviewed_at, created_at`

type Repository struct {
	db       *pgxpool.Pool
	approval *workflow.PGStore[Order]
}

func NewRepository(pool *pgxpool.Pool, log *zap.SugaredLogger) *Repository {
	return &Repository{
		db: pool,
		approval: &workflow.PGStore[Order]{
			Pool:    pool,
			Kind:    workflow.KindPurchaseOrder,
			Table:   "purchase_orders",
			Columns: columns,
			Scan:    scanOrder,
			Log:     log,
		},
	}
}

func (r *Repository) Create(ctx context.Context, o Order) (Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return Order{}, err
	}

	var out Order
	err = db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		q := `
INSERT INTO purchase_orders (
  requester_id, requester_name, udp, supplier, justification, currency, items, total,
  status, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, CAST($7 AS jsonb), CAST($8 AS numeric), $9, $10, $10)
RETURNING ` + columns
		var err error
		out, err = scanOrder(tx.QueryRow(ctx, q,
			o.RequesterID, o.RequesterName, o.UDP, o.Supplier, o.Justification, o.Currency,
			string(items), o.Total.String(), int16(workflow.StatusPending), o.CreatedAt,
		))
		if err != nil {
			return fmt.Errorf("insert purchase order: %w", err)
		}
		return workflow.RecordSubmission(ctx, tx, workflow.KindPurchaseOrder, out.ID, out.RequesterID, out.CreatedAt, map[string]any{
			"supplier": out.Supplier,
			"total":    out.Total.String(),
			"currency": out.Currency,
		})
	})
	if err != nil {
		return Order{}, err
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Order, error) {
	out, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+columns+` FROM purchase_orders WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Order{}, workflow.ErrNotFound
		}
		return Order{}, fmt.Errorf("get purchase order %d: %w", id, err)
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context, requesterID string) ([]Order, error) {
	q := `SELECT ` + columns + `
FROM purchase_orders
WHERE ($1 = '' OR requester_id = $1)
ORDER BY created_at DESC, id DESC
`
	rows, err := r.db.Query(ctx, q, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) Resolve(ctx context.Context, id int64, d workflow.Decision) (Order, error) {
	return r.approval.Resolve(ctx, id, d)
}

func (r *Repository) Timeline(ctx context.Context, id int64) ([]events.Event, error) {
	return r.approval.Timeline(ctx, id)
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o          Order
		items      []byte
		total      string
		status     int16
		message    *string
		reviewedBy *string
		reviewedAt *time.Time
	)
	if err := row.Scan(
		&o.ID, &o.RequesterID, &o.RequesterName, &o.UDP, &o.Supplier, &o.Justification, &o.Currency,
		&items, &total, &status, &message, &reviewedBy, &reviewedAt, &o.CreatedAt,
	); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("decode items of order %d: %w", o.ID, err)
	}
	t, err := decimal.NewFromString(total)
	if err != nil {
		return Order{}, fmt.Errorf("decode total of order %d: %w", o.ID, err)
	}
	o.Total = t
	o.Review = workflow.ScanReview(status, message, reviewedBy, reviewedAt)
	return o, nil
}
