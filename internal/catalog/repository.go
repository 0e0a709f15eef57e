package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"campusreserve/pkg/db"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectResource = `SELECT id, kind, name, location, capacity, is_active FROM resources`

func (r *Repository) Get(ctx context.Context, id int64) (Resource, error) {
	var res Resource
	var capacity int32
	if err := r.db.QueryRow(ctx, selectResource+` WHERE id = $1`, id).Scan(
		&res.ID, &res.Kind, &res.Name, &res.Location, &capacity, &res.IsActive,
	); err != nil {
		if db.IsNoRows(err) {
			return Resource{}, ErrResourceNotFound
		}
		return Resource{}, fmt.Errorf("get resource %d: %w", id, err)
	}
	res.Capacity = uint32(capacity)
	return res, nil
}

func (r *Repository) ListActive(ctx context.Context, kind Kind) ([]Resource, error) {
	return r.list(ctx, kind, true)
}

func (r *Repository) FetchAll(ctx context.Context, kind Kind) ([]Resource, error) {
	return r.list(ctx, kind, false)
}

func (r *Repository) list(ctx context.Context, kind Kind, activeOnly bool) ([]Resource, error) {
	const q = selectResource + `
WHERE ($1 = '' OR kind = $1)
  AND (NOT $2 OR is_active)
ORDER BY kind, name
`
	rows, err := r.db.Query(ctx, q, string(kind), activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resource{}
	for rows.Next() {
		var res Resource
		var capacity int32
		if err := rows.Scan(&res.ID, &res.Kind, &res.Name, &res.Location, &capacity, &res.IsActive); err != nil {
			return nil, err
		}
		res.Capacity = uint32(capacity)
		out = append(out, res)
	}
	return out, rows.Err()
}

// Upsert keys on (kind, name). Resource administration lives elsewhere; this is for seeding.
func (r *Repository) Upsert(ctx context.Context, res Resource) (Resource, error) {
	if err := res.Validate(); err != nil {
		return Resource{}, err
	}
	const q = `
INSERT INTO resources (kind, name, location, capacity, is_active)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (kind, name) DO UPDATE SET
  location = EXCLUDED.location,
  capacity = EXCLUDED.capacity,
  is_active = EXCLUDED.is_active,
  updated_at = NOW()
RETURNING id
`
	if err := r.db.QueryRow(ctx, q, string(res.Kind), res.Name, res.Location, int32(res.Capacity), res.IsActive).Scan(&res.ID); err != nil {
		return Resource{}, fmt.Errorf("upsert resource: %w", err)
	}
	return res, nil
}
