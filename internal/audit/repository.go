package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

// Insert records who did what to an entity. It runs inside the caller's transaction so a
// rolled back decision leaves no audit row behind.
func Insert(ctx context.Context, tx pgx.Tx, kind string, entityID int64, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (entity_kind, entity_id, action, actor, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := tx.Exec(ctx, q, kind, entityID, action, actor, s)
	return err
}
