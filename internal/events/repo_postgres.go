package events

import (
	"context"
	"database/sql"
)

// PostgresRepo persists delivery events.
//
// NOTE: assumes the following table exists:
//
//	CREATE TABLE delivery_events (
//	  id          UUID PRIMARY KEY,
//	  sid         TEXT NOT NULL,
//	  kind        TEXT NOT NULL,
//	  status      TEXT,
//	  from_number TEXT,
//	  to_number   TEXT,
//	  error_code  TEXT,
//	  message     TEXT,
//	  created_at  TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX ON delivery_events (sid, created_at);

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO delivery_events (id, sid, kind, status, from_number, to_number, error_code, message, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.SID,
		string(e.Kind),
		e.Status,
		e.From,
		e.To,
		e.ErrorCode,
		e.Message,
		e.CreatedAt,
	)
	return err
}
