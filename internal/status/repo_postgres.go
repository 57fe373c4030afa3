package status

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"crm-gateway/pkg/utils"
)

// PostgresRepo applies callbacks to message records.
//
// NOTE: assumes the following table exists (owned by the CRM; the gateway
// only updates status fields):
//
//	CREATE TABLE message_records (
//	  sid               TEXT PRIMARY KEY,
//	  from_number       TEXT NOT NULL,
//	  to_number         TEXT NOT NULL,
//	  status            TEXT NOT NULL,
//	  error_code        TEXT,
//	  status_updated_at TIMESTAMPTZ,
//	  updated_at        TIMESTAMPTZ NOT NULL
//	);
//
// The row lock serializes concurrent callbacks for one SID, so the
// read-decide-write below is atomic per row and shouldApply sees a stable
// current status.

type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

func (r *PostgresRepo) Apply(ctx context.Context, cb Callback) (ApplyOutcome, error) {
	var out ApplyOutcome

	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const qLock = `
SELECT status, status_updated_at
FROM message_records
WHERE sid = $1
FOR UPDATE
`
		var (
			current   string
			currentAt sql.NullTime
		)
		if err := tx.QueryRowContext(ctx, qLock, cb.SID).Scan(&current, &currentAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}

		out.Found = true
		out.Previous = Status(current)
		out.Current = out.Previous

		if !shouldApply(out.Previous, currentAt.Time, cb.Status, cb.OccurredAt) {
			return nil
		}

		now := r.clock().UTC()
		statusAt := cb.OccurredAt
		if statusAt.IsZero() {
			statusAt = now
		}

		const qUpdate = `
UPDATE message_records
SET status = $2,
    error_code = COALESCE(NULLIF($3, ''), error_code),
    status_updated_at = $4,
    updated_at = $5
WHERE sid = $1
`
		if _, err := tx.ExecContext(ctx, qUpdate, cb.SID, string(cb.Status), cb.ErrorCode, statusAt, now); err != nil {
			return err
		}
		out.Applied = true
		out.Current = cb.Status
		return nil
	})
	if err != nil {
		return ApplyOutcome{}, err
	}
	return out, nil
}
