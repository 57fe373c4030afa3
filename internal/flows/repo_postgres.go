package flows

import (
	"context"
	"database/sql"
)

// PostgresRepo reads flow reference data.
//
// NOTE: assumes the following table exists (owned by the CRM; the gateway
// never writes it):
//
//	CREATE TABLE call_flows (
//	  key         TEXT PRIMARY KEY,
//	  env_var_ref TEXT NOT NULL,
//	  active      BOOLEAN NOT NULL DEFAULT TRUE
//	);

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) List(ctx context.Context) ([]Flow, error) {
	const q = `
SELECT key, env_var_ref, active
FROM call_flows
ORDER BY key ASC
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Flow, 0)
	for rows.Next() {
		var f Flow
		if err := rows.Scan(&f.Key, &f.EnvVarRef, &f.Active); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
