package status

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory message record store for tests and early
// development. Records must be seeded before callbacks arrive; like the
// Postgres repo it never inserts.

type MemoryRepo struct {
	mu      sync.Mutex
	records map[string]MessageRecord
	clock   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: map[string]MessageRecord{}, clock: time.Now}
}

// Seed installs a record, replacing any previous one with the same SID.
func (r *MemoryRepo) Seed(rec MessageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.SID] = rec
}

// Get returns the current record for a SID.
func (r *MemoryRepo) Get(sid string) (MessageRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[sid]
	return rec, ok
}

func (r *MemoryRepo) Apply(ctx context.Context, cb Callback) (ApplyOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[cb.SID]
	if !ok {
		return ApplyOutcome{}, nil
	}

	out := ApplyOutcome{Found: true, Previous: rec.Status, Current: rec.Status}
	if !shouldApply(rec.Status, rec.StatusUpdatedAt, cb.Status, cb.OccurredAt) {
		return out, nil
	}

	now := r.clock().UTC()
	rec.Status = cb.Status
	if cb.ErrorCode != "" {
		rec.ErrorCode = cb.ErrorCode
	}
	rec.StatusUpdatedAt = cb.OccurredAt
	if rec.StatusUpdatedAt.IsZero() {
		rec.StatusUpdatedAt = now
	}
	rec.UpdatedAt = now
	r.records[cb.SID] = rec

	out.Applied = true
	out.Current = rec.Status
	return out, nil
}
