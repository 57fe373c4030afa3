package flows

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory flow registry for tests and early development.

type MemoryRepo struct {
	mu    sync.Mutex
	Flows []Flow
	Err   error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) List(ctx context.Context) ([]Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]Flow, len(r.Flows))
	copy(out, r.Flows)
	return out, nil
}
