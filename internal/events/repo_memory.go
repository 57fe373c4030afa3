package events

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory delivery event repository for tests and early
// development.

type MemoryRepo struct {
	mu     sync.Mutex
	Events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
	return nil
}

// BySID returns the recorded events for a SID, in append order.
func (r *MemoryRepo) BySID(sid string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0)
	for _, e := range r.Events {
		if e.SID == sid {
			out = append(out, e)
		}
	}
	return out
}
