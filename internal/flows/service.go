package flows

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Repository abstracts the backing store for flow reference data.
type Repository interface {
	List(ctx context.Context) ([]Flow, error)
}

// Service exposes the flow registry to upstream consumers.
//
// Contract: List always returns a non-nil slice. On backing-store failure it
// returns an EMPTY slice together with a non-nil error; callers must treat
// empty-with-error distinctly from a legitimately empty registry.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) List(ctx context.Context) ([]Flow, error) {
	if s.repo == nil {
		return []Flow{}, errors.New("flows: repository not configured")
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return []Flow{}, fmt.Errorf("flows: list failed: %w", err)
	}
	out := make([]Flow, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
