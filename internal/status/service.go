package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-gateway/internal/events"
	"crm-gateway/pkg/logger"
)

var (
	// ErrMalformedCallback covers callbacks missing a SID or carrying an
	// unknown status token. No store mutation is attempted.
	ErrMalformedCallback = errors.New("status: malformed callback")
)

// ApplyOutcome is what a repository reports after the atomic per-row decision.
type ApplyOutcome struct {
	Found    bool
	Applied  bool
	Previous Status
	Current  Status
}

// Repository applies a callback to the message record identified by its SID.
// Implementations must make the read-decide-write atomic per row; shouldApply
// is the decision both implementations share.
type Repository interface {
	Apply(ctx context.Context, cb Callback) (ApplyOutcome, error)
}

// ClaimStore short-circuits provider redeliveries before they reach the
// store. Optional: correctness never depends on it, the repository's
// ordering guard already makes redeliveries safe.
type ClaimStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Result is the reconciler's answer for one callback.
type Result struct {
	Found     bool
	Applied   bool
	Duplicate bool
	Previous  Status
	Current   Status
}

// Service reconciles asynchronous delivery-status callbacks against
// persisted message records.
type Service struct {
	repo   Repository
	sink   *events.Service
	claims ClaimStore

	claimTTL time.Duration
}

// Providers retry failed callbacks for hours; keep claims around at least
// that long so a late redelivery is still recognized.
const defaultClaimTTL = 24 * time.Hour

func NewService(repo Repository, sink *events.Service, claims ClaimStore) *Service {
	return &Service{repo: repo, sink: sink, claims: claims, claimTTL: defaultClaimTTL}
}

// Apply validates and applies one callback.
//
// Error mapping at the HTTP boundary:
//   - ErrMalformedCallback -> 400
//   - any other error -> 500 (store failure; provider retry is safe)
//   - nil -> 204, including unknown-SID and refused regressions
func (s *Service) Apply(ctx context.Context, cb Callback) (Result, error) {
	if s.repo == nil {
		return Result{}, errors.New("status: repository not configured")
	}
	cb.SID = strings.TrimSpace(cb.SID)
	if cb.SID == "" {
		return Result{}, ErrMalformedCallback
	}
	if _, ok := Rank(cb.Status); !ok {
		return Result{}, ErrMalformedCallback
	}

	log := logger.From(ctx)

	key := claimKey(cb)
	if s.claims != nil {
		claimed, err := s.claims.Claim(ctx, key, s.claimTTL)
		if err != nil {
			// Fail open: the store-level guard keeps redeliveries safe.
			log.Warn("replay claim unavailable", "sid", cb.SID, "err", err)
		} else if !claimed {
			s.record(ctx, cb, events.KindDuplicate, "redelivered callback suppressed")
			return Result{Found: true, Duplicate: true, Current: cb.Status}, nil
		}
	}

	out, err := s.repo.Apply(ctx, cb)
	if err != nil {
		if s.claims != nil {
			// Drop the claim so the provider's retry is not suppressed.
			if relErr := s.claims.Release(ctx, key); relErr != nil {
				log.Warn("replay claim release failed", "sid", cb.SID, "err", relErr)
			}
		}
		return Result{}, fmt.Errorf("status: apply failed: %w", err)
	}

	switch {
	case !out.Found:
		log.Warn("status callback for unknown sid", "sid", cb.SID, "status", string(cb.Status))
		s.record(ctx, cb, events.KindUnknownSID, "no message record for sid")
	case out.Applied:
		s.record(ctx, cb, events.KindApplied, "status advanced from "+string(out.Previous))
	case out.Previous == cb.Status:
		s.record(ctx, cb, events.KindDuplicate, "status already applied")
	default:
		s.record(ctx, cb, events.KindStale, "refused regression from "+string(out.Previous))
	}

	return Result{
		Found:    out.Found,
		Applied:  out.Applied,
		Previous: out.Previous,
		Current:  out.Current,
	}, nil
}

func claimKey(cb Callback) string {
	return "cbclaim:" + cb.SID + "|" + string(cb.Status)
}

// record appends a delivery event. Best-effort: a failed append never fails
// the callback that produced it.
func (s *Service) record(ctx context.Context, cb Callback, kind events.Kind, msg string) {
	if s.sink == nil {
		return
	}
	err := s.sink.Append(ctx, events.Event{
		SID:       cb.SID,
		Kind:      kind,
		Status:    string(cb.Status),
		From:      cb.From,
		To:        cb.To,
		ErrorCode: cb.ErrorCode,
		Message:   msg,
	})
	if err != nil {
		logger.From(ctx).Warn("delivery event append failed", "sid", cb.SID, "err", err)
	}
}
