package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-gateway/internal/events"
)

func seeded(sid string, s Status) *MemoryRepo {
	repo := NewMemoryRepo()
	repo.Seed(MessageRecord{SID: sid, From: "+15550001111", To: "+15552223333", Status: s})
	return repo
}

func TestApply_AdvancesStatus(t *testing.T) {
	repo := seeded("SM123", StatusSent)
	sink := events.NewMemoryRepo()
	svc := NewService(repo, events.NewService(sink), nil)

	res, err := svc.Apply(context.Background(), Callback{SID: "SM123", Status: StatusDelivered})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.Found || !res.Applied || res.Current != StatusDelivered {
		t.Fatalf("unexpected result: %+v", res)
	}
	if rec, _ := repo.Get("SM123"); rec.Status != StatusDelivered {
		t.Fatalf("expected stored delivered, got %q", rec.Status)
	}
	evts := sink.BySID("SM123")
	if len(evts) != 1 || evts[0].Kind != events.KindApplied {
		t.Fatalf("expected one applied event, got %+v", evts)
	}
}

func TestApply_IsIdempotent(t *testing.T) {
	repo := seeded("SM123", StatusSent)
	svc := NewService(repo, nil, nil)

	cb := Callback{SID: "SM123", Status: StatusDelivered}
	if _, err := svc.Apply(context.Background(), cb); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res, err := svc.Apply(context.Background(), cb)
	if err != nil {
		t.Fatalf("unexpected err on replay: %v", err)
	}
	if res.Applied {
		t.Fatalf("expected replay to be a no-op")
	}
	if rec, _ := repo.Get("SM123"); rec.Status != StatusDelivered {
		t.Fatalf("expected delivered after replay, got %q", rec.Status)
	}
}

func TestApply_RefusesRegression(t *testing.T) {
	repo := seeded("SM123", StatusQueued)
	sink := events.NewMemoryRepo()
	svc := NewService(repo, events.NewService(sink), nil)

	ctx := context.Background()
	for _, s := range []Status{StatusDelivered, StatusSent} {
		if _, err := svc.Apply(ctx, Callback{SID: "SM123", Status: s}); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if rec, _ := repo.Get("SM123"); rec.Status != StatusDelivered {
		t.Fatalf("late sent regressed delivered to %q", rec.Status)
	}
	// The refused callback is still logged.
	evts := sink.BySID("SM123")
	if len(evts) != 2 || evts[1].Kind != events.KindStale {
		t.Fatalf("expected applied+stale events, got %+v", evts)
	}
}

func TestApply_TerminalRaceUsesProviderTimestamp(t *testing.T) {
	repo := seeded("SM123", StatusSent)
	svc := NewService(repo, nil, nil)

	ctx := context.Background()
	newer := time.Unix(1700000060, 0).UTC()
	older := time.Unix(1700000000, 0).UTC()

	if _, err := svc.Apply(ctx, Callback{SID: "SM123", Status: StatusFailed, OccurredAt: newer}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.Apply(ctx, Callback{SID: "SM123", Status: StatusDelivered, OccurredAt: older}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec, _ := repo.Get("SM123"); rec.Status != StatusFailed {
		t.Fatalf("older terminal callback overwrote newer, got %q", rec.Status)
	}
}

func TestApply_RejectsMalformed(t *testing.T) {
	svc := NewService(seeded("SM123", StatusSent), nil, nil)
	ctx := context.Background()

	if _, err := svc.Apply(ctx, Callback{Status: StatusSent}); !errors.Is(err, ErrMalformedCallback) {
		t.Fatalf("expected ErrMalformedCallback for missing sid, got %v", err)
	}
	if _, err := svc.Apply(ctx, Callback{SID: "SM123", Status: Status("accepted")}); !errors.Is(err, ErrMalformedCallback) {
		t.Fatalf("expected ErrMalformedCallback for unknown status, got %v", err)
	}
}

func TestApply_UnknownSIDIsAckedAndLogged(t *testing.T) {
	sink := events.NewMemoryRepo()
	svc := NewService(NewMemoryRepo(), events.NewService(sink), nil)

	res, err := svc.Apply(context.Background(), Callback{SID: "SM404", Status: StatusDelivered})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Found || res.Applied {
		t.Fatalf("unexpected result for unknown sid: %+v", res)
	}
	evts := sink.BySID("SM404")
	if len(evts) != 1 || evts[0].Kind != events.KindUnknownSID {
		t.Fatalf("expected unknown-sid event, got %+v", evts)
	}
}

type fakeClaims struct {
	claimed  map[string]bool
	claimErr error
	released []string
}

func newFakeClaims() *fakeClaims { return &fakeClaims{claimed: map[string]bool{}} }

func (f *fakeClaims) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if f.claimed[key] {
		return false, nil
	}
	f.claimed[key] = true
	return true, nil
}

func (f *fakeClaims) Release(ctx context.Context, key string) error {
	delete(f.claimed, key)
	f.released = append(f.released, key)
	return nil
}

func TestApply_ReplayClaimSuppressesSecondDelivery(t *testing.T) {
	repo := seeded("SM123", StatusSent)
	svc := NewService(repo, nil, newFakeClaims())

	ctx := context.Background()
	cb := Callback{SID: "SM123", Status: StatusDelivered}
	if _, err := svc.Apply(ctx, cb); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res, err := svc.Apply(ctx, cb)
	if err != nil {
		t.Fatalf("unexpected err on redelivery: %v", err)
	}
	if !res.Duplicate {
		t.Fatalf("expected redelivery to be suppressed, got %+v", res)
	}
}

func TestApply_ClaimFailureFailsOpen(t *testing.T) {
	repo := seeded("SM123", StatusSent)
	claims := newFakeClaims()
	claims.claimErr = errors.New("redis down")
	svc := NewService(repo, nil, claims)

	res, err := svc.Apply(context.Background(), Callback{SID: "SM123", Status: StatusDelivered})
	if err != nil {
		t.Fatalf("expected fail-open apply, got %v", err)
	}
	if !res.Applied {
		t.Fatalf("expected status applied despite claim failure")
	}
}

type failingRepo struct{}

func (failingRepo) Apply(ctx context.Context, cb Callback) (ApplyOutcome, error) {
	return ApplyOutcome{}, errors.New("store down")
}

func TestApply_StoreFailureReleasesClaim(t *testing.T) {
	claims := newFakeClaims()
	svc := NewService(failingRepo{}, nil, claims)

	_, err := svc.Apply(context.Background(), Callback{SID: "SM123", Status: StatusDelivered})
	if err == nil {
		t.Fatalf("expected store error")
	}
	if len(claims.released) != 1 {
		t.Fatalf("expected claim released after store failure, got %v", claims.released)
	}
}
