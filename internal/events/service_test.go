package events

import (
	"context"
	"testing"
	"time"
)

func TestAppend_FillsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.clock = func() time.Time { return time.Unix(1700000000, 0) }

	err := svc.Append(context.Background(), Event{SID: "SM1", Kind: KindApplied, Status: "delivered"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := repo.BySID("SM1")
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].ID == "" {
		t.Fatalf("expected generated id")
	}
	if !got[0].CreatedAt.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Fatalf("expected clock timestamp, got %v", got[0].CreatedAt)
	}
}

func TestAppend_RejectsInvalid(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.Append(context.Background(), Event{Kind: KindApplied}); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent for missing sid, got %v", err)
	}
	if err := svc.Append(context.Background(), Event{SID: "SM1"}); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent for missing kind, got %v", err)
	}
}
