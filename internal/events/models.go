package events

import "time"

// Event is an immutable, append-only delivery event record.
//
// Every status callback the gateway observes lands here, including the ones
// the ordering guard refuses to apply. The message record holds only the
// most advanced status; this log holds the full observed history.
//
// Invariants:
// - Events are never updated or deleted.
// - sid is required; it ties the event to the provider message/call.
//
// Storage recommendation (Postgres):
// - Table delivery_events with an INSERT-only policy.
// - Optional: partition by time for retention.

type Event struct {
	ID  string `json:"id" db:"id"`
	SID string `json:"sid" db:"sid"`

	// Kind indicates what the reconciler did with the observation.
	Kind Kind `json:"kind" db:"kind"`

	// Status is the callback's status token as received.
	Status string `json:"status,omitempty" db:"status"`

	From      string `json:"from,omitempty" db:"from_number"`
	To        string `json:"to,omitempty" db:"to_number"`
	ErrorCode string `json:"error_code,omitempty" db:"error_code"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Kind string

const (
	// KindApplied: the callback advanced the stored status.
	KindApplied Kind = "delivery_applied"
	// KindStale: the callback ranked below the stored status and was not applied.
	KindStale Kind = "delivery_stale"
	// KindDuplicate: the stored status already matched, or the callback was a
	// suppressed provider redelivery.
	KindDuplicate Kind = "delivery_duplicate"
	// KindUnknownSID: no record exists for the callback's SID.
	KindUnknownSID Kind = "delivery_unknown_sid"
)
