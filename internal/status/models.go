package status

import "time"

// MessageRecord mirrors the fields of the CRM's message row that the gateway
// reads and writes. The CRM creates the row when it submits the message; the
// gateway has update-only access and never inserts.

type MessageRecord struct {
	SID  string `json:"sid" db:"sid"`
	From string `json:"from" db:"from_number"`
	To   string `json:"to" db:"to_number"`

	Status    Status `json:"status" db:"status"`
	ErrorCode string `json:"error_code,omitempty" db:"error_code"`

	// StatusUpdatedAt is the provider event time of the stored status when
	// the provider sent one, else the arrival time of the callback that set it.
	StatusUpdatedAt time.Time `json:"status_updated_at" db:"status_updated_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Callback is a normalized delivery-status callback.
type Callback struct {
	SID    string
	Status Status

	From      string
	To        string
	ErrorCode string

	// OccurredAt is the provider event time when present; zero means the
	// provider sent no timestamp and arrival order is the only ordering.
	OccurredAt time.Time
}

type Status string

const (
	StatusQueued      Status = "queued"
	StatusSent        Status = "sent"
	StatusDelivered   Status = "delivered"
	StatusUndelivered Status = "undelivered"
	StatusFailed      Status = "failed"
)

const terminalRank = 2

// Rank orders delivery statuses by lifecycle stage. delivered, undelivered
// and failed share the terminal rank; they are mutually exclusive outcomes,
// not a progression. The second return is false for unknown tokens.
func Rank(s Status) (int, bool) {
	switch s {
	case StatusQueued:
		return 0, true
	case StatusSent:
		return 1, true
	case StatusDelivered, StatusUndelivered, StatusFailed:
		return terminalRank, true
	default:
		return 0, false
	}
}

// shouldApply decides whether next may overwrite current. This is the single
// ordering guard: both the in-memory repo and the Postgres repo (inside its
// row lock) call it, so concurrent callbacks for one SID resolve identically
// wherever they race.
//
// Rules:
//   - same status: no-op (idempotent redelivery)
//   - higher rank: apply
//   - lower rank: refuse (a delayed "sent" must not regress "delivered")
//   - equal terminal rank: provider timestamp wins when both sides have one,
//     else last write wins on arrival order
func shouldApply(current Status, currentAt time.Time, next Status, nextAt time.Time) bool {
	if next == current {
		return false
	}
	cr, _ := Rank(current)
	nr, ok := Rank(next)
	if !ok {
		return false
	}
	if nr != cr {
		return nr > cr
	}
	if nr != terminalRank {
		// Ranks 0 and 1 hold a single status each, so an equal-rank,
		// different-status pair can only be terminal.
		return false
	}
	if nextAt.IsZero() || currentAt.IsZero() {
		return true
	}
	return !nextAt.Before(currentAt)
}
