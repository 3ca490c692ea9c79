package audit

import (
	"time"

	id "medgate/pkg/domain"
)

// Outcome records whether the audited operation was allowed or denied.
type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
)

// Record is one immutable ledger entry: who attempted what against which
// target, when, with what outcome and why. Records are created exactly once
// per externally observable decision and never updated or destroyed.
//
// The ID is derived from the enclosing logical operation (see
// domain.DeriveAuditID), never generated per write, so an upstream retry
// appends the same id and the ledger deduplicates it.
//
// The Timestamp is supplied by the operation's coordinator and propagated
// unchanged; the ledger never reads a local clock. Mirrored copies of the
// same event therefore agree on time.
type Record struct {
	ID        id.AuditID
	ActorID   id.UserID
	Action    id.Action
	TargetID  string
	Timestamp time.Time
	Outcome   Outcome
	Reason    string
	Details   map[string]string
}

// Cursor is an opaque-ish resume point for QueryByTarget. The zero value
// starts from the beginning. Keyset pagination on (timestamp, id) keeps the
// sequence restartable and unaffected by concurrent appends behind the
// cursor.
type Cursor struct {
	Timestamp time.Time
	ID        id.AuditID
}

// IsZero reports whether the cursor is the start-of-sequence marker.
func (c Cursor) IsZero() bool {
	return c.Timestamp.IsZero() && c.ID.IsNil()
}

// after reports whether record r sorts strictly after the cursor in
// (timestamp, id) order.
func (c Cursor) after(r Record) bool {
	if r.Timestamp.After(c.Timestamp) {
		return true
	}
	if r.Timestamp.Equal(c.Timestamp) {
		return r.ID.String() > c.ID.String()
	}
	return false
}
