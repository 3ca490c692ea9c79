package consent

import (
	"time"

	id "medgate/pkg/domain"
)

// Status is the stored lifecycle state of a consent. Only explicit
// revocation is persisted; expiry is computed at evaluation time.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// EffectiveStatus is a consent's status as computed at evaluation time,
// incorporating time-based expiry.
type EffectiveStatus string

const (
	EffectiveActive  EffectiveStatus = "active"
	EffectiveRevoked EffectiveStatus = "revoked"
	EffectiveExpired EffectiveStatus = "expired"
)

// Consent is a patient-authorized, time-bounded grant permitting a grantee
// to access one category of the patient's protected data.
//
// Invariants: ValidUntil > ValidFrom; once revoked, never active again;
// history is never overwritten — a fresh grant for the same (patient,
// grantee, scope) is a new record, not an update of this one.
type Consent struct {
	ID         id.ConsentID
	PatientID  id.UserID
	GranteeID  id.UserID
	Scope      id.Scope
	Purpose    string
	ValidFrom  time.Time
	ValidUntil time.Time
	Status     Status
	RevokedAt  *time.Time

	// Version supports optimistic concurrency in the stores. Incremented on
	// every successful update.
	Version int64
}

// EffectiveStatusAt computes the consent's status at the given instant
// without mutating the stored record. Revocation dominates expiry: a revoked
// consent reads as revoked forever, regardless of ValidUntil. Outside the
// validity window an unrevoked consent reads as expired.
func (c Consent) EffectiveStatusAt(now time.Time) EffectiveStatus {
	if c.Status == StatusRevoked {
		return EffectiveRevoked
	}
	if c.ValidUntil.Before(now) || now.Before(c.ValidFrom) {
		return EffectiveExpired
	}
	return EffectiveActive
}
