package consent

import (
	"context"

	id "medgate/pkg/domain"
)

// Store persists consent grants. Implementations translate backend failures
// into pkg/platform/sentinel errors; they never leak driver error types.
//
// Create fails with sentinel.ErrAlreadyExists on an id collision. Update is
// an optimistic write: it matches the record's current Version, increments
// it, and fails with sentinel.ErrConflict when a concurrent writer got there
// first. ListByPatient returns insertion order and never hides revoked or
// expired history.
type Store interface {
	Create(ctx context.Context, c Consent) error
	Get(ctx context.Context, consentID id.ConsentID) (Consent, error)
	Update(ctx context.Context, c Consent) (Consent, error)
	ListByPatient(ctx context.Context, patientID id.UserID) ([]Consent, error)
	ListByPatientGrantee(ctx context.Context, patientID, granteeID id.UserID) ([]Consent, error)
}
