package consent

import (
	"context"
	"errors"

	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
)

// StoreLookup adapts a Store into the read-only lookup capability the
// authorization engine consumes. There is exactly one rule table; every
// backend plugs in here instead of re-implementing scope checks.
type StoreLookup struct {
	store Store
}

func NewStoreLookup(store Store) *StoreLookup {
	return &StoreLookup{store: store}
}

// ConsentsFor returns every consent the patient has granted to the grantee,
// regardless of effective status. The engine applies expiry and revocation
// itself so the decision stays a pure function of its inputs.
func (l *StoreLookup) ConsentsFor(ctx context.Context, patientID, granteeID id.UserID) ([]Consent, error) {
	consents, err := l.store.ListByPatientGrantee(ctx, patientID, granteeID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "consent lookup timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "consent lookup failed")
	}
	return consents, nil
}
