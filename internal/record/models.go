package record

import (
	"time"

	"medgate/internal/domain"
	id "medgate/pkg/domain"
)

// ProtectedResource is a unit of protected health data under the gateway's
// control: a lab result, a prescription, an imaging report.
//
// Invariant: CreatedBy records the clinical author. When an admin creates a
// record on a doctor's behalf, CreatedBy still names the doctor — the
// delegate, never the admin. Resources are only ever soft-archived.
type ProtectedResource struct {
	ID             id.ResourceID
	OwnerPatientID id.UserID
	Category       id.Scope
	CreatedBy      id.UserID
	Metadata       map[string]string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ArchivedAt     *time.Time

	// Version supports optimistic concurrency in the stores.
	Version int64
}

// Descriptor is the authorization-relevant view handed to the rule table.
func (r ProtectedResource) Descriptor() domain.Resource {
	return domain.Resource{
		ID:             r.ID,
		OwnerPatientID: r.OwnerPatientID,
		Category:       r.Category,
		CreatedBy:      r.CreatedBy,
	}
}

// Archived reports whether the resource has been retired.
func (r ProtectedResource) Archived() bool {
	return r.ArchivedAt != nil
}
