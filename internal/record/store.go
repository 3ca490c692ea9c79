package record

import (
	"context"

	id "medgate/pkg/domain"
)

// Store persists protected resources.
//
// Implementations return sentinel errors for the gateway to translate:
//   - sentinel.ErrNotFound when the resource does not exist
//   - sentinel.ErrAlreadyExists on a duplicate create
//   - sentinel.ErrConflict when an update loses an optimistic-concurrency race
type Store interface {
	// Create persists a new resource at version 1.
	Create(ctx context.Context, res ProtectedResource) error

	// Get returns the resource, archived or not.
	Get(ctx context.Context, resourceID id.ResourceID) (ProtectedResource, error)

	// Update persists the resource if the stored version still matches
	// res.Version, then increments it.
	Update(ctx context.Context, res ProtectedResource) (ProtectedResource, error)

	// ListByPatient returns a patient's resources in creation order.
	ListByPatient(ctx context.Context, patientID id.UserID) ([]ProtectedResource, error)
}
