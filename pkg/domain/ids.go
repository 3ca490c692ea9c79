// Package domain holds the small value types shared across modules: typed
// identifiers and the enumerations that gate protected-data access.
//
// IDs are distinct types over uuid.UUID so a consent id can never be passed
// where a user id is expected. Construct them via the Parse* functions at
// trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "medgate/pkg/domain-errors"
)

type (
	// UserID identifies an actor in the unified identity space: patients,
	// doctors, and admins all live here.
	UserID uuid.UUID

	// ConsentID identifies a consent grant.
	ConsentID uuid.UUID

	// ResourceID identifies a protected resource.
	ResourceID uuid.UUID

	// OperationID identifies one logical gateway operation. Audit record ids
	// are derived from it so upstream retries stay idempotent.
	OperationID uuid.UUID

	// AuditID identifies an audit record. Always derived, never random.
	AuditID uuid.UUID
)

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ConsentID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ResourceID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id OperationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AuditID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id ConsentID) String() string   { return uuid.UUID(id).String() }
func (id ResourceID) String() string  { return uuid.UUID(id).String() }
func (id OperationID) String() string { return uuid.UUID(id).String() }
func (id AuditID) String() string     { return uuid.UUID(id).String() }

func NewUserID() UserID           { return UserID(uuid.New()) }
func NewConsentID() ConsentID     { return ConsentID(uuid.New()) }
func NewResourceID() ResourceID   { return ResourceID(uuid.New()) }
func NewOperationID() OperationID { return OperationID(uuid.New()) }

// parseUUID enforces the shared invariant: valid, non-empty, non-nil UUID.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

func ParseConsentID(s string) (ConsentID, error) {
	u, err := parseUUID(s)
	return ConsentID(u), err
}

func ParseResourceID(s string) (ResourceID, error) {
	u, err := parseUUID(s)
	return ResourceID(u), err
}

func ParseOperationID(s string) (OperationID, error) {
	u, err := parseUUID(s)
	return OperationID(u), err
}

func ParseAuditID(s string) (AuditID, error) {
	u, err := parseUUID(s)
	return AuditID(u), err
}

// auditNamespace seeds SHA1-derived audit ids. Changing it would change every
// derived id, so it is fixed for the lifetime of the ledger.
var auditNamespace = uuid.MustParse("9f2c1c4e-5b7a-4d27-a2f3-6e8b0d4c9a11")

// DeriveAuditID deterministically derives an audit record id from the
// enclosing logical operation and a stage label within it. A retried
// operation derives the same id, which makes ledger appends idempotent.
func DeriveAuditID(op OperationID, stage string) AuditID {
	return AuditID(uuid.NewSHA1(auditNamespace, []byte(op.String()+"/"+stage)))
}
