package consent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"medgate/internal/domain"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/platform/sentinel"
	"medgate/pkg/requestcontext"
)

// Service owns the consent lifecycle. It keeps orchestration out of the
// gateway and the lifecycle invariants out of the stores.
//
// Every timestamp it writes comes from requestcontext.Now(ctx) — the
// coordinator of the logical operation decides the time once, and creation
// stamps, revocation stamps, and the audit records the gateway emits all
// agree on it.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// CreateParams carries the caller-supplied fields of a new grant.
type CreateParams struct {
	PatientID  id.UserID
	GranteeID  id.UserID
	Scope      id.Scope
	Purpose    string
	ValidUntil time.Time
}

// Create records a new consent grant. Only the patient themselves, or an
// admin acting explicitly on the patient's behalf, may grant.
//
// Errors: CodeInvalidRange when ValidUntil is not in the future,
// CodeUnauthorized when requestedBy may not grant for this patient,
// CodeDuplicateID on an id collision.
func (s *Service) Create(ctx context.Context, p CreateParams, requestedBy domain.Actor) (Consent, error) {
	now := requestcontext.Now(ctx)

	if p.PatientID.IsNil() || p.GranteeID.IsNil() {
		return Consent{}, dErrors.New(dErrors.CodeInvalidInput, "patient and grantee ids are required")
	}
	if !p.Scope.IsValid() {
		return Consent{}, dErrors.New(dErrors.CodeInvalidInput, "invalid scope")
	}
	if !p.ValidUntil.After(now) {
		return Consent{}, dErrors.New(dErrors.CodeInvalidRange, "validUntil must be in the future")
	}
	if requestedBy.ID != p.PatientID && !requestedBy.IsAdmin() {
		return Consent{}, dErrors.New(dErrors.CodeUnauthorized, "only the patient or an admin may grant consent")
	}

	c := Consent{
		ID:         id.NewConsentID(),
		PatientID:  p.PatientID,
		GranteeID:  p.GranteeID,
		Scope:      p.Scope,
		Purpose:    p.Purpose,
		ValidFrom:  now,
		ValidUntil: p.ValidUntil,
		Status:     StatusActive,
		Version:    1,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return Consent{}, s.translate(err, "create consent")
	}

	s.logger.InfoContext(ctx, "consent granted",
		"consent_id", c.ID.String(),
		"patient_id", c.PatientID.String(),
		"grantee_id", c.GranteeID.String(),
		"scope", c.Scope.String(),
	)
	return c, nil
}

// Revoke transitions a consent to revoked. The transition is one-way: a
// revoked consent never returns to active, and history is preserved rather
// than deleted.
//
// Errors: CodeNotFound, CodeAlreadyRevoked, CodeUnauthorized unless
// requestedBy is the owning patient or an admin, CodeConflict when a
// concurrent writer touched the record first.
func (s *Service) Revoke(ctx context.Context, consentID id.ConsentID, requestedBy domain.Actor) (Consent, error) {
	now := requestcontext.Now(ctx)

	c, err := s.store.Get(ctx, consentID)
	if err != nil {
		return Consent{}, s.translate(err, "load consent")
	}
	if requestedBy.ID != c.PatientID && !requestedBy.IsAdmin() {
		return Consent{}, dErrors.New(dErrors.CodeUnauthorized, "only the owning patient or an admin may revoke")
	}
	if c.Status == StatusRevoked {
		return Consent{}, dErrors.New(dErrors.CodeAlreadyRevoked, "consent is already revoked")
	}

	c.Status = StatusRevoked
	c.RevokedAt = &now

	updated, err := s.store.Update(ctx, c)
	if err != nil {
		return Consent{}, s.translate(err, "revoke consent")
	}

	s.logger.InfoContext(ctx, "consent revoked",
		"consent_id", c.ID.String(),
		"patient_id", c.PatientID.String(),
		"requested_by", requestedBy.ID.String(),
	)
	return updated, nil
}

// Get returns a single consent by id.
func (s *Service) Get(ctx context.Context, consentID id.ConsentID) (Consent, error) {
	c, err := s.store.Get(ctx, consentID)
	if err != nil {
		return Consent{}, s.translate(err, "load consent")
	}
	return c, nil
}

// ListByPatient returns the patient's full consent history in insertion
// order, revoked and expired entries included. History is never hidden.
func (s *Service) ListByPatient(ctx context.Context, patientID id.UserID) ([]Consent, error) {
	consents, err := s.store.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, s.translate(err, "list consents")
	}
	return consents, nil
}

// translate maps store sentinels and context failures into the closed
// domain taxonomy. Callers above this layer never see storage error types.
func (s *Service) translate(err error, op string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+" timed out")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "consent not found")
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.New(dErrors.CodeDuplicateID, "consent id already exists")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "concurrent consent modification")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
	}
}
