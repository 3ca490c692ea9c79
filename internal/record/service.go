package record

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"medgate/internal/audit"
	"medgate/internal/authz"
	"medgate/internal/consent"
	"medgate/internal/domain"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/platform/sentinel"
	"medgate/pkg/requestcontext"
)

// Authorizer answers access questions for the gateway.
type Authorizer interface {
	Authorize(ctx context.Context, req authz.Request) (domain.AccessDecision, error)
}

// Auditor is the ledger surface the gateway writes to and queries.
type Auditor interface {
	Append(ctx context.Context, rec audit.Record) (audit.Record, error)
	QueryByTarget(ctx context.Context, targetID string, cursor audit.Cursor, limit int) ([]audit.Record, audit.Cursor, error)
}

// Escalator takes over audit records the ledger could not persist on the
// first attempt.
type Escalator interface {
	Enqueue(ctx context.Context, rec audit.Record, cause error)
}

// Consents is the consent lifecycle surface the gateway orchestrates.
type Consents interface {
	Create(ctx context.Context, p consent.CreateParams, requestedBy domain.Actor) (consent.Consent, error)
	Revoke(ctx context.Context, consentID id.ConsentID, requestedBy domain.Actor) (consent.Consent, error)
	ListByPatient(ctx context.Context, patientID id.UserID) ([]consent.Consent, error)
}

// ConsentInvalidator drops cached consent evidence after a grant or revoke.
type ConsentInvalidator interface {
	Invalidate(ctx context.Context, patientID, granteeID id.UserID)
}

// Gateway is the single entry point for every access to protected health
// data. Nothing reads or mutates a resource except through it, and it holds
// the one sequencing discipline the whole system leans on:
//
//	validate → authorize → (denied: audit, reject) | (allowed: mutate → audit)
//
// A denial is audited and surfaced as CodeUnauthorized carrying the decision
// reason; it is never a blind error. An audit failure after a successful
// mutation is escalated and retried in the background, never rolled back and
// never surfaced to the caller.
type Gateway struct {
	store       Store
	consents    Consents
	engine      Authorizer
	ledger      Auditor
	retrier     Escalator
	invalidator ConsentInvalidator
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewGateway wires the gateway. invalidator may be nil when no consent cache
// is deployed.
func NewGateway(store Store, consents Consents, engine Authorizer, ledger Auditor, retrier Escalator, invalidator ConsentInvalidator, logger *slog.Logger) *Gateway {
	return &Gateway{
		store:       store,
		consents:    consents,
		engine:      engine,
		ledger:      ledger,
		retrier:     retrier,
		invalidator: invalidator,
		logger:      logger,
		tracer:      otel.Tracer("medgate/record"),
	}
}

// CreateParams carries the caller-supplied fields of a new resource.
type CreateParams struct {
	OwnerPatientID id.UserID
	Category       id.Scope

	// DeclaredAuthor names the clinical author. A doctor must declare
	// themselves; an admin creating on a doctor's behalf declares the
	// delegate, and the delegate is what gets stored as CreatedBy.
	// Defaults to the actor when empty.
	DeclaredAuthor id.UserID

	Metadata map[string]string
}

// CreateResource creates a protected resource.
func (g *Gateway) CreateResource(ctx context.Context, actor domain.Actor, p CreateParams) (ProtectedResource, error) {
	ctx, span := g.startSpan(ctx, "record.create", actor)
	defer span.End()

	if err := validateActor(actor); err != nil {
		return ProtectedResource{}, err
	}
	if p.OwnerPatientID.IsNil() {
		return ProtectedResource{}, dErrors.New(dErrors.CodeBadRequest, "owner patient id is required")
	}
	if !p.Category.IsValid() {
		return ProtectedResource{}, dErrors.New(dErrors.CodeBadRequest, "invalid resource category")
	}

	author := p.DeclaredAuthor
	if author.IsNil() {
		author = actor.ID
	}

	now := requestcontext.Now(ctx)
	res := ProtectedResource{
		ID:             id.NewResourceID(),
		OwnerPatientID: p.OwnerPatientID,
		Category:       p.Category,
		CreatedBy:      author,
		Metadata:       p.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	decision, err := g.engine.Authorize(ctx, authz.Request{
		Actor:          actor,
		Action:         id.ActionCreate,
		Resource:       res.Descriptor(),
		DeclaredAuthor: author,
	})
	if err != nil {
		return ProtectedResource{}, translateLookup(err)
	}
	if !decision.Allowed {
		g.appendDecision(ctx, "record.create", actor, id.ActionCreate, res.ID.String(), decision, nil)
		return ProtectedResource{}, denied(decision)
	}

	if err := g.store.Create(ctx, res); err != nil {
		return ProtectedResource{}, g.translate(err, "create resource")
	}
	res.Version = 1

	g.appendDecision(ctx, "record.create", actor, id.ActionCreate, res.ID.String(), decision, map[string]string{
		"category":  res.Category.String(),
		"author_id": author.String(),
	})
	span.SetAttributes(attribute.String("resource.id", res.ID.String()))
	return res, nil
}

// GetResource returns a resource after an authorization check. A denied
// reader learns the denial reason, never the payload.
func (g *Gateway) GetResource(ctx context.Context, actor domain.Actor, resourceID id.ResourceID) (ProtectedResource, error) {
	ctx, span := g.startSpan(ctx, "record.read", actor)
	defer span.End()

	if err := validateActor(actor); err != nil {
		return ProtectedResource{}, err
	}
	if resourceID.IsNil() {
		return ProtectedResource{}, dErrors.New(dErrors.CodeBadRequest, "resource id is required")
	}

	res, err := g.store.Get(ctx, resourceID)
	if err != nil {
		return ProtectedResource{}, g.translate(err, "load resource")
	}

	decision, err := g.engine.Authorize(ctx, authz.Request{
		Actor:    actor,
		Action:   id.ActionRead,
		Resource: res.Descriptor(),
	})
	if err != nil {
		return ProtectedResource{}, translateLookup(err)
	}

	g.appendDecision(ctx, "record.read", actor, id.ActionRead, res.ID.String(), decision, nil)
	if !decision.Allowed {
		return ProtectedResource{}, denied(decision)
	}
	return res, nil
}

// UpdateResource replaces a resource's metadata. Loses to a concurrent
// writer at most once: the gateway re-runs the whole decide-then-mutate
// sequence a single time before surfacing CodeConflict.
func (g *Gateway) UpdateResource(ctx context.Context, actor domain.Actor, resourceID id.ResourceID, metadata map[string]string) (ProtectedResource, error) {
	ctx, span := g.startSpan(ctx, "record.update", actor)
	defer span.End()

	return g.mutate(ctx, "record.update", actor, id.ActionUpdate, resourceID, false, nil,
		func(res ProtectedResource, now time.Time) ProtectedResource {
			res.Metadata = metadata
			res.UpdatedAt = now
			return res
		})
}

// ArchiveResource retires a resource without destroying it. Archiving an
// already archived resource is a no-op success.
func (g *Gateway) ArchiveResource(ctx context.Context, actor domain.Actor, resourceID id.ResourceID) (ProtectedResource, error) {
	ctx, span := g.startSpan(ctx, "record.archive", actor)
	defer span.End()

	return g.mutate(ctx, "record.archive", actor, id.ActionArchive, resourceID, false, nil,
		func(res ProtectedResource, now time.Time) ProtectedResource {
			if res.ArchivedAt == nil {
				res.ArchivedAt = &now
			}
			res.UpdatedAt = now
			return res
		})
}

// DeleteResource handles the destructive path. Protected health data is
// never hard-deleted; a delete is a soft-archive with a tombstone marker,
// and for admins it requires the explicit destructive flag.
func (g *Gateway) DeleteResource(ctx context.Context, actor domain.Actor, resourceID id.ResourceID, destructive bool) (ProtectedResource, error) {
	ctx, span := g.startSpan(ctx, "record.delete", actor)
	defer span.End()

	return g.mutate(ctx, "record.delete", actor, id.ActionDelete, resourceID, destructive,
		map[string]string{"destructive": "true"},
		func(res ProtectedResource, now time.Time) ProtectedResource {
			if res.ArchivedAt == nil {
				res.ArchivedAt = &now
			}
			res.UpdatedAt = now
			return res
		})
}

// ListResources returns a patient's resources. Restricted to the patient
// themselves and admins; a doctor reads individual resources under consent
// instead of enumerating a patient's chart.
func (g *Gateway) ListResources(ctx context.Context, actor domain.Actor, patientID id.UserID) ([]ProtectedResource, error) {
	ctx, span := g.startSpan(ctx, "record.list", actor)
	defer span.End()

	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if patientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "patient id is required")
	}

	decision := selfOrAdminDecision(actor, patientID)
	g.appendDecision(ctx, "record.list", actor, id.ActionRead, patientID.String(), decision, nil)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	resources, err := g.store.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, g.translate(err, "list resources")
	}
	return resources, nil
}

// GrantConsent records a new consent grant and invalidates cached evidence
// for the (patient, grantee) pair.
func (g *Gateway) GrantConsent(ctx context.Context, actor domain.Actor, p consent.CreateParams) (consent.Consent, error) {
	ctx, span := g.startSpan(ctx, "consent.grant", actor)
	defer span.End()

	if err := validateActor(actor); err != nil {
		return consent.Consent{}, err
	}

	c, err := g.consents.Create(ctx, p, actor)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			g.appendDecision(ctx, "consent.grant", actor, id.ActionCreate, p.PatientID.String(),
				domain.Deny(domain.ReasonWrongActor), nil)
		}
		return consent.Consent{}, err
	}

	g.appendDecision(ctx, "consent.grant", actor, id.ActionCreate, c.ID.String(),
		selfOrAdminDecision(actor, c.PatientID), map[string]string{
			"grantee_id": c.GranteeID.String(),
			"scope":      c.Scope.String(),
		})
	g.invalidate(ctx, c.PatientID, c.GranteeID)
	return c, nil
}

// RevokeConsent revokes a grant. Takes effect immediately: the cached pair
// is invalidated before returning, so the very next authorization check sees
// the revocation. Retries a lost optimistic-concurrency race once.
func (g *Gateway) RevokeConsent(ctx context.Context, actor domain.Actor, consentID id.ConsentID) (consent.Consent, error) {
	ctx, span := g.startSpan(ctx, "consent.revoke", actor)
	defer span.End()

	if err := validateActor(actor); err != nil {
		return consent.Consent{}, err
	}

	c, err := g.consents.Revoke(ctx, consentID, actor)
	if err != nil && dErrors.HasCode(err, dErrors.CodeConflict) {
		c, err = g.consents.Revoke(ctx, consentID, actor)
	}
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			g.appendDecision(ctx, "consent.revoke", actor, id.ActionRevoke, consentID.String(),
				domain.Deny(domain.ReasonWrongActor), nil)
		}
		return consent.Consent{}, err
	}

	g.appendDecision(ctx, "consent.revoke", actor, id.ActionRevoke, c.ID.String(),
		selfOrAdminDecision(actor, c.PatientID), map[string]string{
			"grantee_id": c.GranteeID.String(),
			"scope":      c.Scope.String(),
		})
	g.invalidate(ctx, c.PatientID, c.GranteeID)
	return c, nil
}

// ListConsents returns a patient's full consent history, revoked and expired
// entries included. Restricted to the patient themselves and admins.
func (g *Gateway) ListConsents(ctx context.Context, actor domain.Actor, patientID id.UserID) ([]consent.Consent, error) {
	ctx, span := g.startSpan(ctx, "consent.list", actor)
	defer span.End()

	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if patientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "patient id is required")
	}

	decision := selfOrAdminDecision(actor, patientID)
	g.appendDecision(ctx, "consent.list", actor, id.ActionRead, patientID.String(), decision, nil)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	consents, err := g.consents.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return consents, nil
}

// AuditTrail pages through a target's audit history. Admin-only; reading the
// ledger is itself not ledgered, so compliance review does not pollute the
// histories it inspects.
func (g *Gateway) AuditTrail(ctx context.Context, actor domain.Actor, targetID string, cursor audit.Cursor, limit int) ([]audit.Record, audit.Cursor, error) {
	ctx, span := g.startSpan(ctx, "audit.query", actor)
	defer span.End()

	if err := validateActor(actor); err != nil {
		return nil, cursor, err
	}
	if targetID == "" {
		return nil, cursor, dErrors.New(dErrors.CodeBadRequest, "target id is required")
	}
	if !actor.IsAdmin() {
		return nil, cursor, denied(domain.Deny(domain.ReasonWrongActor))
	}
	return g.ledger.QueryByTarget(ctx, targetID, cursor, limit)
}

// mutate runs the decide-then-mutate sequence for an existing resource,
// retrying exactly once when an optimistic-concurrency race is lost. The
// retry re-reads the resource and re-runs the authorization check against
// the fresh state. The final attempt's decision is the one audited.
func (g *Gateway) mutate(ctx context.Context, stage string, actor domain.Actor, action id.Action, resourceID id.ResourceID, destructive bool, details map[string]string, apply func(ProtectedResource, time.Time) ProtectedResource) (ProtectedResource, error) {
	if err := validateActor(actor); err != nil {
		return ProtectedResource{}, err
	}
	if resourceID.IsNil() {
		return ProtectedResource{}, dErrors.New(dErrors.CodeBadRequest, "resource id is required")
	}

	for attempt := 0; ; attempt++ {
		res, err := g.store.Get(ctx, resourceID)
		if err != nil {
			return ProtectedResource{}, g.translate(err, "load resource")
		}

		decision, err := g.engine.Authorize(ctx, authz.Request{
			Actor:       actor,
			Action:      action,
			Resource:    res.Descriptor(),
			Destructive: destructive,
		})
		if err != nil {
			return ProtectedResource{}, translateLookup(err)
		}
		if !decision.Allowed {
			g.appendDecision(ctx, stage, actor, action, res.ID.String(), decision, details)
			return ProtectedResource{}, denied(decision)
		}

		updated, err := g.store.Update(ctx, apply(res, requestcontext.Now(ctx)))
		if err != nil {
			if errors.Is(err, sentinel.ErrConflict) && attempt == 0 {
				g.logger.DebugContext(ctx, "concurrent modification, retrying",
					"resource_id", resourceID.String(),
					"action", action.String(),
				)
				continue
			}
			return ProtectedResource{}, g.translate(err, action.String()+" resource")
		}

		g.appendDecision(ctx, stage, actor, action, updated.ID.String(), decision, details)
		return updated, nil
	}
}

// appendDecision writes the audit record for one externally observable
// decision. The record id is derived from the operation id and stage, so the
// same decision audited twice — a replayed request, a background retry —
// lands as one ledger entry. A failed append is escalated to the retrier and
// never propagated: the caller's mutation already happened.
func (g *Gateway) appendDecision(ctx context.Context, stage string, actor domain.Actor, action id.Action, targetID string, decision domain.AccessDecision, details map[string]string) {
	opID := requestcontext.OperationID(ctx)
	if opID.IsNil() {
		opID = id.NewOperationID()
	}

	outcome := audit.OutcomeDenied
	if decision.Allowed {
		outcome = audit.OutcomeAllowed
	}

	rec := audit.Record{
		ID:        id.DeriveAuditID(opID, stage),
		ActorID:   actor.ID,
		Action:    action,
		TargetID:  targetID,
		Timestamp: requestcontext.Now(ctx),
		Outcome:   outcome,
		Reason:    decision.Reason.String(),
		Details:   details,
	}
	if _, err := g.ledger.Append(ctx, rec); err != nil {
		g.retrier.Enqueue(ctx, rec, err)
	}
}

func (g *Gateway) invalidate(ctx context.Context, patientID, granteeID id.UserID) {
	if g.invalidator != nil {
		g.invalidator.Invalidate(ctx, patientID, granteeID)
	}
}

func (g *Gateway) startSpan(ctx context.Context, name string, actor domain.Actor) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("actor.id", actor.ID.String()),
		attribute.String("actor.role", actor.Role.String()),
	))
}

// translate maps store sentinels into the domain taxonomy.
func (g *Gateway) translate(err error, op string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+" timed out")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "resource not found")
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.New(dErrors.CodeDuplicateID, "resource id already exists")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "concurrent resource modification")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
	}
}

// translateLookup maps consent-evidence lookup failures. A lookup outage is
// an error, never a denial.
func translateLookup(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "consent lookup timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "consent lookup failed")
}

// denied converts a denying decision into the error surfaced to callers. The
// reason travels as metadata so the transport layer can echo it without
// parsing the message.
func denied(d domain.AccessDecision) error {
	return dErrors.Add(dErrors.New(dErrors.CodeUnauthorized, "access denied"), "reason", d.Reason.String())
}

// selfOrAdminDecision models the operations the rule table does not cover:
// consent lifecycle and listing, where only the subject patient or an admin
// qualifies.
func selfOrAdminDecision(actor domain.Actor, patientID id.UserID) domain.AccessDecision {
	switch {
	case actor.IsAdmin():
		return domain.Allow(domain.ReasonAdminOverride)
	case actor.ID == patientID:
		return domain.Allow(domain.ReasonOwner)
	default:
		return domain.Deny(domain.ReasonWrongActor)
	}
}

func validateActor(actor domain.Actor) error {
	if actor.ID.IsNil() || !actor.Role.IsValid() {
		return dErrors.New(dErrors.CodeBadRequest, "acting identity is required")
	}
	return nil
}
