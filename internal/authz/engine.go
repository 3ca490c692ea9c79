package authz

import (
	"context"
	"log/slog"

	"medgate/internal/authz/metrics"
	"medgate/internal/consent"
	"medgate/internal/domain"
	id "medgate/pkg/domain"
	"medgate/pkg/requestcontext"
)

// ConsentLookup is the read-only capability the engine needs from the
// consent subsystem. Defined here so any backend — relational, cached,
// ledger-backed — can serve decisions through the one rule table.
type ConsentLookup interface {
	ConsentsFor(ctx context.Context, patientID, granteeID id.UserID) ([]consent.Consent, error)
}

// Request describes one authorization question.
type Request struct {
	Actor          domain.Actor
	Action         id.Action
	Resource       domain.Resource
	DeclaredAuthor id.UserID
	Destructive    bool
}

// Engine answers authorization questions. It gathers the consent evidence,
// then delegates to the pure rule table. It is side-effect-free: it never
// writes to the audit ledger — the caller logs every decision exactly once.
//
// Safe for concurrent use; decisions for distinct (actor, resource) pairs
// share no state.
type Engine struct {
	consents ConsentLookup
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewEngine(consents ConsentLookup, m *metrics.Metrics, logger *slog.Logger) *Engine {
	return &Engine{consents: consents, metrics: m, logger: logger}
}

// Authorize evaluates the request at the coordinator-supplied instant from
// the context. The consent lookup runs only when the static rules (admin,
// authorship, owner, creator) do not already decide.
//
// Errors are infrastructure failures (lookup timeout or outage) and are
// never conflated with a denial: a denied request returns a decision and a
// nil error.
func (e *Engine) Authorize(ctx context.Context, req Request) (domain.AccessDecision, error) {
	in := Input{
		Actor:          req.Actor,
		Action:         req.Action,
		Resource:       req.Resource,
		DeclaredAuthor: req.DeclaredAuthor,
		Destructive:    req.Destructive,
		Now:            requestcontext.Now(ctx),
	}

	if NeedsConsents(in) {
		consents, err := e.consents.ConsentsFor(ctx, req.Resource.OwnerPatientID, req.Actor.ID)
		if err != nil {
			return domain.AccessDecision{}, err
		}
		in.Consents = consents
	}

	decision := Evaluate(in)

	e.metrics.IncDecision(decision)
	e.logger.DebugContext(ctx, "authorization evaluated",
		"actor_id", req.Actor.ID.String(),
		"action", req.Action.String(),
		"resource_id", req.Resource.ID.String(),
		"allowed", decision.Allowed,
		"reason", decision.Reason.String(),
	)
	return decision, nil
}
