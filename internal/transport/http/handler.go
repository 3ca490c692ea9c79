package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medgate/internal/audit"
	"medgate/internal/consent"
	"medgate/internal/domain"
	"medgate/internal/platform/middleware"
	"medgate/internal/record"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/platform/httputil"
)

// Gateway is the interface the HTTP layer drives. Every protected-data
// operation goes through it; handlers never touch stores or the engine
// directly.
type Gateway interface {
	CreateResource(ctx context.Context, actor domain.Actor, p record.CreateParams) (record.ProtectedResource, error)
	GetResource(ctx context.Context, actor domain.Actor, resourceID id.ResourceID) (record.ProtectedResource, error)
	UpdateResource(ctx context.Context, actor domain.Actor, resourceID id.ResourceID, metadata map[string]string) (record.ProtectedResource, error)
	ArchiveResource(ctx context.Context, actor domain.Actor, resourceID id.ResourceID) (record.ProtectedResource, error)
	DeleteResource(ctx context.Context, actor domain.Actor, resourceID id.ResourceID, destructive bool) (record.ProtectedResource, error)
	ListResources(ctx context.Context, actor domain.Actor, patientID id.UserID) ([]record.ProtectedResource, error)

	GrantConsent(ctx context.Context, actor domain.Actor, p consent.CreateParams) (consent.Consent, error)
	RevokeConsent(ctx context.Context, actor domain.Actor, consentID id.ConsentID) (consent.Consent, error)
	ListConsents(ctx context.Context, actor domain.Actor, patientID id.UserID) ([]consent.Consent, error)

	AuditTrail(ctx context.Context, actor domain.Actor, targetID string, cursor audit.Cursor, limit int) ([]audit.Record, audit.Cursor, error)
}

// Handler wires the protected endpoints to the gateway.
type Handler struct {
	gateway Gateway
	logger  *slog.Logger
}

// New constructs the handler with its dependencies.
func New(gateway Gateway, logger *slog.Logger) *Handler {
	return &Handler{gateway: gateway, logger: logger}
}

// Register mounts all protected endpoints on the router. Callers wrap the
// group with RequireAuth; the handlers assume an authenticated actor.
func (h *Handler) Register(r chi.Router) {
	r.Post("/records", h.HandleCreateRecord)
	r.Get("/records/{recordID}", h.HandleGetRecord)
	r.Put("/records/{recordID}", h.HandleUpdateRecord)
	r.Post("/records/{recordID}/archive", h.HandleArchiveRecord)
	r.Delete("/records/{recordID}", h.HandleDeleteRecord)
	r.Get("/patients/{patientID}/records", h.HandleListRecords)

	r.Post("/consents", h.HandleGrantConsent)
	r.Post("/consents/{consentID}/revoke", h.HandleRevokeConsent)
	r.Get("/patients/{patientID}/consents", h.HandleListConsents)

	r.Get("/audit/{targetID}", h.HandleAuditTrail)
}

// actor pulls the authenticated identity set by the auth middleware.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor := middleware.GetActor(r.Context())
	if actor.ID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.Actor{}, false
	}
	return actor, true
}
