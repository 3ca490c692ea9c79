package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/platform/httputil"
	"medgate/pkg/requestcontext"
)

// HandleGrantConsent handles POST /consents.
func (h *Handler) HandleGrantConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[GrantConsentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	params, err := req.ToParams()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.gateway.GrantConsent(ctx, actor, params)
	if err != nil {
		h.logger.WarnContext(ctx, "consent grant rejected",
			"request_id", requestID,
			"actor_id", actor.ID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "consent granted",
		"request_id", requestID,
		"consent_id", c.ID.String(),
		"scope", c.Scope.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromConsent(c, requestcontext.Now(ctx)))
}

// HandleRevokeConsent handles POST /consents/{consentID}/revoke.
func (h *Handler) HandleRevokeConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	consentID, err := id.ParseConsentID(chi.URLParam(r, "consentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid consent id"))
		return
	}

	c, err := h.gateway.RevokeConsent(ctx, actor, consentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromConsent(c, requestcontext.Now(ctx)))
}

// HandleListConsents handles GET /patients/{patientID}/consents.
func (h *Handler) HandleListConsents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	patientID, err := id.ParseUserID(chi.URLParam(r, "patientID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid patient id"))
		return
	}

	consents, err := h.gateway.ListConsents(ctx, actor, patientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromConsents(consents, requestcontext.Now(ctx)))
}
