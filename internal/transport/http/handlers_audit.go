package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"medgate/internal/audit"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/platform/httputil"
)

// HandleAuditTrail handles GET /audit/{targetID}. Admin-only; pages in
// chronological order with cursor_time/cursor_id from the previous page.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	targetID := chi.URLParam(r, "targetID")

	cursor, err := parseCursor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid limit"))
			return
		}
	}

	records, next, err := h.gateway.AuditTrail(ctx, actor, targetID, cursor, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromAuditPage(records, next))
}

func parseCursor(r *http.Request) (audit.Cursor, error) {
	rawTime := r.URL.Query().Get("cursor_time")
	rawID := r.URL.Query().Get("cursor_id")
	if rawTime == "" && rawID == "" {
		return audit.Cursor{}, nil
	}
	if rawTime == "" || rawID == "" {
		return audit.Cursor{}, dErrors.New(dErrors.CodeBadRequest, "cursor_time and cursor_id must be supplied together")
	}

	ts, err := time.Parse(time.RFC3339Nano, rawTime)
	if err != nil {
		return audit.Cursor{}, dErrors.New(dErrors.CodeBadRequest, "invalid cursor_time")
	}
	auditID, err := id.ParseAuditID(rawID)
	if err != nil {
		return audit.Cursor{}, dErrors.New(dErrors.CodeBadRequest, "invalid cursor_id")
	}
	return audit.Cursor{Timestamp: ts, ID: auditID}, nil
}
