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

// HandleCreateRecord handles POST /records.
func (h *Handler) HandleCreateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateRecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	params, err := req.ToParams()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.gateway.CreateResource(ctx, actor, params)
	if err != nil {
		h.logger.WarnContext(ctx, "record creation rejected",
			"request_id", requestID,
			"actor_id", actor.ID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "record created",
		"request_id", requestID,
		"record_id", res.ID.String(),
		"category", res.Category.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromRecord(res))
}

// HandleGetRecord handles GET /records/{recordID}.
func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	recordID, err := id.ParseResourceID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid record id"))
		return
	}

	res, err := h.gateway.GetResource(ctx, actor, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRecord(res))
}

// HandleUpdateRecord handles PUT /records/{recordID}.
func (h *Handler) HandleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	recordID, err := id.ParseResourceID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid record id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.gateway.UpdateResource(ctx, actor, recordID, req.Metadata)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRecord(res))
}

// HandleArchiveRecord handles POST /records/{recordID}/archive.
func (h *Handler) HandleArchiveRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	recordID, err := id.ParseResourceID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid record id"))
		return
	}

	res, err := h.gateway.ArchiveResource(ctx, actor, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRecord(res))
}

// HandleDeleteRecord handles DELETE /records/{recordID}. The destructive
// query flag must be set explicitly for an admin delete to pass the rules.
func (h *Handler) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	recordID, err := id.ParseResourceID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid record id"))
		return
	}
	destructive := r.URL.Query().Get("destructive") == "true"

	res, err := h.gateway.DeleteResource(ctx, actor, recordID, destructive)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRecord(res))
}

// HandleListRecords handles GET /patients/{patientID}/records.
func (h *Handler) HandleListRecords(w http.ResponseWriter, r *http.Request) {
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

	resources, err := h.gateway.ListResources(ctx, actor, patientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRecords(resources))
}
