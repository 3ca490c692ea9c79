package httptransport

import (
	"time"

	"medgate/internal/audit"
	"medgate/internal/consent"
	"medgate/internal/record"
)

// RecordResponse is the wire form of a protected resource.
type RecordResponse struct {
	ID             string            `json:"id"`
	OwnerPatientID string            `json:"owner_patient_id"`
	Category       string            `json:"category"`
	CreatedBy      string            `json:"created_by"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	ArchivedAt     *time.Time        `json:"archived_at,omitempty"`
	Version        int64             `json:"version"`
}

func fromRecord(r record.ProtectedResource) RecordResponse {
	return RecordResponse{
		ID:             r.ID.String(),
		OwnerPatientID: r.OwnerPatientID.String(),
		Category:       r.Category.String(),
		CreatedBy:      r.CreatedBy.String(),
		Metadata:       r.Metadata,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		ArchivedAt:     r.ArchivedAt,
		Version:        r.Version,
	}
}

func fromRecords(resources []record.ProtectedResource) []RecordResponse {
	out := make([]RecordResponse, 0, len(resources))
	for _, r := range resources {
		out = append(out, fromRecord(r))
	}
	return out
}

// ConsentResponse is the wire form of a consent. EffectiveStatus is computed
// at the request time, so a caller sees "expired" the moment the validity
// window closes even though the stored status is still "active".
type ConsentResponse struct {
	ID              string     `json:"id"`
	PatientID       string     `json:"patient_id"`
	GranteeID       string     `json:"grantee_id"`
	Scope           string     `json:"scope"`
	Purpose         string     `json:"purpose,omitempty"`
	ValidFrom       time.Time  `json:"valid_from"`
	ValidUntil      time.Time  `json:"valid_until"`
	Status          string     `json:"status"`
	EffectiveStatus string     `json:"effective_status"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
}

func fromConsent(c consent.Consent, now time.Time) ConsentResponse {
	return ConsentResponse{
		ID:              c.ID.String(),
		PatientID:       c.PatientID.String(),
		GranteeID:       c.GranteeID.String(),
		Scope:           c.Scope.String(),
		Purpose:         c.Purpose,
		ValidFrom:       c.ValidFrom,
		ValidUntil:      c.ValidUntil,
		Status:          string(c.Status),
		EffectiveStatus: string(c.EffectiveStatusAt(now)),
		RevokedAt:       c.RevokedAt,
	}
}

func fromConsents(consents []consent.Consent, now time.Time) []ConsentResponse {
	out := make([]ConsentResponse, 0, len(consents))
	for _, c := range consents {
		out = append(out, fromConsent(c, now))
	}
	return out
}

// AuditRecordResponse is the wire form of one ledger entry.
type AuditRecordResponse struct {
	ID        string            `json:"id"`
	ActorID   string            `json:"actor_id"`
	Action    string            `json:"action"`
	TargetID  string            `json:"target_id"`
	Timestamp time.Time         `json:"timestamp"`
	Outcome   string            `json:"outcome"`
	Reason    string            `json:"reason,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// AuditPageResponse is one page of a target's history plus the resume
// cursor. An empty page returns the caller's own cursor so polling clients
// can keep resuming from the same point.
type AuditPageResponse struct {
	Records  []AuditRecordResponse `json:"records"`
	NextTime *time.Time            `json:"next_cursor_time,omitempty"`
	NextID   string                `json:"next_cursor_id,omitempty"`
}

func fromAuditPage(records []audit.Record, next audit.Cursor) AuditPageResponse {
	out := AuditPageResponse{Records: make([]AuditRecordResponse, 0, len(records))}
	for _, rec := range records {
		out.Records = append(out.Records, AuditRecordResponse{
			ID:        rec.ID.String(),
			ActorID:   rec.ActorID.String(),
			Action:    rec.Action.String(),
			TargetID:  rec.TargetID,
			Timestamp: rec.Timestamp,
			Outcome:   string(rec.Outcome),
			Reason:    rec.Reason,
			Details:   rec.Details,
		})
	}
	if !next.IsZero() {
		t := next.Timestamp
		out.NextTime = &t
		out.NextID = next.ID.String()
	}
	return out
}
