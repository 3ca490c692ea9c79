package httptransport

import (
	"time"

	"medgate/internal/consent"
	"medgate/internal/record"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
)

// CreateRecordRequest is the body of POST /records.
type CreateRecordRequest struct {
	OwnerPatientID string            `json:"owner_patient_id"`
	Category       string            `json:"category"`
	AuthorID       string            `json:"author_id,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Validate checks structural shape only. Authorization and semantic checks
// belong to the gateway.
func (r CreateRecordRequest) Validate() error {
	if r.OwnerPatientID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "owner_patient_id is required")
	}
	if r.Category == "" {
		return dErrors.New(dErrors.CodeBadRequest, "category is required")
	}
	return nil
}

// ToParams parses the request into gateway parameters.
func (r CreateRecordRequest) ToParams() (record.CreateParams, error) {
	owner, err := id.ParseUserID(r.OwnerPatientID)
	if err != nil {
		return record.CreateParams{}, dErrors.New(dErrors.CodeBadRequest, "owner_patient_id is not a valid id")
	}
	category, err := id.ParseScope(r.Category)
	if err != nil {
		return record.CreateParams{}, dErrors.New(dErrors.CodeBadRequest, "unknown category")
	}
	p := record.CreateParams{
		OwnerPatientID: owner,
		Category:       category,
		Metadata:       r.Metadata,
	}
	if r.AuthorID != "" {
		author, err := id.ParseUserID(r.AuthorID)
		if err != nil {
			return record.CreateParams{}, dErrors.New(dErrors.CodeBadRequest, "author_id is not a valid id")
		}
		p.DeclaredAuthor = author
	}
	return p, nil
}

// UpdateRecordRequest is the body of PUT /records/{recordID}.
type UpdateRecordRequest struct {
	Metadata map[string]string `json:"metadata"`
}

func (r UpdateRecordRequest) Validate() error {
	if r.Metadata == nil {
		return dErrors.New(dErrors.CodeBadRequest, "metadata is required")
	}
	return nil
}

// GrantConsentRequest is the body of POST /consents.
type GrantConsentRequest struct {
	PatientID  string    `json:"patient_id"`
	GranteeID  string    `json:"grantee_id"`
	Scope      string    `json:"scope"`
	Purpose    string    `json:"purpose,omitempty"`
	ValidUntil time.Time `json:"valid_until"`
}

func (r GrantConsentRequest) Validate() error {
	if r.PatientID == "" || r.GranteeID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "patient_id and grantee_id are required")
	}
	if r.Scope == "" {
		return dErrors.New(dErrors.CodeBadRequest, "scope is required")
	}
	if r.ValidUntil.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "valid_until is required")
	}
	return nil
}

// ToParams parses the request into consent parameters.
func (r GrantConsentRequest) ToParams() (consent.CreateParams, error) {
	patient, err := id.ParseUserID(r.PatientID)
	if err != nil {
		return consent.CreateParams{}, dErrors.New(dErrors.CodeBadRequest, "patient_id is not a valid id")
	}
	grantee, err := id.ParseUserID(r.GranteeID)
	if err != nil {
		return consent.CreateParams{}, dErrors.New(dErrors.CodeBadRequest, "grantee_id is not a valid id")
	}
	scope, err := id.ParseScope(r.Scope)
	if err != nil {
		return consent.CreateParams{}, dErrors.New(dErrors.CodeBadRequest, "unknown scope")
	}
	return consent.CreateParams{
		PatientID:  patient,
		GranteeID:  grantee,
		Scope:      scope,
		Purpose:    r.Purpose,
		ValidUntil: r.ValidUntil,
	}, nil
}
