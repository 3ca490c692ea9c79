package domain

import dErrors "medgate/pkg/domain-errors"

// Scope is the category of protected data a consent covers and a resource
// belongs to. Scope binding allows selective revocation: revoking lab-result
// access leaves prescription access untouched.
type Scope string

const (
	ScopeLabResults    Scope = "lab_results"
	ScopePrescriptions Scope = "prescriptions"
	ScopeImaging       Scope = "imaging"
	ScopeClinicalNotes Scope = "clinical_notes"
)

// validScopes is the single source of truth for supported scopes.
var validScopes = map[Scope]bool{
	ScopeLabResults:    true,
	ScopePrescriptions: true,
	ScopeImaging:       true,
	ScopeClinicalNotes: true,
}

// ParseScope constructs a Scope from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseScope(s string) (Scope, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "scope cannot be empty")
	}
	sc := Scope(s)
	if !sc.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid scope")
	}
	return sc, nil
}

// IsValid checks if the scope is one of the supported enum values.
func (s Scope) IsValid() bool {
	return validScopes[s]
}

func (s Scope) String() string {
	return string(s)
}

// Covers reports whether a consent granted for scope s covers a resource in
// category c. Scopes are exact categories today; kept as a method so broader
// grants can be introduced without touching the rule table.
func (s Scope) Covers(c Scope) bool {
	return s == c
}

// RequiresClinicalAuthor reports whether resources in this category must be
// authored by a doctor (or created by an admin acting on a doctor's behalf).
// All clinical categories require it.
func (s Scope) RequiresClinicalAuthor() bool {
	return validScopes[s]
}
