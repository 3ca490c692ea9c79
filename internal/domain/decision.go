package domain

// Reason explains an access decision. Denials always carry one so callers
// and compliance reviewers can tell "no permission exists" from "policy
// violation".
type Reason string

const (
	// ReasonAdminOverride: allowed by admin role, or — on a denial — a
	// destructive action that required an explicit override flag.
	ReasonAdminOverride Reason = "admin_override"

	// ReasonOwner: the actor owns the resource.
	ReasonOwner Reason = "owner"

	// ReasonCreator: the actor authored the resource.
	ReasonCreator Reason = "creator"

	// ReasonConsentGranted: an active consent covers the access.
	ReasonConsentGranted Reason = "consent_granted"

	// ReasonNoConsent: no active consent covers the access.
	ReasonNoConsent Reason = "no_consent"

	// ReasonWrongActor: the declared author does not match the acting
	// identity, or the actor's role cannot perform the action.
	ReasonWrongActor Reason = "wrong_actor"
)

func (r Reason) String() string { return string(r) }

// AccessDecision is the ephemeral outcome of one authorization evaluation.
// It is never persisted; the audit ledger records it instead.
type AccessDecision struct {
	Allowed bool
	Reason  Reason
}

// Allow builds an allowing decision.
func Allow(reason Reason) AccessDecision {
	return AccessDecision{Allowed: true, Reason: reason}
}

// Deny builds a denying decision.
func Deny(reason Reason) AccessDecision {
	return AccessDecision{Allowed: false, Reason: reason}
}
