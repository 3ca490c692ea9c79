package authz

import (
	"time"

	"medgate/internal/consent"
	"medgate/internal/domain"
	id "medgate/pkg/domain"
)

// Input groups every signal the rule table considers. The evaluation is a
// pure function of this struct — no I/O, no side effects, no clock reads —
// which keeps the rules trivially testable and guarantees the same decision
// on a retry.
type Input struct {
	Actor    domain.Actor
	Action   id.Action
	Resource domain.Resource

	// DeclaredAuthor is the author field supplied on Create. The rules
	// require it to match the acting doctor; admins may declare a delegate.
	DeclaredAuthor id.UserID

	// Destructive must be set explicitly by the caller for an admin Delete
	// to go through. Guards accidental destructive actions behind an
	// intentional flag.
	Destructive bool

	// Consents are the grants on file for (resource owner, actor). Only
	// rule 5 reads them; passing nil is fine when an earlier rule decides.
	Consents []consent.Consent

	// Now is the coordinator-supplied evaluation instant.
	Now time.Time
}

// Evaluate runs the decision table. Rules are evaluated in order and the
// first match wins:
//
//  1. Admin → allow (admin_override), except Delete without the explicit
//     destructive flag, which denies.
//  2. Create in a clinically-authored category → allow only for a doctor
//     declaring themselves as author; a doctor can never author "as"
//     another doctor.
//  3. Read/Update/Archive by the owning patient → allow (owner).
//  4. Read/Update/Archive by the creator → allow (creator).
//  5. Any active consent from the owner to the actor covering the
//     resource's category → allow (consent_granted); otherwise deny
//     (no_consent).
//
// This table is the single authorization implementation. Storage backends
// plug in through the consent lookup; none of them re-implement these rules.
func Evaluate(in Input) domain.AccessDecision {
	// Rule 1: admin override, with a guard on destructive deletes.
	if in.Actor.IsAdmin() {
		if in.Action == id.ActionDelete && !in.Destructive {
			return domain.Deny(domain.ReasonAdminOverride)
		}
		return domain.Allow(domain.ReasonAdminOverride)
	}

	// Rule 2: clinical authorship on create.
	if in.Action == id.ActionCreate && in.Resource.Category.RequiresClinicalAuthor() {
		if in.Actor.Role == id.RoleDoctor && in.DeclaredAuthor == in.Actor.ID {
			return domain.Allow(domain.ReasonCreator)
		}
		return domain.Deny(domain.ReasonWrongActor)
	}

	// Rules 3 and 4: owner and creator self-access.
	if selfServiceAction(in.Action) {
		if in.Actor.ID == in.Resource.OwnerPatientID {
			return domain.Allow(domain.ReasonOwner)
		}
		if in.Actor.ID == in.Resource.CreatedBy {
			return domain.Allow(domain.ReasonCreator)
		}
	}

	// Rule 5: consent check.
	for _, c := range in.Consents {
		if !c.Scope.Covers(in.Resource.Category) {
			continue
		}
		if c.EffectiveStatusAt(in.Now) == consent.EffectiveActive {
			return domain.Allow(domain.ReasonConsentGranted)
		}
	}
	return domain.Deny(domain.ReasonNoConsent)
}

// selfServiceAction reports whether owner/creator access applies to the
// action. Archive rides with update: whoever may update may retire.
func selfServiceAction(a id.Action) bool {
	return a == id.ActionRead || a == id.ActionUpdate || a == id.ActionArchive
}

// NeedsConsents reports whether the decision could depend on the consent
// list: it is true exactly when Evaluate with an empty list would fall
// through to rule 5. The engine uses it to skip the lookup for actors the
// static rules already decide.
func NeedsConsents(in Input) bool {
	in.Consents = nil
	d := Evaluate(in)
	return !d.Allowed && d.Reason == domain.ReasonNoConsent
}
