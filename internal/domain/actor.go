package domain

import id "medgate/pkg/domain"

// Actor is the identity attempting an operation. The session layer supplies
// it fully resolved; the core performs no authentication and never consults a
// role registry at decision time — whoever calls the gateway says who is
// calling, explicitly, on every call.
type Actor struct {
	ID   id.UserID
	Role id.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == id.RoleAdmin }

// Resource is the authorization-relevant view of a protected resource.
// The rule table needs nothing else; the full record (metadata, versioning)
// stays in the record module.
type Resource struct {
	ID             id.ResourceID
	OwnerPatientID id.UserID
	Category       id.Scope
	CreatedBy      id.UserID
}
