package testutil

import (
	"context"
	"net/http"
	"time"

	"medgate/internal/domain"
	"medgate/internal/platform/middleware"
	id "medgate/pkg/domain"
	"medgate/pkg/requestcontext"
)

// WithActor adds an authenticated actor to the request context, simulating
// what the auth middleware does for authenticated requests.
func WithActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

// Actor builds an actor with a fresh user id and the given role.
func Actor(role id.Role) domain.Actor {
	return domain.Actor{ID: id.NewUserID(), Role: role}
}

// OperationContext builds a context carrying a fixed time and a fresh
// operation id, the way the request-metadata middleware would.
func OperationContext(now time.Time) context.Context {
	ctx := requestcontext.WithTime(context.Background(), now)
	return requestcontext.WithOperationID(ctx, id.NewOperationID())
}
