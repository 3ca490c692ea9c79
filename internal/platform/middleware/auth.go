package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"medgate/internal/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/platform/httputil"
	"medgate/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the acting identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (domain.Actor, error)
}

type contextKeyActor struct{}

// ContextKeyActor is exported for tests that build contexts by hand.
var ContextKeyActor = contextKeyActor{}

// GetActor retrieves the authenticated actor from the context. The zero
// Actor means the request never passed RequireAuth.
func GetActor(ctx context.Context) domain.Actor {
	if actor, ok := ctx.Value(ContextKeyActor).(domain.Actor); ok {
		return actor
	}
	return domain.Actor{}
}

// WithActor injects an actor into a context. For tests that skip the full
// middleware chain.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// RequireAuth authenticates the bearer token and stores the actor in the
// request context. Authentication answers "who is this"; every access
// decision beyond that belongs to the authorization engine.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthenticated(w, "missing or invalid Authorization header")
				return
			}

			actor, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				writeUnauthenticated(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
		})
	}
}

// writeUnauthenticated is the one place a 401 is produced. 403s come from
// the authorization engine through the normal error envelope.
func writeUnauthenticated(w http.ResponseWriter, description string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             string(dErrors.CodeUnauthorized),
		"error_description": description,
	})
}
