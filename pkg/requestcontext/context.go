// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// The most important value is the request time: every timestamp a logical
// operation produces — consent validity stamps, revocation stamps, audit
// record times — comes from the single time captured when the operation
// started. Components never read their own clocks, so retries replay with
// the same timestamps and mirrored audit sinks agree on time.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	opID := requestcontext.OperationID(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithTime(ctx, time.Now())
//	ctx = requestcontext.WithOperationID(ctx, id.NewOperationID())
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "medgate/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	requestTimeKey struct{}
	requestIDKey   struct{}
	operationIDKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyOperationID = operationIDKey{}
)

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests that
// did not inject a time).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// RequestID retrieves the correlation id from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// OperationID retrieves the logical operation id from the context.
// Audit record ids are derived from it; a zero value means the caller forgot
// the middleware and the gateway will mint one itself.
func OperationID(ctx context.Context) id.OperationID {
	if opID, ok := ctx.Value(ContextKeyOperationID).(id.OperationID); ok {
		return opID
	}
	return id.OperationID{}
}

// WithOperationID injects a logical operation id into the context.
func WithOperationID(ctx context.Context, opID id.OperationID) context.Context {
	return context.WithValue(ctx, ContextKeyOperationID, opID)
}
