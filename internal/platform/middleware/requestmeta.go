package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	id "medgate/pkg/domain"
	"medgate/pkg/requestcontext"
)

// RequestMetadata stamps every request with its coordinating values: a
// correlation id, the single request time all downstream timestamps derive
// from, and the logical operation id audit record ids are derived from.
//
// A client retrying an operation sends the same X-Operation-Id and the
// ledger deduplicates the replayed audit records. Requests without the
// header get a fresh operation id.
func RequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = requestcontext.WithRequestID(ctx, requestID)
		w.Header().Set("X-Request-Id", requestID)

		opID, err := id.ParseOperationID(r.Header.Get("X-Operation-Id"))
		if err != nil {
			opID = id.NewOperationID()
		}
		ctx = requestcontext.WithOperationID(ctx, opID)

		ctx = requestcontext.WithTime(ctx, time.Now())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
