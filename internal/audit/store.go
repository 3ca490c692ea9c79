package audit

import (
	"context"

	id "medgate/pkg/domain"
)

// Store persists audit records. Implementations translate backend failures
// into pkg/platform/sentinel errors.
//
// Append is idempotent on the record id: a second call with an id already
// on the ledger is a no-op that returns the stored record and inserted ==
// false — never an error. This tolerates at-least-once delivery from
// upstream retries. No update or delete operation exists.
//
// QueryByTarget returns records chronologically in (timestamp, id) order,
// at most limit entries per page, resuming after the cursor.
type Store interface {
	Append(ctx context.Context, rec Record) (stored Record, inserted bool, err error)
	Get(ctx context.Context, auditID id.AuditID) (Record, error)
	QueryByTarget(ctx context.Context, targetID string, cursor Cursor, limit int) ([]Record, Cursor, error)
}
