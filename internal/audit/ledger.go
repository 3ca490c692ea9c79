package audit

import (
	"context"
	"errors"
	"log/slog"

	"medgate/internal/audit/metrics"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/platform/sentinel"
)

// Mirror fans appended records out to a secondary sink (e.g. Kafka for the
// compliance pipeline). Mirroring is best-effort; the ledger's own store is
// the durable copy.
type Mirror interface {
	Publish(ctx context.Context, rec Record)
}

// Ledger is the append-only audit log. It validates the append contract and
// translates store errors; it never invents data — in particular it never
// stamps a missing timestamp, because time belongs to the operation's
// coordinator, not to this component.
type Ledger struct {
	store   Store
	mirror  Mirror
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewLedger(store Store, mirror Mirror, m *metrics.Metrics, logger *slog.Logger) *Ledger {
	return &Ledger{store: store, mirror: mirror, metrics: m, logger: logger}
}

// Append writes a record to the ledger. Idempotent on the record id: a
// duplicate append returns the already-stored record without error, and the
// mirror sees each record at most once per durable insert.
//
// Errors: CodeInvalidInput on a malformed record, CodeTimeout on a
// cancelled or expired context, CodeAuditWriteFailed otherwise.
func (l *Ledger) Append(ctx context.Context, rec Record) (Record, error) {
	if rec.ID.IsNil() {
		return Record{}, dErrors.New(dErrors.CodeInvalidInput, "audit record id is required")
	}
	if rec.Timestamp.IsZero() {
		return Record{}, dErrors.New(dErrors.CodeInvalidInput, "audit record timestamp must be supplied by the coordinator")
	}
	if !rec.Action.IsValid() {
		return Record{}, dErrors.New(dErrors.CodeInvalidInput, "invalid audit action")
	}

	stored, inserted, err := l.store.Append(ctx, rec)
	if err != nil {
		l.metrics.IncAppendFailure()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Record{}, dErrors.Wrap(err, dErrors.CodeTimeout, "audit append timed out")
		}
		return Record{}, dErrors.Wrap(err, dErrors.CodeAuditWriteFailed, "audit append failed")
	}

	if inserted {
		l.metrics.IncAppended(string(stored.Outcome))
		if l.mirror != nil {
			l.mirror.Publish(ctx, stored)
		}
	}
	return stored, nil
}

// Get returns a single record by id.
func (l *Ledger) Get(ctx context.Context, auditID id.AuditID) (Record, error) {
	rec, err := l.store.Get(ctx, auditID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, dErrors.New(dErrors.CodeNotFound, "audit record not found")
		}
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit record")
	}
	return rec, nil
}

// QueryByTarget pages chronologically through a target's records. Pass the
// returned cursor back in to resume; the zero cursor starts from the
// beginning.
func (l *Ledger) QueryByTarget(ctx context.Context, targetID string, cursor Cursor, limit int) ([]Record, Cursor, error) {
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	page, next, err := l.store.QueryByTarget(ctx, targetID, cursor, limit)
	if err != nil {
		return nil, cursor, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit records")
	}
	return page, next, nil
}

const maxQueryLimit = 100
