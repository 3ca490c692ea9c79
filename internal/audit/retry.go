package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"medgate/internal/audit/metrics"
)

// Alerter receives the escalation when an audit append could not be made
// durable on the first attempt. The production sink is external; SlogAlerter
// is the default collaborator.
type Alerter interface {
	AuditAppendFailed(ctx context.Context, rec Record, err error)
}

// SlogAlerter escalates via a critical log line.
type SlogAlerter struct {
	Logger *slog.Logger
}

func (a SlogAlerter) AuditAppendFailed(ctx context.Context, rec Record, err error) {
	a.Logger.ErrorContext(ctx, "CRITICAL: audit append failed, retrying until durable",
		"audit_id", rec.ID.String(),
		"target_id", rec.TargetID,
		"outcome", string(rec.Outcome),
		"error", err,
	)
}

// Retrier drains failed audit appends in the background and retries them
// until durably recorded. The mutation that produced the record is never
// rolled back — business data correctness outranks audit completeness — but
// every enqueued record is escalated once and then retried forever.
// Idempotent appends make the loop safe: a record that actually landed
// before the failure surfaced is deduplicated by the store.
type Retrier struct {
	store   Store
	alerter Alerter
	metrics *metrics.Metrics
	logger  *slog.Logger
	backoff time.Duration

	mu      sync.Mutex
	pending []Record
	kick    chan struct{}
}

func NewRetrier(store Store, alerter Alerter, m *metrics.Metrics, logger *slog.Logger) *Retrier {
	return &Retrier{
		store:   store,
		alerter: alerter,
		metrics: m,
		logger:  logger,
		backoff: time.Second,
		kick:    make(chan struct{}, 1),
	}
}

// Enqueue escalates the failure and hands the record to the background
// loop. Non-blocking; callers return to their users immediately.
func (r *Retrier) Enqueue(ctx context.Context, rec Record, cause error) {
	r.alerter.AuditAppendFailed(ctx, rec, cause)

	r.mu.Lock()
	r.pending = append(r.pending, rec)
	depth := len(r.pending)
	r.mu.Unlock()

	r.metrics.SetRetryQueueDepth(depth)
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Run retries pending records until the context is cancelled. Records that
// still fail stay queued for the next pass.
func (r *Retrier) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.backoff)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.kick:
		case <-ticker.C:
		}
		r.drain(ctx)
	}
}

func (r *Retrier) drain(ctx context.Context) {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	var remaining []Record
	for _, rec := range batch {
		if _, _, err := r.store.Append(ctx, rec); err != nil {
			remaining = append(remaining, rec)
			r.logger.WarnContext(ctx, "audit retry failed",
				"audit_id", rec.ID.String(),
				"error", err,
			)
			continue
		}
		r.logger.InfoContext(ctx, "audit record durably recorded after retry",
			"audit_id", rec.ID.String(),
		)
	}

	r.mu.Lock()
	r.pending = append(remaining, r.pending...)
	depth := len(r.pending)
	r.mu.Unlock()
	r.metrics.SetRetryQueueDepth(depth)
}

// PendingCount reports the current queue depth. Used by tests and health
// reporting.
func (r *Retrier) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
