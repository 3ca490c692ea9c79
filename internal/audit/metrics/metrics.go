package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit ledger.
type Metrics struct {
	Appended       *prometheus.CounterVec
	AppendFailures prometheus.Counter
	RetryQueue     prometheus.Gauge
}

// New creates a Metrics instance with all ledger metrics registered.
func New() *Metrics {
	return &Metrics{
		Appended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medgate_audit_appended_total",
			Help: "Audit records durably appended, by outcome",
		}, []string{"outcome"}),

		AppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medgate_audit_append_failures_total",
			Help: "Audit append attempts that failed and were escalated",
		}),

		RetryQueue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "medgate_audit_retry_queue_depth",
			Help: "Audit records currently waiting for a durable retry",
		}),
	}
}

func (m *Metrics) IncAppended(outcome string) {
	if m != nil {
		m.Appended.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncAppendFailure() {
	if m != nil {
		m.AppendFailures.Inc()
	}
}

func (m *Metrics) SetRetryQueueDepth(n int) {
	if m != nil {
		m.RetryQueue.Set(float64(n))
	}
}
