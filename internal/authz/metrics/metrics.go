package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"medgate/internal/domain"
)

// Metrics provides observability for the authorization engine.
type Metrics struct {
	// Decisions by outcome and reason.
	Decisions *prometheus.CounterVec
}

// New creates a Metrics instance with all authorization metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medgate_authz_decisions_total",
			Help: "Total authorization decisions by outcome and reason",
		}, []string{"outcome", "reason"}),
	}
}

// IncDecision records one evaluated decision.
func (m *Metrics) IncDecision(d domain.AccessDecision) {
	if m == nil {
		return
	}
	outcome := "denied"
	if d.Allowed {
		outcome = "allowed"
	}
	m.Decisions.WithLabelValues(outcome, d.Reason.String()).Inc()
}
