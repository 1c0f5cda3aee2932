package devserver

// Request-level metrics come from the echoprometheus middleware; the
// counters here track the domain operations that matter when reproducing
// client behaviour locally.

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "projecthub_dev"

// metrics holds one server instance's domain counters. Each instance
// registers into its own registry so several servers can run in one
// process without duplicate-registration panics.
type metrics struct {
	// loginsTotal counts authentication attempts.
	// Label:
	//   - result: "success" or "failure"
	loginsTotal *prometheus.CounterVec

	// registrationsTotal counts account registrations.
	registrationsTotal prometheus.Counter

	// permissionDenialsTotal counts requests refused by permission
	// evaluation.
	// Label:
	//   - resource: "project" or "task"
	permissionDenialsTotal *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		loginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts, by result.",
			},
			[]string{"result"},
		),
		registrationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "registrations_total",
				Help:      "Total number of accounts registered.",
			},
		),
		permissionDenialsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "permission_denials_total",
				Help:      "Total number of requests refused by capability checks.",
			},
			[]string{"resource"},
		),
	}
}
