// Package metrics exposes Prometheus instruments for the session manager.
// Instruments are registered on the caller's registry so several managers (and
// tests) never collide on the global default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultFailure            = "failure"
	ResultJoined             = "joined"
	ResultSuppressed         = "suppressed"
)

// Metrics holds session lifecycle metrics.
type Metrics struct {
	LoginsTotal          *prometheus.CounterVec
	RefreshesTotal       *prometheus.CounterVec
	RefreshDuration      prometheus.Histogram
	LogoutsTotal         *prometheus.CounterVec
	ProfileUpdatesTotal  *prometheus.CounterVec
	SessionAuthenticated prometheus.Gauge
	SessionExpiry        prometheus.Gauge
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "chainledger"
	}
	f := promauto.With(reg)

	return &Metrics{
		LoginsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "logins_total",
				Help:      "Login attempts by result",
			},
			[]string{"result"},
		),
		RefreshesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "refreshes_total",
				Help:      "Refresh requests by trigger and result",
			},
			[]string{"trigger", "result"},
		),
		RefreshDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "refresh_duration_seconds",
				Help:      "Issuer refresh round trip duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		LogoutsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "logouts_total",
				Help:      "Logout cascades by reason",
			},
			[]string{"reason"},
		),
		ProfileUpdatesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "profile_updates_total",
				Help:      "Profile update attempts by result",
			},
			[]string{"result"},
		),
		SessionAuthenticated: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "authenticated",
				Help:      "1 while a session is installed, else 0",
			},
		),
		SessionExpiry: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "access_expiry_timestamp_seconds",
				Help:      "Unix time at which the current access token expires, 0 without a session",
			},
		),
	}
}

// NewNop returns Metrics registered on a private registry, for callers that do not export them.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry(), "")
}
