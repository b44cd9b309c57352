package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calculadrink_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calculadrink_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calculadrink_registrations_total",
		Help: "Count of access requests by result",
	}, []string{"result"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calculadrink_logins_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	statusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calculadrink_status_transitions_total",
		Help: "Count of company status transitions",
	}, []string{"from", "to"})

	passwordResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calculadrink_password_resets_total",
		Help: "Count of operator password resets",
	})

	teamChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calculadrink_team_changes_total",
		Help: "Count of team membership changes by operation",
	}, []string{"op"})

	activeCompanies = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "calculadrink_active_companies",
		Help: "Number of companies currently in active status",
	})

	billingSuspensionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calculadrink_billing_suspensions_total",
		Help: "Count of accounts suspended by the billing sweep",
	})

	eventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calculadrink_events_published_total",
		Help: "Count of lifecycle events published by sink and result",
	}, []string{"sink", "result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRegistration counts an access request attempt with a result label.
func ObserveRegistration(result string) {
	registrationsTotal.WithLabelValues(result).Inc()
}

// ObserveLogin counts a login attempt with a result label.
func ObserveLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

// ObserveStatusTransition counts a lifecycle transition.
func ObserveStatusTransition(from, to string) {
	statusTransitionsTotal.WithLabelValues(from, to).Inc()
}

// ObservePasswordReset counts an operator password reset.
func ObservePasswordReset() {
	passwordResetsTotal.Inc()
}

// ObserveTeamChange counts a team add/remove.
func ObserveTeamChange(op string) {
	teamChangesTotal.WithLabelValues(op).Inc()
}

// SetActiveCompanies sets the active-company gauge.
func SetActiveCompanies(count int) {
	if count < 0 {
		count = 0
	}
	activeCompanies.Set(float64(count))
}

// ObserveBillingSuspension counts a billing-sweep suspension.
func ObserveBillingSuspension() {
	billingSuspensionsTotal.Inc()
}

// ObserveEventPublished counts an event delivery attempt per sink.
func ObserveEventPublished(sink, result string) {
	eventsPublishedTotal.WithLabelValues(sink, result).Inc()
}
