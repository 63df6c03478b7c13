// Package metrics holds the Prometheus collectors for payments, refunds,
// webhooks and Stripe calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "registripe"

// Metrics owns its registry so that several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	payments      *prometheus.CounterVec
	refunds       *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
	stripeErrors  *prometheus.CounterVec
	stripeLatency *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "card_payments_total",
			Help:      "Card payments attempted, by outcome.",
		}, []string{"outcome"}),
		refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_total",
			Help:      "Credit note refunds attempted, by outcome.",
		}, []string{"outcome"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Stripe webhook events, by type and processing outcome.",
		}, []string{"type", "outcome"}),
		stripeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stripe_errors_total",
			Help:      "Errors returned by the Stripe API, by operation and code.",
		}, []string{"operation", "code"}),
		stripeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stripe_request_duration_seconds",
			Help:      "Latency of Stripe API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.payments,
		m.refunds,
		m.webhookEvents,
		m.stripeErrors,
		m.stripeLatency,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome labels.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeDeclined  = "declined"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// The recording methods are no-ops on a nil *Metrics.

func (m *Metrics) RecordPayment(outcome string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRefund(outcome string) {
	if m == nil {
		return
	}
	m.refunds.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordWebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) RecordStripeError(operation, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.stripeErrors.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) ObserveStripeCall(operation string, started time.Time) {
	if m == nil {
		return
	}
	m.stripeLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
