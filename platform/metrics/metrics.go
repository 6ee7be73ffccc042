// Package metrics provides the Prometheus instruments for the intake service.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors on a private registry, so tests can
// create as many instances as they need.
type Metrics struct {
	Registry *prometheus.Registry

	submissions       *prometheus.CounterVec
	priorityScore     prometheus.Histogram
	tierAssignments   *prometheus.CounterVec
	cooldownRejects   prometheus.Counter
	webhookDeliveries *prometheus.CounterVec
	webhookDuration   *prometheus.HistogramVec
	requestDuration   *prometheus.HistogramVec
}

// New creates the registry and registers every collector, including the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_submissions_total",
				Help: "Submissions by form and outcome.",
			},
			[]string{"form", "outcome"},
		),
		priorityScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "intake_priority_score",
				Help:    "Distribution of accepted assessment priority scores.",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
		tierAssignments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_tier_assignments_total",
				Help: "Accepted assessments by customer tier.",
			},
			[]string{"tier"},
		),
		cooldownRejects: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "intake_cooldown_rejections_total",
				Help: "Submissions refused by the per-IP cooldown guard.",
			},
		),
		webhookDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_webhook_deliveries_total",
				Help: "CRM webhook attempts by target and outcome.",
			},
			[]string{"target", "outcome"},
		),
		webhookDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intake_webhook_duration_seconds",
				Help:    "CRM webhook round-trip latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"target"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intake_http_request_duration_seconds",
				Help:    "HTTP request latency by route and status class.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// IncrSubmission counts a submission outcome ("accepted", "rejected", "cooldown", "below_minimum", "error").
func (m *Metrics) IncrSubmission(form, outcome string) {
	m.submissions.WithLabelValues(form, outcome).Inc()
}

// ObserveScore records an accepted score and its tier.
func (m *Metrics) ObserveScore(score int, tier string) {
	m.priorityScore.Observe(float64(score))
	m.tierAssignments.WithLabelValues(tier).Inc()
}

// IncrCooldownRejection counts a cooldown refusal.
func (m *Metrics) IncrCooldownRejection() {
	m.cooldownRejects.Inc()
}

// RecordWebhook records one CRM delivery attempt.
func (m *Metrics) RecordWebhook(target, outcome string, d time.Duration) {
	m.webhookDeliveries.WithLabelValues(target, outcome).Inc()
	if d > 0 {
		m.webhookDuration.WithLabelValues(target).Observe(d.Seconds())
	}
}

// RecordRequest records the latency of one HTTP request.
func (m *Metrics) RecordRequest(route, method, status string, d time.Duration) {
	m.requestDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
}
