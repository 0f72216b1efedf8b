// Package metrics exposes Prometheus collectors for inbound requests,
// upstream calls and media URL enrichment.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Enrichment outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

var (
	// UpstreamRequests counts Helix requests by endpoint and outcome.
	// Outcome is "ok" or the error kind.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streamrelay",
		Name:      "upstream_requests_total",
		Help:      "Total Helix API requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	// UpstreamDuration tracks Helix round-trip time.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "streamrelay",
		Name:      "upstream_request_duration_seconds",
		Help:      "Helix API request duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	// Enrichment counts media URL resolutions by subject kind and outcome.
	Enrichment = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streamrelay",
		Name:      "enrichment_total",
		Help:      "Media URL enrichment attempts by subject and outcome",
	}, []string{"subject", "outcome"})

	// HTTPRequests counts served API requests by route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streamrelay",
		Name:      "http_requests_total",
		Help:      "Total API requests by route and status code",
	}, []string{"route", "status"})

	// HTTPDuration tracks API request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "streamrelay",
		Name:      "http_request_duration_seconds",
		Help:      "API request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// ObserveUpstream records one Helix request.
func ObserveUpstream(endpoint, outcome string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	UpstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncEnrichment records one enrichment attempt.
func IncEnrichment(subject, outcome string) {
	Enrichment.WithLabelValues(subject, outcome).Inc()
}

// ObserveHTTP records one served request. Route should be the matched
// pattern, not the raw path, to keep label cardinality bounded.
func ObserveHTTP(route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
}
