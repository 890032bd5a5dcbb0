package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MatchDecisions counts decisions produced, by operation and verdict
var MatchDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sanctions_match_decisions_total",
		Help: "Total number of match decisions returned to callers",
	},
	[]string{"operation", "verdict"},
)

// MatchDuration records end-to-end latency of a screening operation
var MatchDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "sanctions_match_duration_seconds",
		Help:    "Latency in seconds of screening operations",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// BulkCandidates records how many reference records a bulk scan scored
var BulkCandidates = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "sanctions_bulk_candidates",
		Help:    "Number of reference records scored per bulk request",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	},
)

// AuditFailures counts audit writes that failed, by sink
var AuditFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sanctions_audit_failures_total",
		Help: "Number of audit records that could not be written",
	},
	[]string{"sink"},
)

// ReferenceCache counts reference snapshot cache lookups by result (hit, miss, error)
var ReferenceCache = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sanctions_reference_cache_total",
		Help: "Reference list cache lookups",
	},
	[]string{"result"},
)

// HTTP request metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctions_http_requests_total",
			Help: "Total HTTP requests by path, method and status",
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sanctions_http_request_duration_seconds",
			Help:    "HTTP request latency by path and method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

func init() {
	prometheus.MustRegister(MatchDecisions, MatchDuration, BulkCandidates)
	prometheus.MustRegister(AuditFailures, ReferenceCache)
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration)
}

// Verdict renders a boolean verdict as a label value
func Verdict(isMatch bool) string {
	if isMatch {
		return "match"
	}
	return "no_match"
}
