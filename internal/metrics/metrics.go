// Package metrics exposes Prometheus counters and histograms for the
// server and resolver layers: query volume, response codes, and
// resolution latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolverd_queries_total",
			Help: "Total DNS queries received by the server, labeled by qtype.",
		},
		[]string{"qtype"},
	)

	RepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolverd_replies_total",
			Help: "Total DNS replies sent, labeled by result code.",
		},
		[]string{"rcode"},
	)

	FormErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolverd_format_errors_total",
			Help: "Inbound queries rejected as malformed (decode failure or wrong question count), labeled by reason.",
		},
		[]string{"reason"},
	)

	DroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resolverd_dropped_total",
			Help: "Inbound datagrams dropped with no reply sent (no recoverable header, or resolution failed).",
		},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resolverd_rate_limited_total",
			Help: "Queries rejected by the per-client rate limiter.",
		},
	)

	ResolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resolverd_resolution_duration_seconds",
			Help:    "Wall-clock time spent resolving a single client question.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	UpstreamExchangeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolverd_upstream_exchange_duration_seconds",
			Help:    "Wall-clock time spent on a single upstream UDP exchange.",
			Buckets: prometheus.DefBuckets,
		},
	)

	UpstreamReferralsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resolverd_upstream_referrals_total",
			Help: "Total referrals followed across all resolutions.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		QueriesTotal,
		RepliesTotal,
		FormErrorsTotal,
		DroppedTotal,
		RateLimitedTotal,
		ResolutionDuration,
		UpstreamExchangeDuration,
		UpstreamReferralsTotal,
	)
}

// ObserveResolution records how long a resolution took, labeled by how it
// ended (answered, nxdomain, error).
func ObserveResolution(outcome string, start time.Time) {
	ResolutionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// ObserveUpstreamExchange records the latency of a single upstream query.
func ObserveUpstreamExchange(start time.Time) {
	UpstreamExchangeDuration.Observe(time.Since(start).Seconds())
}
