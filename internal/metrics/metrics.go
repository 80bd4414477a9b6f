// Package metrics exposes Prometheus collectors for the fact-checking pipeline.
//
// Collectors are registered on the registry passed to New, so tests and
// embedded servers can use an isolated prometheus.Registry instead of the
// global default.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ppiankov/factcheck/internal/model"
)

const namespace = "factcheck"

// Stage labels for upstream calls
const (
	StageExtract = "extract"
	StageVerify  = "verify"
)

// Outcome labels for upstream calls
const (
	OutcomeOK        = "ok"
	OutcomeUpstream  = "upstream_error"
	OutcomeTransport = "transport_error"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTPRequests counts served requests.
	// Labels: path, status
	HTTPRequests *prometheus.CounterVec

	// UpstreamCalls counts calls to the reasoning service.
	// Labels: stage (extract, verify), outcome (ok, upstream_error, transport_error)
	UpstreamCalls *prometheus.CounterVec

	// UpstreamDuration measures reasoning service latency.
	// Labels: stage
	UpstreamDuration *prometheus.HistogramVec

	// Verdicts counts verdicts handed back to callers.
	// Labels: verdict (unknown model verdicts are folded into "OTHER")
	Verdicts *prometheus.CounterVec

	// ClaimsExtracted observes claims per input text
	ClaimsExtracted prometheus.Histogram
}

// New creates and registers all collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by path and status",
			},
			[]string{"path", "status"},
		),
		UpstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "calls_total",
				Help:      "Total number of reasoning service calls by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "call_duration_seconds",
				Help:      "Latency of reasoning service calls by stage",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"stage"},
		),
		Verdicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verdicts_total",
				Help:      "Total number of verdicts returned by verdict",
			},
			[]string{"verdict"},
		),
		ClaimsExtracted: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "claims_extracted",
				Help:      "Number of claims extracted per input text",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
		),
	}
}

// ObserveRequest records a served HTTP request
func (m *Metrics) ObserveRequest(path string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// ObserveCall records one reasoning service call
func (m *Metrics) ObserveCall(stage, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamCalls.WithLabelValues(stage, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveVerdict records a verdict handed back to a caller
func (m *Metrics) ObserveVerdict(v model.Verdict) {
	if m == nil {
		return
	}
	label := string(v)
	if !v.Known() {
		label = "OTHER"
	}
	m.Verdicts.WithLabelValues(label).Inc()
}

// ObserveClaims records the number of claims extracted from one text
func (m *Metrics) ObserveClaims(n int) {
	if m == nil {
		return
	}
	m.ClaimsExtracted.Observe(float64(n))
}
