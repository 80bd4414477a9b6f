package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/factcheck/internal/model"
)

func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("/fact-check", 200)
	m.ObserveRequest("/fact-check", 200)
	m.ObserveCall(StageVerify, OutcomeOK, 150*time.Millisecond)
	m.ObserveVerdict(model.VerdictTrue)
	m.ObserveVerdict(model.Verdict("MOSTLY TRUE"))
	m.ObserveClaims(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/fact-check", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamCalls.WithLabelValues(StageVerify, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("TRUE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("OTHER")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ClaimsExtracted))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", 200)
		m.ObserveCall(StageExtract, OutcomeTransport, time.Second)
		m.ObserveVerdict(model.VerdictError)
		m.ObserveClaims(0)
	})
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
