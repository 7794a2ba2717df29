package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector("test", prometheus.NewRegistry(), zap.NewNop())
}

func TestCollector_RecordEstimate(t *testing.T) {
	c := newTestCollector(t)

	c.RecordEstimate(590)
	c.RecordEstimate(199)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.estimatesTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(c.estimatedPrice))
}

func TestCollector_RecordOutcomes(t *testing.T) {
	c := newTestCollector(t)

	c.RecordTargetSolve("x", ResultOK)
	c.RecordTargetSolve("x", ResultRejected)
	c.RecordTargetSolve("x", ResultOK)
	c.RecordAttachment(ResultRejected)
	c.RecordSubmission(ResultOK)
	c.RecordSubmission(ResultError)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.targetSolvesTotal.WithLabelValues("x", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.targetSolvesTotal.WithLabelValues("x", ResultRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.attachmentsTotal.WithLabelValues(ResultRejected)))
	assert.Equal(t, 2, testutil.CollectAndCount(c.submissionsTotal))
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	c := newTestCollector(t)

	c.RecordHTTPRequest("GET", "/catalog", 200, 5*time.Millisecond)
	c.RecordHTTPRequest("GET", "/catalog", 200, 7*time.Millisecond)
	c.RecordHTTPRequest("POST", "/sessions", 201, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "/catalog", "200")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.httpRequestDuration))
}

func TestNewCollector_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("dup", prometheus.NewRegistry(), zap.NewNop())
		NewCollector("dup", prometheus.NewRegistry(), zap.NewNop())
	})
}
