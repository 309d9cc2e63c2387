package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCacheLookup_UpdatesHitRatio(t *testing.T) {
	c := NewCollectorWithRegistry("test", prometheus.NewRegistry())

	c.RecordCacheLookup(false)
	c.RecordCacheLookup(true)
	c.RecordCacheLookup(true)
	c.RecordCacheLookup(true)

	assert.InDelta(t, 0.75, testutil.ToFloat64(c.StatsCacheHitRatio), 1e-9)
	assert.Equal(t, 3.0, testutil.ToFloat64(c.CacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheMissesTotal))
}

func TestRecordReportError(t *testing.T) {
	c := NewCollectorWithRegistry("test", prometheus.NewRegistry())

	c.RecordReportError("correlation", "missing_column")
	c.RecordReportError("correlation", "missing_column")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ReportErrorsTotal.WithLabelValues("correlation", "missing_column")))
}

func TestNewCollectorWithRegistry_Repeatable(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollectorWithRegistry("test", prometheus.NewRegistry())
		NewCollectorWithRegistry("test", prometheus.NewRegistry())
	})
}
