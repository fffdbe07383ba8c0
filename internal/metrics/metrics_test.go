package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestReportDecodeIncrementsCounterAndHistogram(t *testing.T) {
	before := testutil.ToFloat64(decodeAttempts.WithLabelValues("success"))
	ReportDecode("success", 0.001)
	after := testutil.ToFloat64(decodeAttempts.WithLabelValues("success"))
	assert.Equal(t, before+1, after)
}

func TestReportFoldLabelsByReverse(t *testing.T) {
	before := testutil.ToFloat64(foldOperations.WithLabelValues("true"))
	ReportFold(true)
	after := testutil.ToFloat64(foldOperations.WithLabelValues("true"))
	assert.Equal(t, before+1, after)
}

func TestReportSaturationIncrements(t *testing.T) {
	before := testutil.ToFloat64(saturationEvents.WithLabelValues())
	ReportSaturation()
	after := testutil.ToFloat64(saturationEvents.WithLabelValues())
	assert.Equal(t, before+1, after)
}
