package metrics_test

import (
	"testing"
	"time"

	"github.com/limbo/nexotime/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(metrics.CompletionsLogged.WithLabelValues(metrics.SurfaceBot, "true"))
	metrics.IncrementCompletionLogged(metrics.SurfaceBot, true)
	metrics.IncrementCompletionLogged(metrics.SurfaceBot, false)
	after := testutil.ToFloat64(metrics.CompletionsLogged.WithLabelValues(metrics.SurfaceBot, "true"))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(metrics.LinkCodesRedeemed.WithLabelValues("not_found"))
	metrics.IncrementLinkCodeRedeemed("not_found")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.LinkCodesRedeemed.WithLabelValues("not_found")))
}

func TestHTTPRequestDuration(t *testing.T) {
	metrics.RecordHTTPRequestDuration("GET", "/habits", "200", 15*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(metrics.HTTPRequestDuration), 1)
}
