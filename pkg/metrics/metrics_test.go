package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/pkg/metrics"
)

func gathered(t *testing.T, reg *prometheus.Registry, name string) []*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()
		}
	}
	return nil
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordResolution("premium_plus", nil)
	c.RecordResolution("basic", errors.New("store down"))
	c.RecordResolution("basic", errors.New("store down"))
	c.RecordCatalogRequest("getBook", 20*time.Millisecond, nil)
	c.RecordCheckout("resolved")
	c.RecordHTTPStatus(http.StatusTooManyRequests)
	c.SetActiveSessions(3)

	resolutions := gathered(t, reg, "summarist_subscription_resolutions_total")
	require.Len(t, resolutions, 2, "one series per tier/outcome pair")
	total := 0.0
	for _, m := range resolutions {
		total += m.GetCounter().GetValue()
	}
	assert.Equal(t, 3.0, total)

	active := gathered(t, reg, "summarist_session_states_active")
	require.Len(t, active, 1)
	assert.Equal(t, 3.0, active[0].GetGauge().GetValue())

	latency := gathered(t, reg, "summarist_catalog_request_duration_seconds")
	require.Len(t, latency, 1)
	assert.Equal(t, uint64(1), latency[0].GetHistogram().GetSampleCount())
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	c.RecordHTTPStatus(http.StatusOK)

	srv := httptest.NewServer(metrics.Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `summarist_http_responses_total{status_code="200"} 1`)
}

func TestNoop(t *testing.T) {
	var r metrics.Recorder = metrics.Noop{}
	r.RecordResolution("basic", nil)
	r.RecordCatalogRequest("getBooks", time.Second, errors.New("x"))
	r.RecordCheckout("failed")
	r.RecordHTTPStatus(500)
	r.SetActiveSessions(0)
}
