package meetbot

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/bots/missing" {
			writeJSON(w, http.StatusNotFound, `{"message":"not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"bot-1"}`)
	}, WithMetrics(metrics))

	ctx := context.Background()
	_, err = client.RetrieveBot(ctx, testAPIKey, "bot-1")
	require.NoError(t, err)
	_, err = client.RetrieveBot(ctx, testAPIKey, "bot-1")
	require.NoError(t, err)
	_, err = client.RetrieveBot(ctx, testAPIKey, "missing")
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("retrieve bot", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("retrieve bot", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))
}

func TestMetricsValidationIsNotCounted(t *testing.T) {
	metrics, err := NewMetrics(nil)
	require.NoError(t, err)

	client, _ := newSpyClient(t)
	client.metrics = metrics

	_, err = client.RetrieveBot(context.Background(), testAPIKey, "")
	require.Error(t, err)
	assert.Equal(t, 0, testutil.CollectAndCount(metrics.requests))
}

func TestMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to register meetbot metrics")
}

func TestNilMetricsObserve(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe("retrieve bot", "200", 0) })
}
