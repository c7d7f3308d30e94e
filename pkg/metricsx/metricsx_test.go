package metricsx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddlewareCardinality(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	collector := NewCollector(registry)

	handler := collector.HTTPMiddleware(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

	// Many distinct attacker-chosen paths, one status code.
	for i := range 50 {
		r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/probe/%d", i), nil)
		handler.ServeHTTP(httptest.NewRecorder(), r)
	}

	families, err := registry.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != "ssobridge_http_request_duration_seconds" {
			continue
		}
		// One series per status code regardless of path count.
		require.Len(t, mf.GetMetric(), 1)

		labels := mf.GetMetric()[0].GetLabel()
		require.Len(t, labels, 1)
		require.Equal(t, "status", labels[0].GetName())
		require.Equal(t, "404", labels[0].GetValue())
		require.EqualValues(t, 50, mf.GetMetric()[0].GetHistogram().GetSampleCount())
		return
	}
	t.Fatal("duration histogram not registered")
}

func TestCollectorCounters(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	collector := NewCollector(registry)

	collector.RecordTokenIssued()
	collector.RecordVerification(ResultOK)
	collector.RecordVerification(ResultInvalid)
	collector.RecordReconciliation(ResultOK)

	families, err := registry.Gather()
	require.NoError(t, err)

	byName := map[string]int{}
	for _, mf := range families {
		byName[mf.GetName()] = len(mf.GetMetric())
	}
	require.Equal(t, 1, byName["ssobridge_tokens_issued_total"])
	require.Equal(t, 2, byName["ssobridge_verifications_total"])
	require.Equal(t, 1, byName["ssobridge_reconciliations_total"])
}
