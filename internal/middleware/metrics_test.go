package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/farmops/internal/metrics"
	"github.com/mtlprog/farmops/internal/middleware"
)

// requestCount reads the request counter for one route and status code.
func requestCount(t *testing.T, route, code string) float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "farmops_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] == route && labels["status_code"] == code {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestInstrument(t *testing.T) {
	route := "GET /test/instrument/{id}"
	h := middleware.Instrument(route, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	before := requestCount(t, route, "418")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test/instrument/42", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, before+1, requestCount(t, route, "418"))
}

func TestInstrument_DefaultStatus(t *testing.T) {
	h := middleware.Instrument("GET /test/default", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test/default", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Positive(t, requestCount(t, "GET /test/default", "200"))
}
