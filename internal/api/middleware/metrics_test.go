package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, route, status string
}

type recordingMetrics struct {
	seen []observation
}

func (m *recordingMetrics) ObserveHTTPRequest(method, route, status string, _ float64) {
	m.seen = append(m.seen, observation{method: method, route: route, status: status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	metrics := &recordingMetrics{}

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(metrics))
	r.HandleFunc("/walks/{walkId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	r.HandleFunc("/walks", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}).Methods(http.MethodGet)

	for _, path := range []string{"/walks/1", "/walks/2", "/walks"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, metrics.seen, 3)
	assert.Equal(t, observation{http.MethodGet, "/walks/{walkId}", "404"}, metrics.seen[0])
	assert.Equal(t, observation{http.MethodGet, "/walks/{walkId}", "404"}, metrics.seen[1])
	assert.Equal(t, observation{http.MethodGet, "/walks", "200"}, metrics.seen[2])
}
