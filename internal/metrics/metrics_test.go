package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	t.Parallel()

	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/dashboard/boxes/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/boxes/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/dashboard/boxes/{id}", "404"))
	assert.Equal(t, float64(3), got)
}

func TestObserveBackendCallAndExposition(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveBackendCall(http.MethodPost, 0, 10*time.Millisecond)
	m.ObserveBackendCall(http.MethodPost, 200, 10*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.backendCalls.WithLabelValues(http.MethodPost, "0")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "gtrac_backend_requests_total"))
}
