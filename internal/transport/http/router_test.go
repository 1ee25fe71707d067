package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorhub/internal/platform/metrics"
	"vendorhub/pkg/requestcontext"
)

type echoModule struct{}

func (echoModule) Register(r chi.Router) {
	r.Get("/api/echo", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Request-Id", requestcontext.RequestID(ctx))
		if requestcontext.Now(ctx).IsZero() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRouterMountsModulesWithRequestContext(t *testing.T) {
	router := NewRouter(Options{}, echoModule{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/echo", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestRouterUnknownRouteIsJSONNotFound(t *testing.T) {
	router := NewRouter(Options{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "not_found", body["error"])
}

func TestHealthz(t *testing.T) {
	t.Run("all checks up", func(t *testing.T) {
		router := NewRouter(Options{Health: map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
		}})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var body healthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "up", body.Checks["database"])
	})

	t.Run("failing check degrades", func(t *testing.T) {
		router := NewRouter(Options{Health: map[string]HealthCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		}})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		var body healthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "down", body.Checks["redis"])
	})
}

func TestMetricsEndpointExposesRouteSeries(t *testing.T) {
	router := NewRouter(Options{Registry: metrics.NewRegistry()}, echoModule{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/echo", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `route="/api/echo"`))
}
