// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthy() Checker {
	return pingFunc(func(context.Context) error { return nil })
}

func failing() Checker {
	return pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })
}

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLiveness(t *testing.T) {
	for _, path := range []string{"/health", "/livez"} {
		t.Run(path, func(t *testing.T) {
			rec, body := serve(t, NewHandler(Dependency{Name: "database", Checker: failing()}), path)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, StatusHealthy, body["status"])
			assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		deps       []Dependency
		wantStatus int
		wantBody   string
	}{
		{
			name: "all healthy",
			deps: []Dependency{
				{Name: "database", Checker: healthy()},
				{Name: "redis", Checker: healthy()},
			},
			wantStatus: http.StatusOK,
			wantBody:   StatusHealthy,
		},
		{
			name: "one failing",
			deps: []Dependency{
				{Name: "database", Checker: healthy()},
				{Name: "redis", Checker: failing()},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   StatusDegraded,
		},
		{
			name:       "nil checker",
			deps:       []Dependency{{Name: "database"}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   StatusDegraded,
		},
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			wantBody:   StatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, NewHandler(tt.deps...), "/readyz")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestReadiness_ReportsEachCheck(t *testing.T) {
	h := NewHandler(
		Dependency{Name: "database", Checker: healthy()},
		Dependency{Name: "redis", Checker: failing()},
	)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Checks, 2)

	assert.Equal(t, "database", resp.Checks[0].Name)
	assert.True(t, resp.Checks[0].Healthy)
	assert.Equal(t, "redis", resp.Checks[1].Name)
	assert.False(t, resp.Checks[1].Healthy)
	assert.Equal(t, "ping failed", resp.Checks[1].Message)
}

func TestNotReadyAndShutdown(t *testing.T) {
	h := NewHandler(Dependency{Name: "database", Checker: healthy()})

	h.SetReady(false)
	rec, body := serve(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusNotReady, body["status"])

	h.SetReady(true)
	h.SetShutdown(true)
	for _, path := range []string{"/health", "/readyz"} {
		rec, body = serve(t, h, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, StatusShuttingDown, body["status"])
	}
}
