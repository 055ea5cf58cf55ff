// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriai/backend/internal/config"
	"github.com/nutriai/backend/internal/health"
)

func TestServer_ShutdownDrainsAndMarksHealth(t *testing.T) {
	hh := health.NewHandler()
	srv := New(Config{
		ServerConfig: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
		},
		HealthHandler: hh,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	hh.RegisterRoutes(srv.Router())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx, 10*time.Millisecond))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
