// AngelaMos | 2026
// errors_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"quota", fmt.Errorf("consume: %w", ErrQuotaExceeded), http.StatusTooManyRequests, CodeQuotaExceeded},
		{"upstream", fmt.Errorf("estimate: %w", ErrUpstreamUnavailable), http.StatusServiceUnavailable, CodeUpstreamUnavailable},
		{"malformed", fmt.Errorf("parse: %w", ErrMalformedUpstream), http.StatusInternalServerError, CodeMalformedUpstream},
		{"persistence", fmt.Errorf("insert: %w", ErrPersistence), http.StatusInternalServerError, CodePersistence},
		{"not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"duplicate", fmt.Errorf("create: %w", ErrDuplicateKey), http.StatusConflict, CodeDuplicate},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"token invalid", fmt.Errorf("verify: %w", ErrTokenInvalid), http.StatusUnauthorized, CodeUnauthorized},
		{"not configured", ErrNotConfigured, http.StatusInternalServerError, CodeNotConfigured},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapError(tt.err)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestMapError_PassesAppErrorThrough(t *testing.T) {
	orig := ValidationError("description is required")
	wrapped := fmt.Errorf("handler: %w", orig)

	assert.Same(t, orig, MapError(wrapped))
	assert.ErrorIs(t, wrapped, ErrInvalidInput)
}

func TestJSONError_WritesDetailCodeAndHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONError(rr, TokenInvalidError())

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "invalid authentication token", body.Detail)
	assert.Equal(t, CodeUnauthorized, body.Code)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "nutriai:ratelimit:ip:10.0.0.1", Key("ratelimit", "ip", "10.0.0.1"))
	assert.Equal(t, "nutriai:", Key())
}
