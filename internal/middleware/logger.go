// AngelaMos | 2026
// logger.go

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nutriai/backend/internal/core"
)

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

const logFieldsKey contextKey = "log_fields"

// logFields is filled in by inner middleware so the access line can carry
// values that only exist on the downstream context.
type logFields struct {
	userID string
}

func annotateLog(ctx context.Context, userID string) {
	if f, ok := ctx.Value(logFieldsKey).(*logFields); ok {
		f.userID = userID
	}
}

// Logger emits one structured line per request once the handler returns.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			fields := &logFields{}

			next.ServeHTTP(rec, r.WithContext(
				context.WithValue(r.Context(), logFieldsKey, fields),
			))

			userID := fields.userID
			if userID == "" {
				userID = GetUserID(r.Context())
			}

			level := slog.LevelInfo
			switch {
			case rec.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case rec.status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", rec.written),
				slog.String("request_id", GetRequestID(r.Context())),
				slog.String("trace_id", core.TraceIDFromContext(r.Context())),
				slog.String("remote_ip", clientIP(r)),
				slog.String("user_id", userID),
			)
		})
	}
}
