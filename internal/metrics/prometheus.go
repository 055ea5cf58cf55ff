// AngelaMos | 2026
// prometheus.go

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nutriai"

const (
	OutcomeSuccess        = "success"
	OutcomeQuotaExceeded  = "quota_exceeded"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeMalformed      = "malformed"
	OutcomePersistenceErr = "persistence_error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	mealAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "meal",
			Name:      "analyses_total",
			Help:      "Meal analyses by outcome",
		},
		[]string{"outcome"},
	)

	llmTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens consumed by nutrition estimation",
		},
		[]string{"kind"},
	)

	llmCostTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "cost_usd_total",
			Help:      "Accumulated estimation cost in USD",
		},
	)

	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Completion request duration in seconds",
			Buckets:   []float64{.25, .5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"model", "status"},
	)

	quotaResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quota",
			Name:      "users_reset_total",
			Help:      "Users whose daily counter was reset",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				routePattern = p
			}
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern).
			Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordAnalysis(outcome string) {
	mealAnalysesTotal.WithLabelValues(outcome).Inc()
}

func RecordUsage(promptTokens, completionTokens int, costUSD float64) {
	llmTokensTotal.WithLabelValues("prompt").Add(float64(promptTokens))
	llmTokensTotal.WithLabelValues("completion").Add(float64(completionTokens))
	llmCostTotal.Add(costUSD)
}

func RecordLLMRequest(model, status string, d time.Duration) {
	llmRequestDuration.WithLabelValues(model, status).Observe(d.Seconds())
}

func RecordQuotaReset(users int64) {
	quotaResetsTotal.Add(float64(users))
}
