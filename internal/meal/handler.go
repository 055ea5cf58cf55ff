// AngelaMos | 2026
// handler.go

package meal

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the meal endpoints. analyzeLimit guards the paid
// analysis call in addition to the daily quota.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	analyzeLimit func(http.Handler) http.Handler,
) {
	r.Route("/meals", func(r chi.Router) {
		r.Use(authenticator)

		r.With(analyzeLimit).Post("/analyze", h.Analyze)
		r.Get("/", h.List)
	})
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Description = strings.TrimSpace(req.Description)
	if err := h.validator.Struct(req); err != nil {
		core.UnprocessableEntity(w, core.FormatValidationError(err))
		return
	}

	userID := middleware.GetUserID(r.Context())

	analysis, err := h.service.Analyze(r.Context(), userID, req.Description)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToAnalyzeResponse(analysis))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Skip:  parseIntQuery(r, "skip", 0),
		Limit: parseIntQuery(r, "limit", DefaultLimit),
	}

	meals, err := h.service.History(
		r.Context(),
		middleware.GetUserID(r.Context()),
		params,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToMealResponseList(meals))
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
