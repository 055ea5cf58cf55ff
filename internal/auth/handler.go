// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/middleware"
	"github.com/nutriai/backend/internal/user"
)

type Handler struct {
	service   *Service
	users     *user.Service
	validator *validator.Validate
}

func NewHandler(service *Service, users *user.Service) *Handler {
	return &Handler{
		service:   service,
		users:     users,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/signin", h.SignIn)

		r.With(authenticator).Get("/me", h.GetMe)
	})
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, user.ToMeResponse(u))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.UnprocessableEntity(w, core.FormatValidationError(err))
		return false
	}

	return true
}
