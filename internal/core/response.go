// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// JSONError writes err as {"detail", "code"}. Server-side failures are logged
// with the wrapped cause; the client only sees the message.
func JSONError(w http.ResponseWriter, err error) {
	appErr := MapError(err)

	if appErr.StatusCode >= http.StatusInternalServerError {
		slog.Error("request failed",
			"code", appErr.Code,
			"error", err,
		)
	}

	for k, v := range appErr.Headers {
		w.Header().Set(k, v)
	}

	JSON(w, appErr.StatusCode, ErrorResponse{
		Detail: appErr.Message,
		Code:   appErr.Code,
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, ErrorResponse{
		Detail: message,
		Code:   CodeBadRequest,
	})
}

func UnprocessableEntity(w http.ResponseWriter, message string) {
	JSONError(w, ValidationError(message))
}

func InternalServerError(w http.ResponseWriter, err error) {
	JSONError(w, NewAppError(
		err,
		"internal server error",
		http.StatusInternalServerError,
		CodeInternal,
	))
}

// FormatValidationError flattens validator errors into one readable line.
func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}

	return strings.Join(msgs, "; ")
}
