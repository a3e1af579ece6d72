// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(data)
}

func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// JSONError writes an AppError as the standard error envelope. Unknown
// error types degrade to an opaque internal error.
func JSONError(w http.ResponseWriter, err error) {
	if appErr, ok := AsAppError(err); ok {
		writeJSON(w, appErr.Status, appErr)
		return
	}

	InternalServerError(w, err)
}

func BadRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, &AppError{
		Status: http.StatusBadRequest,
		Code:   CodeValidationError,
		Detail: detail,
	})
}

func Unauthorized(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Not authenticated"
	}
	writeJSON(w, http.StatusUnauthorized, &AppError{
		Status: http.StatusUnauthorized,
		Code:   CodeNotAuthenticated,
		Detail: detail,
	})
}

func Forbidden(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusForbidden, &AppError{
		Status: http.StatusForbidden,
		Code:   "forbidden",
		Detail: detail,
	})
}

func NotFound(w http.ResponseWriter, resource string) {
	writeJSON(w, http.StatusNotFound, &AppError{
		Status: http.StatusNotFound,
		Code:   CodeNotFound,
		Detail: resource + " not found",
	})
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)

	writeJSON(w, http.StatusInternalServerError, &AppError{
		Status: http.StatusInternalServerError,
		Code:   CodeInternalError,
		Detail: "Internal server error",
	})
}

// FormatValidationError flattens validator.ValidationErrors into a short
// human-readable detail string.
func FormatValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "invalid request"
	}

	parts := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be a valid email")
		case "min":
			parts = append(parts, field+" is too short")
		case "max":
			parts = append(parts, field+" is too long")
		case "oneof":
			parts = append(parts, field+" must be one of: "+fe.Param())
		default:
			parts = append(parts, field+" is invalid")
		}
	}

	return strings.Join(parts, "; ")
}
