package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"libraryapi/internal/circulation"
)

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponseBody `json:"error"`
}

type ErrorResponseBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func JSONSuccess(w http.ResponseWriter, data interface{}, meta interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func JSONSuccessCreated(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Data:    data,
	})
}

func JSONError(w http.ResponseWriter, statusCode int, code string, message string, details []ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error: ErrorResponseBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// JSONDomainError maps the circulation error taxonomy onto status codes.
// Each class keeps its own code so callers can tell them apart.
func JSONDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, circulation.ErrNotFound):
		JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, circulation.ErrConflict):
		JSONError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, circulation.ErrLimitExceeded):
		JSONError(w, http.StatusUnprocessableEntity, "LIMIT_EXCEEDED", err.Error(), nil)
	case errors.Is(err, circulation.ErrInvalidState):
		JSONError(w, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, circulation.ErrValidation):
		JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, circulation.ErrForbidden):
		JSONError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	default:
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "server error", nil)
	}
}
