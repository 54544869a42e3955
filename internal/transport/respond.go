package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/planward/planward/internal/domain/plan"
	"github.com/planward/planward/internal/domain/template"
)

// Error codes surfaced to API clients. Each maps to exactly one failure
// kind so callers can tell them apart without parsing messages.
const (
	codeNotFound          = "NOT_FOUND"
	codeValidation        = "VALIDATION"
	codePartialFailure    = "PARTIAL_FAILURE"
	codeDependencyFailure = "DEPENDENCY_FAILURE"
	codeUnauthorized      = "UNAUTHORIZED"
)

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{Success: false, Error: &apiError{Code: code, Message: message}})
}

// writeDomainError maps domain errors to HTTP failure responses. Anything
// not recognized as a domain failure is a persistence collaborator failure
// and is reported as such, never as a raw driver error.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, template.ErrTemplateNotFound),
		errors.Is(err, plan.ErrPlanNotFound),
		errors.Is(err, plan.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, template.ErrInvalidInput),
		errors.Is(err, plan.ErrInvalidInput),
		errors.Is(err, plan.ErrEmptyTemplate):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
	default:
		writeError(w, http.StatusBadGateway, codeDependencyFailure, "persistence unavailable: "+err.Error())
	}
}
