package server

import (
	"encoding/json"
	"net/http"
)

// Error types returned in JSON error bodies.
const (
	ErrorTypeInvalidRequest = "invalid_request"
	ErrorTypeTooLarge       = "request_too_large"
	ErrorTypeNotFound       = "not_found"
	ErrorTypeUnavailable    = "unavailable"
	ErrorTypeInternal       = "internal_error"
)

// ErrorResponse is the JSON body of every non-parse error.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes what went wrong.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Message: message, Type: errType}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
