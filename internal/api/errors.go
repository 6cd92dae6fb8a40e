package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/housetally/housetally-core/internal/auth"
	"github.com/housetally/housetally-core/internal/ledger"
)

// Error represents a structured error response.
type Error struct {
	Status  int      `json:"status"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Reasons []string `json:"reasons,omitempty"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeAuthError maps authentication errors onto HTTP responses.
//
// Credential and token failures collapse to a generic 401 so responses
// never reveal whether a username exists or why a token was rejected.
// Password policy violations return 400 with every failed rule listed.
func writeAuthError(w http.ResponseWriter, err error) {
	var policyErr *auth.PolicyError

	switch {
	case errors.As(err, &policyErr):
		writeJSON(w, http.StatusBadRequest, Error{
			Status:  http.StatusBadRequest,
			Code:    ErrCodeValidation,
			Message: "password does not meet policy",
			Reasons: policyErr.Reasons,
		})
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthorized):
		writeUnauthorized(w, "invalid credentials")
	case errors.Is(err, auth.ErrUsernameExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, "username already taken")
	case errors.Is(err, auth.ErrInvalidUsername):
		writeBadRequest(w, "invalid username")
	case errors.Is(err, auth.ErrUserNotFound):
		writeNotFound(w, "user not found")
	default:
		writeInternalError(w, "internal server error")
	}
}

// writeLedgerError maps ledger errors onto HTTP responses.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrHomeNotFound):
		writeNotFound(w, "home not found")
	case errors.Is(err, ledger.ErrNotMember):
		writeForbidden(w, "not a member of this home")
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeBadRequest(w, "amount must be a positive number of cents")
	case errors.Is(err, ledger.ErrSelfTransfer):
		writeBadRequest(w, "cannot transfer to yourself")
	case errors.Is(err, ledger.ErrEmptyHomeName):
		writeBadRequest(w, "home name is required")
	default:
		writeInternalError(w, "internal server error")
	}
}
