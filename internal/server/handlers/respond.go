// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"huddle/internal/domain/location"
)

// Error codes returned in the "code" field of error responses
const (
	CodeUnauthenticated    = "unauthenticated"
	CodeNotAuthorized      = "not_authorized"
	CodeTrackingDisabled   = "tracking_disabled"
	CodeInvalidRequest     = "invalid_request"
	CodeInvalidReport      = "invalid_report"
	CodeNotFound           = "not_found"
	CodePersistenceFailure = "persistence_failure"
	CodeInternal           = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil && status >= 500 {
		log.Printf("HTTP %d %s: %s: %v", status, code, message, err)
	}

	respondWithJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondWithDomainError maps location errors onto status codes
func respondWithDomainError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, location.ErrUnauthorized):
		respondWithError(w, http.StatusForbidden, CodeNotAuthorized, "Not authorized", nil)
	case errors.Is(err, location.ErrTrackingDisabled):
		respondWithError(w, http.StatusForbidden, CodeTrackingDisabled, "Location tracking is disabled", nil)
	case errors.Is(err, location.ErrInvalidReport):
		respondWithError(w, http.StatusBadRequest, CodeInvalidReport, err.Error(), nil)
	case errors.Is(err, location.ErrNotFound):
		respondWithError(w, http.StatusNotFound, CodeNotFound, "Not found", nil)
	case errors.Is(err, location.ErrPersistence):
		respondWithError(w, http.StatusInternalServerError, CodePersistenceFailure, message, err)
	default:
		respondWithError(w, http.StatusInternalServerError, CodeInternal, message, err)
	}
}
