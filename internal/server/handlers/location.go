// internal/server/handlers/location.go

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"huddle/internal/domain/identity"
	"huddle/internal/domain/location"
)

const maxReportBodyBytes = 64 << 10

var validate = validator.New()

// LocationHandler handles location reports and per-user location settings
type LocationHandler struct {
	ingestor location.Ingestor
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(ingestor location.Ingestor) *LocationHandler {
	return &LocationHandler{
		ingestor: ingestor,
	}
}

type reportLocationRequest struct {
	Latitude   *float64   `json:"latitude" validate:"required"`
	Longitude  *float64   `json:"longitude" validate:"required"`
	Accuracy   *float64   `json:"accuracy"`
	SampledAt  *time.Time `json:"sampled_at" validate:"required"`
	DeviceInfo string     `json:"device_info"`
}

type userLocationResponse struct {
	location.UserState
	Tracking bool `json:"tracking_enabled"`
}

// ReportLocation accepts one location report for the user in the path
func (h *LocationHandler) ReportLocation(w http.ResponseWriter, r *http.Request) {
	userID, callerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req reportLocationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBodyBytes)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body", err)
		return
	}

	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, CodeInvalidReport, "latitude, longitude and sampled_at are required", err)
		return
	}

	sample, err := h.ingestor.Ingest(r.Context(), callerID, location.Report{
		TargetUserID: userID,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		Accuracy:     req.Accuracy,
		SampledAt:    *req.SampledAt,
		DeviceInfo:   req.DeviceInfo,
	})
	if err != nil {
		respondWithDomainError(w, err, "Failed to store location")
		return
	}

	respondWithJSON(w, http.StatusCreated, sample)
}

// GetUserLocation returns the caller's last known location and tracking preference
func (h *LocationHandler) GetUserLocation(w http.ResponseWriter, r *http.Request) {
	userID, callerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	state, err := h.ingestor.GetUserState(r.Context(), callerID, userID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to get location")
		return
	}

	respondWithJSON(w, http.StatusOK, userLocationResponse{UserState: *state, Tracking: state.IsTrackingEnabled()})
}

// SetTracking updates the caller's tracking preference
func (h *LocationHandler) SetTracking(w http.ResponseWriter, r *http.Request) {
	userID, callerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	type setTrackingRequest struct {
		Enabled *bool `json:"enabled" validate:"required"`
	}

	var req setTrackingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBodyBytes)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, CodeInvalidRequest, "enabled is required", err)
		return
	}

	state, err := h.ingestor.SetTrackingEnabled(r.Context(), callerID, userID, *req.Enabled)
	if err != nil {
		respondWithDomainError(w, err, "Failed to update tracking preference")
		return
	}

	respondWithJSON(w, http.StatusOK, userLocationResponse{UserState: *state, Tracking: state.IsTrackingEnabled()})
}

// owner resolves the path user and the caller, rejecting mismatches before
// the body is read
func (h *LocationHandler) owner(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, CodeInvalidRequest, "Missing user ID", nil)
		return "", "", false
	}

	callerID, ok := identity.CallerFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, CodeUnauthenticated, "Missing caller identity", nil)
		return "", "", false
	}

	if callerID != userID {
		respondWithDomainError(w, location.ErrUnauthorized, "")
		return "", "", false
	}

	return userID, callerID, true
}
