// internal/server/handlers/group.go

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"huddle/internal/domain/location"
)

// GroupHandler serves the live map of a group
type GroupHandler struct {
	aggregator location.Aggregator
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(aggregator location.Aggregator) *GroupHandler {
	return &GroupHandler{
		aggregator: aggregator,
	}
}

// GetGroupLocations returns the latest location of every member who has reported
func (h *GroupHandler) GetGroupLocations(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	if groupID == "" {
		respondWithError(w, http.StatusBadRequest, CodeInvalidRequest, "Missing group ID", nil)
		return
	}

	members, err := h.aggregator.GroupLocations(r.Context(), groupID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to get group locations")
		return
	}

	if members == nil {
		members = []location.MemberLocation{}
	}

	respondWithJSON(w, http.StatusOK, members)
}
