package handler

import (
	"net/http"

	"cambiacartas-api/internal/middleware"
	"cambiacartas-api/internal/repository"
	"cambiacartas-api/pkg/apierror"
	"cambiacartas-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ProfileHandler serves community member profiles.
type ProfileHandler struct {
	profiles repository.ProfileRepository
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me handles GET /api/v1/profile
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	profile, err := h.profiles.GetProfile(r.Context(), session.ProfileID)
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.OK(w, profile)
}

// Get handles GET /api/v1/users/{profile_id}
// Other users only ever see the public display fields.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profile_id")
	if profileID == "" {
		response.Error(w, apierror.BadRequest("profile_id is required"))
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), profileID)
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.OK(w, profile.DisplayInfo())
}
