package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"cambiacartas-api/internal/repository"
	"cambiacartas-api/internal/service"
	"cambiacartas-api/pkg/apierror"
	"cambiacartas-api/pkg/response"
)

// AuthHandler handles session lifecycle requests.
type AuthHandler struct {
	sessions *service.SessionService
	profiles repository.ProfileRepository
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions *service.SessionService, profiles repository.ProfileRepository) *AuthHandler {
	return &AuthHandler{sessions: sessions, profiles: profiles}
}

type createSessionRequest struct {
	Username string `json:"username" validate:"required,min=2"`
}

// CreateSession handles POST /api/v1/auth/session
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		response.Error(w, apierror.InternalError("sessions are not enabled"))
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(w, validationError(err))
		return
	}

	profile, err := h.profiles.GetProfileByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		response.Error(w, apierror.Unauthorized("unknown username"))
		return
	}

	token, err := h.sessions.Create(r.Context(), profile.ID, profile.Username)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"token":      token,
		"profile_id": profile.ID,
		"username":   profile.Username,
	})
}

// RefreshSession handles POST /api/v1/auth/session/refresh
func (h *AuthHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		response.Error(w, apierror.Unauthorized("session token required"))
		return
	}

	if err := h.sessions.Refresh(r.Context(), token); err != nil {
		response.Error(w, apierror.Unauthorized("invalid or expired session"))
		return
	}
	response.OK(w, map[string]string{"status": "refreshed"})
}

// RevokeSession handles DELETE /api/v1/auth/session
func (h *AuthHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		response.Error(w, apierror.Unauthorized("session token required"))
		return
	}

	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func sessionToken(r *http.Request) string {
	if token := r.Header.Get("X-Session-Token"); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
