package handler

import (
	"net/http"

	"cambiacartas-api/internal/middleware"
	"cambiacartas-api/internal/service"
	"cambiacartas-api/pkg/response"
)

// MatchHandler handles trade match requests.
type MatchHandler struct {
	matcher *service.MatcherService
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(matcher *service.MatcherService) *MatchHandler {
	return &MatchHandler{matcher: matcher}
}

// List handles GET /api/v1/matches
// Returns, grouped per counterparty, the for-trade cards that satisfy
// the caller's wishlist.
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	groups, err := h.matcher.ComputeMatches(r.Context(), session.ProfileID)
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.OK(w, map[string]interface{}{
		"matches": groups,
		"count":   len(groups),
	})
}
