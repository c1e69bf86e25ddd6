package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"cambiacartas-api/internal/repository"
	"cambiacartas-api/internal/scryfall"
	"cambiacartas-api/internal/service"
	"cambiacartas-api/pkg/apierror"
	"cambiacartas-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

const defaultSearchLimit = 25

// CatalogHandler handles card catalog lookups and resolution.
type CatalogHandler struct {
	reconciler *service.Reconciler
	resolver   *service.CardResolver
	catalog    *scryfall.Client
	mirror     repository.CardMirrorRepository
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(
	reconciler *service.Reconciler,
	resolver *service.CardResolver,
	catalog *scryfall.Client,
	mirror repository.CardMirrorRepository,
) *CatalogHandler {
	return &CatalogHandler{
		reconciler: reconciler,
		resolver:   resolver,
		catalog:    catalog,
		mirror:     mirror,
	}
}

// Search handles GET /api/v1/catalog/search?q=...&limit=...
// The mirror is searched first; the external catalog fills in when the
// mirror has nothing.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.Error(w, apierror.BadRequest("q is required"))
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	cards, err := h.mirror.SearchCards(r.Context(), query, limit)
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	if len(cards) == 0 {
		cards = h.catalog.SearchCards(r.Context(), query)
		if len(cards) > limit {
			cards = cards[:limit]
		}
	}

	response.OK(w, map[string]interface{}{
		"query": query,
		"cards": cards,
	})
}

// Autocomplete handles GET /api/v1/catalog/autocomplete?q=...
func (h *CatalogHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.Error(w, apierror.BadRequest("q is required"))
		return
	}

	suggestions := h.catalog.Suggest(r.Context(), query)
	if suggestions == nil {
		suggestions = []string{}
	}
	response.OK(w, map[string]interface{}{
		"query":       query,
		"suggestions": suggestions,
	})
}

type resolveRequest struct {
	Name         string `json:"name" validate:"required"`
	SetName      string `json:"set_name"`
	SetCode      string `json:"set_code"`
	AllPrintings bool   `json:"all_printings"`
}

// Resolve handles POST /api/v1/catalog/resolve
// An ambiguous name comes back as 409 with the candidate printings so
// the client can narrow down or ask for all of them.
func (h *CatalogHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(w, validationError(err))
		return
	}

	entries, err := h.reconciler.Resolve(r.Context(), service.ResolveRequest{
		Name:         req.Name,
		SetName:      req.SetName,
		SetCode:      req.SetCode,
		AllPrintings: req.AllPrintings,
	})
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}

	response.OK(w, map[string]interface{}{
		"cards": entries,
	})
}

// GetCard handles GET /api/v1/catalog/cards/{catalog_id}
func (h *CatalogHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	catalogID := chi.URLParam(r, "catalog_id")
	if catalogID == "" {
		response.Error(w, apierror.BadRequest("catalog_id is required"))
		return
	}

	card, err := h.resolver.Resolve(r.Context(), catalogID)
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.OK(w, card)
}

// Printings handles GET /api/v1/catalog/printings?name=...
func (h *CatalogHandler) Printings(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		response.Error(w, apierror.BadRequest("name is required"))
		return
	}

	printings := h.catalog.ListPrintings(r.Context(), name)
	response.OK(w, map[string]interface{}{
		"name":      name,
		"printings": printings,
	})
}
