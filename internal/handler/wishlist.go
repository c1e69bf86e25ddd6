package handler

import (
	"encoding/json"
	"net/http"

	"cambiacartas-api/internal/middleware"
	"cambiacartas-api/internal/service"
	"cambiacartas-api/pkg/apierror"
	"cambiacartas-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// WishlistHandler handles wishlist-related HTTP requests.
type WishlistHandler struct {
	collection *service.CollectionService
}

// NewWishlistHandler creates a new wishlist handler.
func NewWishlistHandler(collection *service.CollectionService) *WishlistHandler {
	return &WishlistHandler{collection: collection}
}

// List handles GET /api/v1/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	records, err := h.collection.ListWishlist(r.Context(), session.ProfileID)
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.OK(w, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

type wishlistRequest struct {
	CatalogID string `json:"catalog_id" validate:"required"`
	Quantity  int    `json:"quantity"`
	Priority  int    `json:"priority"`
}

// Add handles POST /api/v1/wishlist
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var req wishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(w, validationError(err))
		return
	}

	rec, err := h.collection.AddWishlist(r.Context(), session.ProfileID, req.CatalogID, req.Quantity, req.Priority)
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.Created(w, rec)
}

type wishlistBulkRequest struct {
	CatalogIDs []string `json:"catalog_ids" validate:"required,min=1"`
}

// AddBulk handles POST /api/v1/wishlist/bulk
// One failing id does not abort the batch; the response reports both
// added records and per-id failures.
func (h *WishlistHandler) AddBulk(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var req wishlistBulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(w, validationError(err))
		return
	}

	result := h.collection.AddWishlistBulk(r.Context(), session.ProfileID, req.CatalogIDs)
	response.OK(w, result)
}

// Remove handles DELETE /api/v1/wishlist/{record_id}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	recordID := chi.URLParam(r, "record_id")

	if err := h.collection.RemoveWishlist(r.Context(), session.ProfileID, recordID); err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.NoContent(w)
}

// RemoveByCatalogID handles DELETE /api/v1/wishlist/cards/{catalog_id}
func (h *WishlistHandler) RemoveByCatalogID(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	catalogID := chi.URLParam(r, "catalog_id")

	if err := h.collection.RemoveWishlistByCatalogID(r.Context(), session.ProfileID, catalogID); err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.NoContent(w)
}
