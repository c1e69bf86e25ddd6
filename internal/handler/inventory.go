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

// InventoryHandler handles inventory-related HTTP requests.
type InventoryHandler struct {
	collection *service.CollectionService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(collection *service.CollectionService) *InventoryHandler {
	return &InventoryHandler{collection: collection}
}

type inventoryRequest struct {
	CatalogID string  `json:"catalog_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Condition string  `json:"condition"`
	Language  string  `json:"language"`
	Price     float64 `json:"price" validate:"min=0"`
	ForTrade  bool    `json:"for_trade"`
	Notes     string  `json:"notes"`
}

func (req inventoryRequest) params() service.InventoryParams {
	return service.InventoryParams{
		CatalogID: req.CatalogID,
		Quantity:  req.Quantity,
		Condition: req.Condition,
		Language:  req.Language,
		Price:     req.Price,
		ForTrade:  req.ForTrade,
		Notes:     req.Notes,
	}
}

// List handles GET /api/v1/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	records, err := h.collection.ListInventory(r.Context(), session.ProfileID)
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.OK(w, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// ListTrades handles GET /api/v1/users/{profile_id}/trades
// Only for-trade records are visible to other users.
func (h *InventoryHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profile_id")
	if profileID == "" {
		response.Error(w, apierror.BadRequest("profile_id is required"))
		return
	}

	records, err := h.collection.ListTradeInventory(r.Context(), profileID)
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.OK(w, map[string]interface{}{
		"profile_id": profileID,
		"records":    records,
		"count":      len(records),
	})
}

// Add handles POST /api/v1/inventory
func (h *InventoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var req inventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Error(w, validationError(err))
		return
	}

	rec, err := h.collection.AddInventory(r.Context(), session.ProfileID, req.params())
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.Created(w, rec)
}

// Update handles PUT /api/v1/inventory/{record_id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	recordID := chi.URLParam(r, "record_id")

	var req inventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	rec, err := h.collection.UpdateInventory(r.Context(), session.ProfileID, recordID, req.params())
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.OK(w, rec)
}

type forTradeRequest struct {
	ForTrade bool `json:"for_trade"`
}

// SetForTrade handles PATCH /api/v1/inventory/{record_id}/for-trade
func (h *InventoryHandler) SetForTrade(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	recordID := chi.URLParam(r, "record_id")

	var req forTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	if err := h.collection.ToggleForTrade(r.Context(), session.ProfileID, recordID, req.ForTrade); err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.OK(w, map[string]interface{}{
		"record_id": recordID,
		"for_trade": req.ForTrade,
	})
}

// Remove handles DELETE /api/v1/inventory/{record_id}
func (h *InventoryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	recordID := chi.URLParam(r, "record_id")

	if err := h.collection.RemoveInventory(r.Context(), session.ProfileID, recordID); err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.NoContent(w)
}
