package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devitsbeka/foodvault/internal/access"
	"github.com/devitsbeka/foodvault/internal/auth"
	"github.com/devitsbeka/foodvault/internal/ingredient"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/store"
)

type InventoryHandler struct {
	inventory *store.InventoryStore
	resolver  access.Resolver
	logger    *slog.Logger
}

func NewInventoryHandler(inventory *store.InventoryStore, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, logger: logger}
}

type inventoryItemRequest struct {
	Name      string     `json:"name" validate:"required,min=1,max=255"`
	Category  string     `json:"category" validate:"omitempty,oneof=fridge pantry other"`
	Quantity  string     `json:"quantity" validate:"omitempty,max=50"`
	Unit      string     `json:"unit" validate:"omitempty,max=30"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Create handles POST /api/inventory. The canonical identity is stamped
// from the display name; a blank category is guessed from it.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	canonical := ingredient.Normalize(name)
	category := model.Category(req.Category)
	if category == "" {
		category = ingredient.Categorize(canonical)
	}

	item, err := h.inventory.Create(userID, name, canonical, category, req.Quantity, req.Unit, req.ExpiresAt, nil)
	if err != nil {
		h.logger.Error("create inventory item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// List handles GET /api/inventory with an optional ?category= filter.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var items []model.InventoryItem
	var err error
	switch category := r.URL.Query().Get("category"); category {
	case "":
		items, err = h.inventory.ListByOwner(userID)
	case string(model.CategoryFridge), string(model.CategoryPantry), string(model.CategoryOther):
		items, err = h.inventory.ListByOwnerAndCategory(userID, model.Category(category))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown category"})
		return
	}
	if err != nil {
		h.logger.Error("list inventory", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Expiring handles GET /api/inventory/expiring?days=N (default 7).
func (h *InventoryHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be between 1 and 365"})
			return
		}
		days = parsed
	}

	cutoff := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	items, err := h.inventory.ListExpiringForOwner(userID, cutoff)
	if err != nil {
		h.logger.Error("list expiring inventory", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /api/inventory/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.resolveItem(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Update handles PUT /api/inventory/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.resolveItem(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}

	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	canonical := ingredient.Normalize(name)
	category := model.Category(req.Category)
	if category == "" {
		category = ingredient.Categorize(canonical)
	}

	updated, err := h.inventory.Update(item.ID, name, canonical, category, req.Quantity, req.Unit, req.ExpiresAt)
	if err != nil {
		h.logger.Error("update inventory item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/inventory/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.resolveItem(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	if err := h.inventory.Delete(item.ID); err != nil {
		h.logger.Error("delete inventory item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveItem loads an inventory item and authorizes the caller as its
// owner. Inventory has no family overlay.
func (h *InventoryHandler) resolveItem(w http.ResponseWriter, r *http.Request, userID int64) (*model.InventoryItem, bool) {
	itemID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}
	item, err := h.inventory.GetByID(itemID)
	if err != nil {
		h.logger.Error("load inventory item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, false
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
		return nil, false
	}
	if h.resolver.ResolveOwned(item.OwnerID, userID) != access.Authorized {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "you do not have access to this item"})
		return nil, false
	}
	return item, true
}
