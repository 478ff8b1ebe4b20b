package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/devitsbeka/foodvault/internal/access"
	"github.com/devitsbeka/foodvault/internal/auth"
	"github.com/devitsbeka/foodvault/internal/ingredient"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/notify"
	"github.com/devitsbeka/foodvault/internal/store"
)

type ListHandler struct {
	lists    *store.ListStore
	families *store.FamilyStore
	notifier *notify.Notifier
	resolver access.Resolver
	logger   *slog.Logger
}

func NewListHandler(lists *store.ListStore, families *store.FamilyStore, notifier *notify.Notifier, logger *slog.Logger) *ListHandler {
	return &ListHandler{
		lists:    lists,
		families: families,
		notifier: notifier,
		logger:   logger,
	}
}

type listRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	FamilyID *int64 `json:"family_id"`
}

type itemRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Quantity string `json:"quantity" validate:"omitempty,max=50"`
	Unit     string `json:"unit" validate:"omitempty,max=30"`
}

type itemStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active bought"`
}

// listDetailResponse is the list plus its items, the shape both the
// member view and the shared read-only view return.
type listDetailResponse struct {
	List  *model.ShoppingList  `json:"list"`
	Items []model.ShoppingItem `json:"items"`
}

// Create handles POST /api/lists
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if !h.allowFamilyAttach(w, req.FamilyID, userID) {
		return
	}

	list, err := h.lists.CreateList(strings.TrimSpace(req.Name), userID, req.FamilyID)
	if err != nil {
		h.logger.Error("create list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// List handles GET /api/lists
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListListsForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list shopping lists", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if lists == nil {
		lists = []model.ShoppingList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

// Get handles GET /api/lists/{id}
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, ok := h.resolveList(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	h.writeListDetail(w, list)
}

// Update handles PUT /api/lists/{id}. Renaming a list or moving it
// between families is reserved for the owner; the family overlay
// grants item access, not list lifecycle.
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	list, ok := h.resolveOwnedList(w, r, userID)
	if !ok {
		return
	}

	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if !h.allowFamilyAttach(w, req.FamilyID, userID) {
		return
	}

	updated, err := h.lists.UpdateList(list.ID, strings.TrimSpace(req.Name), req.FamilyID)
	if err != nil {
		h.logger.Error("update list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/lists/{id}
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	list, ok := h.resolveOwnedList(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	if err := h.lists.DeleteList(list.ID); err != nil {
		h.logger.Error("delete list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Items handles GET /api/lists/{id}/items
func (h *ListHandler) Items(w http.ResponseWriter, r *http.Request) {
	list, ok := h.resolveList(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	items, err := h.lists.ListItemsByList(list.ID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// AddItem handles POST /api/lists/{id}/items
func (h *ListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	list, ok := h.resolveList(w, r, userID)
	if !ok {
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	item, err := h.lists.CreateItem(list.ID, name, ingredient.Normalize(name), req.Quantity, req.Unit, &userID)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	h.notifier.ItemAdded(list, item)
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/items/{id}
func (h *ListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	item, _, ok := h.resolveItem(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	if item.Status == model.ItemStatusPendingReview {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "item is locked by a pending review"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	updated, err := h.lists.UpdateItem(item.ID, name, ingredient.Normalize(name), req.Quantity, req.Unit)
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /api/items/{id}
func (h *ListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	item, _, ok := h.resolveItem(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	if item.Status == model.ItemStatusPendingReview {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "item is locked by a pending review"})
		return
	}
	if err := h.lists.DeleteItem(item.ID); err != nil {
		h.logger.Error("delete item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetItemStatus handles PUT /api/items/{id}/status. Only the shopper
// states are reachable here; pending_review is entered and left by the
// review workflow alone.
func (h *ListHandler) SetItemStatus(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	item, _, ok := h.resolveItem(w, r, userID)
	if !ok {
		return
	}
	if item.Status == model.ItemStatusPendingReview {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "item is locked by a pending review"})
		return
	}

	var req itemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.lists.SetItemStatus(item.ID, model.ItemStatus(req.Status), &userID)
	if err != nil {
		h.logger.Error("set item status", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ClearBought handles POST /api/lists/{id}/clear-bought
func (h *ListHandler) ClearBought(w http.ResponseWriter, r *http.Request) {
	list, ok := h.resolveList(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	removed, err := h.lists.ClearBought(list.ID)
	if err != nil {
		h.logger.Error("clear bought items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

// Share handles POST /api/lists/{id}/share. Minting is idempotent in
// effect; sharing again rotates the token.
func (h *ListHandler) Share(w http.ResponseWriter, r *http.Request) {
	list, ok := h.resolveOwnedList(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	token := uuid.NewString()
	updated, err := h.lists.SetShareToken(list.ID, &token)
	if err != nil {
		h.logger.Error("set share token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Unshare handles DELETE /api/lists/{id}/share
func (h *ListHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	list, ok := h.resolveOwnedList(w, r, auth.UserID(r.Context()))
	if !ok {
		return
	}
	updated, err := h.lists.SetShareToken(list.ID, nil)
	if err != nil {
		h.logger.Error("clear share token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Shared handles GET /api/shared/{token} without authentication. The
// token is the only credential; a wrong one reads as not found.
func (h *ListHandler) Shared(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}
	list, err := h.lists.GetListByShareToken(token)
	if err != nil {
		h.logger.Error("lookup shared list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}
	h.writeListDetail(w, list)
}

// resolveList loads the list from the id path parameter and authorizes
// the caller through the tri-state resolver, writing the error response
// on failure.
func (h *ListHandler) resolveList(w http.ResponseWriter, r *http.Request, userID int64) (*model.ShoppingList, bool) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}
	list, err := h.lists.GetListByID(listID)
	if err != nil {
		h.logger.Error("load list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, false
	}
	decision, err := h.resolver.ResolveList(h.families, list, userID)
	if err != nil {
		h.logger.Error("resolve list access", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, false
	}
	switch decision {
	case access.Authorized:
		return list, true
	case access.Forbidden:
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "you do not have access to this list"})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
	}
	return nil, false
}

// resolveOwnedList is resolveList restricted to the owner.
func (h *ListHandler) resolveOwnedList(w http.ResponseWriter, r *http.Request, userID int64) (*model.ShoppingList, bool) {
	list, ok := h.resolveList(w, r, userID)
	if !ok {
		return nil, false
	}
	if list.OwnerID != userID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the list owner may do this"})
		return nil, false
	}
	return list, true
}

// resolveItem loads an item from the id path parameter and authorizes
// the caller against the item's list.
func (h *ListHandler) resolveItem(w http.ResponseWriter, r *http.Request, userID int64) (*model.ShoppingItem, *model.ShoppingList, bool) {
	itemID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, nil, false
	}
	item, err := h.lists.GetItemByID(itemID)
	if err != nil {
		h.logger.Error("load item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, nil, false
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return nil, nil, false
	}
	list, err := h.lists.GetListByID(item.ListID)
	if err != nil {
		h.logger.Error("load item's list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, nil, false
	}
	decision, err := h.resolver.ResolveList(h.families, list, userID)
	if err != nil {
		h.logger.Error("resolve list access", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, nil, false
	}
	switch decision {
	case access.Authorized:
		return item, list, true
	case access.Forbidden:
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "you do not have access to this list"})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
	}
	return nil, nil, false
}

// allowFamilyAttach checks that the caller belongs to the family a
// list is being attached to. A nil familyID always passes.
func (h *ListHandler) allowFamilyAttach(w http.ResponseWriter, familyID *int64, userID int64) bool {
	if familyID == nil {
		return true
	}
	member, err := h.families.GetMember(*familyID, userID)
	if err != nil {
		h.logger.Error("check family membership", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return false
	}
	if member == nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "not a member of this family"})
		return false
	}
	return true
}

func (h *ListHandler) writeListDetail(w http.ResponseWriter, list *model.ShoppingList) {
	items, err := h.lists.ListItemsByList(list.ID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, listDetailResponse{List: list, Items: items})
}
