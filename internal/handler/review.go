package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/devitsbeka/foodvault/internal/auth"
	"github.com/devitsbeka/foodvault/internal/ingredient"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/review"
	"github.com/devitsbeka/foodvault/internal/store"
)

// duplicateHintThreshold is the similarity score above which an
// existing inventory identity is surfaced as a likely duplicate of a
// freshly proposed one.
const duplicateHintThreshold = 0.8

type ReviewHandler struct {
	svc       *review.Service
	reviews   *store.ReviewStore
	inventory *store.InventoryStore
	logger    *slog.Logger
}

func NewReviewHandler(svc *review.Service, reviews *store.ReviewStore, inventory *store.InventoryStore, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		svc:       svc,
		reviews:   reviews,
		inventory: inventory,
		logger:    logger,
	}
}

type proposeRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Quantity     string `json:"quantity" validate:"omitempty,max=50"`
	Unit         string `json:"unit" validate:"omitempty,max=30"`
	ImageURL     string `json:"image_url" validate:"omitempty,url,max=500"`
	OwnerID      int64  `json:"owner_id"`
	SourceItemID *int64 `json:"source_item_id"`
}

type voteRequest struct {
	Vote string `json:"vote" validate:"required,oneof=approve reject"`
}

// proposeResponse pairs the created entry with near-duplicate
// identities already in the target inventory, so the reviewer sees the
// clash before approving.
type proposeResponse struct {
	Entry              *model.ReviewEntry `json:"entry"`
	PossibleDuplicates []string           `json:"possible_duplicates"`
}

type approveResponse struct {
	Entry         *model.ReviewEntry   `json:"entry"`
	InventoryItem *model.InventoryItem `json:"inventory_item"`
}

type voteResponse struct {
	Vote          *model.ReviewVote    `json:"vote"`
	Entry         *model.ReviewEntry   `json:"entry"`
	InventoryItem *model.InventoryItem `json:"inventory_item,omitempty"`
	AutoApproved  bool                 `json:"auto_approved"`
}

// Propose handles POST /api/review. Omitting owner_id proposes into
// the caller's own inventory.
func (h *ReviewHandler) Propose(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req proposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ownerID := req.OwnerID
	if ownerID == 0 {
		ownerID = userID
	}

	entry, err := h.svc.Propose(r.Context(), review.ProposeInput{
		ProposerID:   userID,
		OwnerID:      ownerID,
		Name:         req.Name,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		ImageURL:     req.ImageURL,
		SourceItemID: req.SourceItemID,
	})
	if err != nil {
		writeServiceError(w, h.logger, "propose review entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, proposeResponse{
		Entry:              entry,
		PossibleDuplicates: h.duplicateHints(entry),
	})
}

// Approve handles POST /api/review/{id}/approve
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	entryID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	result, err := h.svc.Approve(r.Context(), entryID, auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "approve review entry", err)
		return
	}
	writeJSON(w, http.StatusOK, approveResponse{Entry: result.Entry, InventoryItem: result.InventoryItem})
}

// Reject handles POST /api/review/{id}/reject
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	entryID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	entry, err := h.svc.Reject(r.Context(), entryID, auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "reject review entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Vote handles POST /api/review/{id}/vote
func (h *ReviewHandler) Vote(w http.ResponseWriter, r *http.Request) {
	entryID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.svc.Vote(r.Context(), entryID, auth.UserID(r.Context()), model.Vote(req.Vote))
	if err != nil {
		writeServiceError(w, h.logger, "vote on review entry", err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{
		Vote:          result.Vote,
		Entry:         result.Entry,
		InventoryItem: result.InventoryItem,
		AutoApproved:  result.AutoApproved,
	})
}

// Get handles GET /api/review/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	entryID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	detail, err := h.svc.Entry(entryID, auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "get review entry", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Pending handles GET /api/review/pending, the caller's reviewer queue.
func (h *ReviewHandler) Pending(w http.ResponseWriter, r *http.Request) {
	entries, err := h.reviews.ListPendingForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list pending review entries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if entries == nil {
		entries = []model.ReviewEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Mine handles GET /api/review/mine, the caller's own proposals in
// every state.
func (h *ReviewHandler) Mine(w http.ResponseWriter, r *http.Request) {
	entries, err := h.reviews.ListEntriesByProposer(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list proposed review entries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if entries == nil {
		entries = []model.ReviewEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// duplicateHints compares the entry's canonical identity against the
// target inventory and returns the identities it is likely to collide
// with. Hint failures are logged and swallowed; the proposal already
// exists.
func (h *ReviewHandler) duplicateHints(entry *model.ReviewEntry) []string {
	hints := []string{}
	existing, err := h.inventory.CanonicalNamesForOwner(entry.OwnerID)
	if err != nil {
		h.logger.Error("load canonical names for duplicate hints", "error", err)
		return hints
	}
	for _, name := range existing {
		if ingredient.Similarity(entry.CanonicalName, name) >= duplicateHintThreshold {
			hints = append(hints, name)
		}
	}
	return hints
}
