package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/devitsbeka/foodvault/internal/auth"
	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/email"
	"github.com/devitsbeka/foodvault/internal/invite"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/store"
)

type FamilyHandler struct {
	db       *sql.DB
	families *store.FamilyStore
	users    *store.UserStore
	invites  *invite.Issuer
	email    *email.Client
	logger   *slog.Logger
}

func NewFamilyHandler(db *sql.DB, families *store.FamilyStore, users *store.UserStore, invites *invite.Issuer, emailClient *email.Client, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{
		db:       db,
		families: families,
		users:    users,
		invites:  invites,
		email:    emailClient,
		logger:   logger,
	}
}

type createFamilyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type updateFamilyRequest struct {
	Name              string `json:"name" validate:"required,min=1,max=100"`
	ApprovalThreshold int    `json:"approval_threshold" validate:"required,min=1,max=20"`
}

type memberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin member"`
}

type acceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

// familyMemberResponse joins a membership row with the member's
// profile for display.
type familyMemberResponse struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Create handles POST /api/families
func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req createFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// The family and its creator's admin membership land together; a
	// family must never exist without an admin.
	var family *model.Family
	err := database.Transact(r.Context(), h.db, func(tx *sql.Tx) error {
		families := h.families.WithTx(tx)
		f, err := families.Create(strings.TrimSpace(req.Name), userID)
		if err != nil {
			return err
		}
		if _, err := families.AddMember(f.ID, userID, model.RoleAdmin); err != nil {
			return err
		}
		family = f
		return nil
	})
	if err != nil {
		h.logger.Error("create family", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, family)
}

// List handles GET /api/families
func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	families, err := h.families.ListFamiliesForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list families", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if families == nil {
		families = []model.Family{}
	}
	writeJSON(w, http.StatusOK, families)
}

// Get handles GET /api/families/{id}
func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	familyID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	family, member, err := h.memberOf(familyID, userID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family not found"})
		return
	}

	members, err := h.families.ListMembers(familyID)
	if err != nil {
		h.logger.Error("list family members", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	resp := struct {
		Family  *model.Family          `json:"family"`
		Members []familyMemberResponse `json:"members"`
	}{Family: family, Members: make([]familyMemberResponse, 0, len(members))}

	for _, m := range members {
		user, err := h.users.GetByID(m.UserID)
		if err != nil {
			h.logger.Error("load member profile", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if user == nil {
			continue
		}
		resp.Members = append(resp.Members, familyMemberResponse{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   m.Role,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update handles PUT /api/families/{id}
func (h *FamilyHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	familyID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if !h.requireAdmin(w, familyID, userID) {
		return
	}

	var req updateFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	family, err := h.families.Update(familyID, strings.TrimSpace(req.Name), req.ApprovalThreshold)
	if err != nil {
		h.logger.Error("update family", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, family)
}

// Delete handles DELETE /api/families/{id}
func (h *FamilyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	familyID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if !h.requireAdmin(w, familyID, userID) {
		return
	}

	if err := h.families.Delete(familyID); err != nil {
		h.logger.Error("delete family", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveMember handles DELETE /api/families/{id}/members/{user_id}.
// Admins remove anyone; a member may remove only themselves.
func (h *FamilyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserID(r.Context())
	familyID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	targetID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user_id"})
		return
	}

	_, caller, err := h.memberOf(familyID, callerID)
	if err != nil {
		h.logger.Error("remove family member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if caller == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family not found"})
		return
	}
	if caller.Role != model.RoleAdmin && callerID != targetID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
		return
	}

	target, err := h.families.GetMember(familyID, targetID)
	if err != nil {
		h.logger.Error("load target member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if target == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}
	if target.Role == model.RoleAdmin {
		last, err := h.lastAdmin(familyID)
		if err != nil {
			h.logger.Error("count admins", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if last {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "family must keep at least one admin"})
			return
		}
	}

	if err := h.families.RemoveMember(familyID, targetID); err != nil {
		h.logger.Error("remove family member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateMemberRole handles PUT /api/families/{id}/members/{user_id}
func (h *FamilyHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserID(r.Context())
	familyID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	targetID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user_id"})
		return
	}
	if !h.requireAdmin(w, familyID, callerID) {
		return
	}

	var req memberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	target, err := h.families.GetMember(familyID, targetID)
	if err != nil {
		h.logger.Error("load target member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if target == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}
	if target.Role == model.RoleAdmin && req.Role != model.RoleAdmin {
		last, err := h.lastAdmin(familyID)
		if err != nil {
			h.logger.Error("count admins", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if last {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "family must keep at least one admin"})
			return
		}
	}

	member, err := h.families.UpdateMemberRole(familyID, targetID, req.Role)
	if err != nil {
		h.logger.Error("update member role", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// Invite handles POST /api/families/{id}/invites. The signed token is
// always returned so an instance without outgoing email can still hand
// the link over another channel.
func (h *FamilyHandler) Invite(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserID(r.Context())
	familyID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if !h.requireAdmin(w, familyID, callerID) {
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	role := req.Role
	if role == "" {
		role = model.RoleMember
	}

	invitedEmail := strings.ToLower(strings.TrimSpace(req.Email))
	token, err := h.invites.Generate(familyID, invitedEmail, role)
	if err != nil {
		h.logger.Error("generate invite token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	if h.email != nil && h.email.Configured() {
		family, err := h.families.GetByID(familyID)
		if err != nil || family == nil {
			h.logger.Error("load family for invite", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		inviter, err := h.users.GetByID(callerID)
		if err != nil || inviter == nil {
			h.logger.Error("load inviter for invite", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if err := h.email.SendInvite(invitedEmail, token, family.Name, inviter.Name); err != nil {
			// The token is still usable; the caller can share the link.
			h.logger.Error("send invite email", "error", err, "to", invitedEmail)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

// AcceptInvite handles POST /api/invites/accept
func (h *FamilyHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var req acceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	claims, err := h.invites.Verify(req.Token)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid or expired invite token"})
		return
	}
	if !strings.EqualFold(claims.Email, authCtx.Email) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invite was issued for a different email address"})
		return
	}

	family, err := h.families.GetByID(claims.FamilyID)
	if err != nil {
		h.logger.Error("load invited family", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if family == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family not found"})
		return
	}

	existing, err := h.families.GetMember(claims.FamilyID, authCtx.UserID)
	if err != nil {
		h.logger.Error("check existing membership", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already a member of this family"})
		return
	}

	role := claims.Role
	if role != model.RoleAdmin && role != model.RoleMember {
		role = model.RoleMember
	}
	member, err := h.families.AddMember(claims.FamilyID, authCtx.UserID, role)
	if err != nil {
		h.logger.Error("add family member", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

// memberOf loads a family and the caller's membership in it. Both nil
// results read the same to the caller: the family does not exist for
// them.
func (h *FamilyHandler) memberOf(familyID, userID int64) (*model.Family, *model.FamilyMember, error) {
	family, err := h.families.GetByID(familyID)
	if err != nil {
		return nil, nil, err
	}
	if family == nil {
		return nil, nil, nil
	}
	member, err := h.families.GetMember(familyID, userID)
	if err != nil {
		return nil, nil, err
	}
	return family, member, nil
}

// requireAdmin writes the error response and returns false unless the
// caller holds the admin role. Non-members get not found, so family
// IDs cannot be probed.
func (h *FamilyHandler) requireAdmin(w http.ResponseWriter, familyID, userID int64) bool {
	_, member, err := h.memberOf(familyID, userID)
	if err != nil {
		h.logger.Error("resolve family role", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return false
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family not found"})
		return false
	}
	if member.Role != model.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
		return false
	}
	return true
}

// lastAdmin reports whether the family has exactly one admin left.
func (h *FamilyHandler) lastAdmin(familyID int64) (bool, error) {
	members, err := h.families.ListMembers(familyID)
	if err != nil {
		return false, err
	}
	admins := 0
	for _, m := range members {
		if m.Role == model.RoleAdmin {
			admins++
		}
	}
	return admins == 1, nil
}
