package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	guidelinedomain "famconomy-go/internal/domain/guideline"
	"famconomy-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"
)

type createGuidelineRequest struct {
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	ParentID    *uint           `json:"parent_id"`
	Metadata    json.RawMessage `json:"metadata"`
}

type approveGuidelineRequest struct {
	Approved *bool `json:"approved"`
}

type updateGuidelineRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Metadata    json.RawMessage `json:"metadata"`
	Status      *string         `json:"status"`
	ParentID    json.RawMessage `json:"parent_id"`
	ClearParent bool            `json:"clear_parent"`
}

// parseParentID interprets the raw parent_id field. Absent leaves the parent
// unchanged, an explicit null (or empty string) clears it, a positive number
// re-parents.
func parseParentID(raw json.RawMessage) (parentID *uint, clear bool, ok bool) {
	switch string(raw) {
	case "":
		return nil, false, true
	case "null", `""`:
		return nil, true, true
	}

	var id uint
	if err := json.Unmarshal(raw, &id); err != nil || id == 0 {
		return nil, false, false
	}
	return &id, false, true
}

func (h *Handlers) ListGuidelines(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	familyID, err := parseUintParam(chi.URLParam(r, "family_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid family_id")
		return
	}

	result, err := h.Guidelines.List(r.Context(), familyID, user.ID, r.URL.Query().Get("type"))
	if err != nil {
		if errors.Is(err, guidelinedomain.ErrNotFamilyMember) {
			h.log.BusinessError("guidelines.list: not a family member", err, "user_id", user.ID, "family_id", familyID)
			writeError(w, http.StatusForbidden, "not_family_member", "not a family member")
			return
		}
		h.log.InternalError("guidelines.list: list failed", err, "user_id", user.ID, "family_id", familyID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) CreateGuideline(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	familyID, err := parseUintParam(chi.URLParam(r, "family_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid family_id")
		return
	}

	var req createGuidelineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	node, err := h.Guidelines.Create(r.Context(), guidelinedomain.CreateInput{
		FamilyID:     familyID,
		Type:         req.Type,
		Title:        req.Title,
		Description:  req.Description,
		ParentID:     req.ParentID,
		Metadata:     datatypes.JSON(req.Metadata),
		ProposedByID: user.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, guidelinedomain.ErrInvalidType):
			h.log.BusinessError("guidelines.create: invalid type", err, "user_id", user.ID, "family_id", familyID, "type", req.Type)
			writeError(w, http.StatusBadRequest, "invalid_request", "type must be VALUE or RULE")
		case errors.Is(err, guidelinedomain.ErrTitleRequired):
			h.log.BusinessError("guidelines.create: title required", err, "user_id", user.ID, "family_id", familyID)
			writeError(w, http.StatusBadRequest, "invalid_request", "title is required")
		case errors.Is(err, guidelinedomain.ErrInvalidParent):
			h.log.BusinessError("guidelines.create: invalid parent", err, "user_id", user.ID, "family_id", familyID)
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid parent")
		case errors.Is(err, guidelinedomain.ErrNotFamilyMember):
			h.log.BusinessError("guidelines.create: not a family member", err, "user_id", user.ID, "family_id", familyID)
			writeError(w, http.StatusForbidden, "not_family_member", "not a family member")
		default:
			h.log.InternalError("guidelines.create: create failed", err, "user_id", user.ID, "family_id", familyID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

func (h *Handlers) ApproveGuideline(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	familyID, err := parseUintParam(chi.URLParam(r, "family_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid family_id")
		return
	}
	guidelineID, err := parseUintParam(chi.URLParam(r, "guideline_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid guideline_id")
		return
	}

	// A vote must be explicit; an absent flag is never treated as consent.
	var req approveGuidelineRequest
	if err := decodeJSON(r, &req); err != nil || req.Approved == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "approved is required")
		return
	}

	node, err := h.Guidelines.Approve(r.Context(), familyID, guidelineID, user.ID, *req.Approved)
	if err != nil {
		switch {
		case errors.Is(err, guidelinedomain.ErrNotFamilyMember):
			h.log.BusinessError("guidelines.approve: not a family member", err, "user_id", user.ID, "family_id", familyID, "guideline_id", guidelineID)
			writeError(w, http.StatusForbidden, "not_family_member", "not a family member")
		case errors.Is(err, guidelinedomain.ErrGuidelineNotFound):
			h.log.BusinessError("guidelines.approve: guideline not found", err, "user_id", user.ID, "family_id", familyID, "guideline_id", guidelineID)
			writeError(w, http.StatusNotFound, "guideline_not_found", "guideline not found")
		case errors.Is(err, guidelinedomain.ErrApprovalNotFound):
			h.log.BusinessError("guidelines.approve: approval not found", err, "user_id", user.ID, "family_id", familyID, "guideline_id", guidelineID)
			writeError(w, http.StatusNotFound, "approval_not_found", "no approval slot for this member")
		default:
			h.log.InternalError("guidelines.approve: approve failed", err, "user_id", user.ID, "family_id", familyID, "guideline_id", guidelineID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, node)
}

func (h *Handlers) UpdateGuideline(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	familyID, err := parseUintParam(chi.URLParam(r, "family_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid family_id")
		return
	}
	guidelineID, err := parseUintParam(chi.URLParam(r, "guideline_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid guideline_id")
		return
	}

	var req updateGuidelineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	parentID, clearParent, ok := parseParentID(req.ParentID)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid parent_id")
		return
	}

	node, err := h.Guidelines.Update(r.Context(), guidelinedomain.UpdateInput{
		FamilyID:    familyID,
		GuidelineID: guidelineID,
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Metadata:    datatypes.JSON(req.Metadata),
		Status:      req.Status,
		ParentID:    parentID,
		ClearParent: clearParent || req.ClearParent,
	})
	if err != nil {
		switch {
		case errors.Is(err, guidelinedomain.ErrTitleRequired):
			h.log.BusinessError("guidelines.update: title required", err, "user_id", user.ID, "family_id", familyID, "guideline_id", guidelineID)
			writeError(w, http.StatusBadRequest, "invalid_request", "title is required")
		case errors.Is(err, guidelinedomain.ErrInvalidParent):
			h.log.BusinessError("guidelines.update: invalid parent", err, "user_id", user.ID, "family_id", familyID, "guideline_id", guidelineID)
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid parent")
		case errors.Is(err, guidelinedomain.ErrNotFamilyMember):
			h.log.BusinessError("guidelines.update: not a family member", err, "user_id", user.ID, "family_id", familyID, "guideline_id", guidelineID)
			writeError(w, http.StatusForbidden, "not_family_member", "not a family member")
		case errors.Is(err, guidelinedomain.ErrGuidelineNotFound):
			h.log.BusinessError("guidelines.update: guideline not found", err, "user_id", user.ID, "family_id", familyID, "guideline_id", guidelineID)
			writeError(w, http.StatusNotFound, "guideline_not_found", "guideline not found")
		default:
			h.log.InternalError("guidelines.update: update failed", err, "user_id", user.ID, "family_id", familyID, "guideline_id", guidelineID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, node)
}
