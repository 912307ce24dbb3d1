package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	choredomain "famconomy-go/internal/domain/chore"
	"github.com/go-chi/chi/v5"
)

type createChoreRequest struct {
	Title        string   `json:"title"`
	Description  *string  `json:"description"`
	AssignedToID *uint    `json:"assigned_to_id"`
	RewardAmount *float64 `json:"reward_amount"`
	DueDate      *string  `json:"due_date"`
}

type updateChoreRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	AssignedToID  *uint    `json:"assigned_to_id"`
	ClearAssignee bool     `json:"clear_assignee"`
	RewardAmount  *float64 `json:"reward_amount"`
	DueDate       *string  `json:"due_date"`
}

type completeChoreRequest struct {
	Note *string `json:"note"`
}

type choreResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	AssignedToID *uint     `json:"assigned_to_id"`
	RewardAmount *float64  `json:"reward_amount"`
	DueDate      *string   `json:"due_date"`
	CreatedAt    time.Time `json:"created_at"`

	Completions []choreCompletionResponse `json:"completions,omitempty"`
}

type choreCompletionResponse struct {
	ID              uint      `json:"id"`
	ChoreID         uint      `json:"chore_id"`
	CompletedByID   uint      `json:"completed_by_id"`
	CompletedByName string    `json:"completed_by_name"`
	CompletedAt     time.Time `json:"completed_at"`
	Note            *string   `json:"note"`
}

type choresResponse struct {
	Chores []choreResponse `json:"chores"`
	Total  int64           `json:"total"`
}

func (h *Handlers) ListChores(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit, err := parseIntParam(query.Get("limit"), 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	filter := choredomain.ListFilter{Limit: limit, Offset: offset}
	if raw := query.Get("assigned_to"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid assigned_to")
			return
		}
		assignedTo := uint(parsed)
		filter.AssignedToID = &assignedTo
	}

	includeCompletions := query.Get("include") == "completions"

	chores, total, err := h.Chores.ListChores(r.Context(), family.ID, filter, includeCompletions)
	if err != nil {
		h.log.InternalError("chores.list: list failed", err, "user_id", user.ID, "family_id", family.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := choresResponse{
		Chores: make([]choreResponse, 0, len(chores)),
		Total:  total,
	}
	for _, item := range chores {
		response.Chores = append(response.Chores, toChoreResponse(item, includeCompletions))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateChore(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	var req createChoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid due_date")
		return
	}

	chore, err := h.Chores.CreateChore(r.Context(), choredomain.CreateChoreInput{
		FamilyID:     family.ID,
		Title:        req.Title,
		Description:  req.Description,
		AssignedToID: req.AssignedToID,
		RewardAmount: req.RewardAmount,
		DueDate:      dueDate,
	})
	if err != nil {
		h.log.InternalError("chores.create: create failed", err, "user_id", user.ID, "family_id", family.ID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toChoreResponse(choredomain.ChoreWithCompletions{Chore: *chore}, false))
}

func (h *Handlers) UpdateChore(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	choreID, err := parseUintParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	var req updateChoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid due_date")
		return
	}

	chore, err := h.Chores.UpdateChore(r.Context(), choredomain.UpdateChoreInput{
		ID:            choreID,
		FamilyID:      family.ID,
		Title:         req.Title,
		Description:   req.Description,
		AssignedToID:  req.AssignedToID,
		ClearAssignee: req.ClearAssignee,
		RewardAmount:  req.RewardAmount,
		DueDate:       dueDate,
	})
	if err != nil {
		if errors.Is(err, choredomain.ErrChoreNotFound) {
			h.log.BusinessError("chores.update: chore not found", err, "user_id", user.ID, "chore_id", choreID)
			writeError(w, http.StatusNotFound, "chore_not_found", "chore not found")
			return
		}
		h.log.InternalError("chores.update: update failed", err, "user_id", user.ID, "chore_id", choreID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toChoreResponse(choredomain.ChoreWithCompletions{Chore: *chore}, false))
}

func (h *Handlers) DeleteChore(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	choreID, err := parseUintParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	if err := h.Chores.DeleteChore(r.Context(), family.ID, choreID); err != nil {
		if errors.Is(err, choredomain.ErrChoreNotFound) {
			h.log.BusinessError("chores.delete: chore not found", err, "user_id", user.ID, "chore_id", choreID)
			writeError(w, http.StatusNotFound, "chore_not_found", "chore not found")
			return
		}
		h.log.InternalError("chores.delete: delete failed", err, "user_id", user.ID, "chore_id", choreID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) CompleteChore(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	choreID, err := parseUintParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	// Completion with no body is fine.
	var req completeChoreRequest
	_ = decodeJSON(r, &req)

	completion, err := h.Chores.CompleteChore(r.Context(), choredomain.CompleteInput{
		ChoreID:  choreID,
		FamilyID: family.ID,
		CompletedBy: choredomain.MemberSnapshot{
			ID:   user.ID,
			Name: user.Name(),
		},
		Note: req.Note,
	})
	if err != nil {
		if errors.Is(err, choredomain.ErrChoreNotFound) {
			h.log.BusinessError("chores.complete: chore not found", err, "user_id", user.ID, "chore_id", choreID)
			writeError(w, http.StatusNotFound, "chore_not_found", "chore not found")
			return
		}
		h.log.InternalError("chores.complete: complete failed", err, "user_id", user.ID, "chore_id", choreID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toChoreCompletionResponse(*completion))
}

func (h *Handlers) ListChoreCompletions(w http.ResponseWriter, r *http.Request) {
	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	choreID, err := parseUintParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	completions, err := h.Chores.ListCompletions(r.Context(), family.ID, choreID)
	if err != nil {
		if errors.Is(err, choredomain.ErrChoreNotFound) {
			h.log.BusinessError("chores.list_completions: chore not found", err, "user_id", user.ID, "chore_id", choreID)
			writeError(w, http.StatusNotFound, "chore_not_found", "chore not found")
			return
		}
		h.log.InternalError("chores.list_completions: list failed", err, "user_id", user.ID, "chore_id", choreID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]choreCompletionResponse, 0, len(completions))
	for _, completion := range completions {
		response = append(response, toChoreCompletionResponse(completion))
	}

	writeJSON(w, http.StatusOK, response)
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	return parseDateParam(*value)
}

func toChoreResponse(item choredomain.ChoreWithCompletions, includeCompletions bool) choreResponse {
	response := choreResponse{
		ID:           item.Chore.ID,
		Title:        item.Chore.Title,
		Description:  item.Chore.Description,
		AssignedToID: item.Chore.AssignedToID,
		RewardAmount: item.Chore.RewardAmount,
		CreatedAt:    item.Chore.CreatedAt,
	}
	if item.Chore.DueDate != nil {
		formatted := item.Chore.DueDate.Format("2006-01-02")
		response.DueDate = &formatted
	}
	if includeCompletions {
		response.Completions = make([]choreCompletionResponse, 0, len(item.Completions))
		for _, completion := range item.Completions {
			response.Completions = append(response.Completions, toChoreCompletionResponse(completion))
		}
	}
	return response
}

func toChoreCompletionResponse(completion choredomain.Completion) choreCompletionResponse {
	return choreCompletionResponse{
		ID:              completion.ID,
		ChoreID:         completion.ChoreID,
		CompletedByID:   completion.CompletedByID,
		CompletedByName: completion.CompletedByName,
		CompletedAt:     completion.CompletedAt,
		Note:            completion.Note,
	}
}
