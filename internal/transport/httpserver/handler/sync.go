package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	syncdomain "famconomy-go/internal/domain/sync"
	"github.com/google/uuid"
)

const (
	minIdempotencyKeyLength = 8
	maxIdempotencyKeyLength = 128
)

type syncBatchRequest struct {
	Operations []syncOperationRequest `json:"operations"`
}

type syncOperationRequest struct {
	OperationID string          `json:"operation_id"`
	Type        string          `json:"type"`
	LocalID     string          `json:"local_id"`
	Payload     json.RawMessage `json:"payload"`
}

type syncCreateShoppingItemPayloadRequest struct {
	ListID   uint    `json:"list_id"`
	Name     string  `json:"name"`
	Quantity *string `json:"quantity"`
	Note     *string `json:"note"`
}

type syncSetItemPurchasedPayloadRequest struct {
	ItemID      *uint   `json:"item_id"`
	ItemLocalID *string `json:"item_local_id"`
	IsPurchased *bool   `json:"is_purchased"`
}

type syncCreateChoreCompletionPayloadRequest struct {
	ChoreID uint    `json:"chore_id"`
	Note    *string `json:"note"`
}

func (h *Handlers) SyncBatch(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()

	var req syncBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if len(req.Operations) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "operations are required")
		return
	}
	if len(req.Operations) > syncdomain.MaxBatchOperations {
		writeError(w, http.StatusRequestEntityTooLarge, "sync_batch_too_large", "too many operations in one batch")
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" && len(idempotencyKey) < minIdempotencyKeyLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "idempotency key is too short")
		return
	}
	if len(idempotencyKey) > maxIdempotencyKeyLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "idempotency key is too long")
		return
	}

	user, family, ok := h.requireFamily(w, r)
	if !ok {
		return
	}

	operations := make([]syncdomain.OperationInput, 0, len(req.Operations))
	for i, operation := range req.Operations {
		parsed, err := parseSyncOperation(operation)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid operation at index "+strconv.Itoa(i))
			return
		}
		operations = append(operations, parsed)
	}

	response, err := h.Sync.ProcessBatch(r.Context(), syncdomain.BatchInput{
		FamilyID:       family.ID,
		User:           syncdomain.MemberSnapshot{ID: user.ID, Name: user.Name()},
		IdempotencyKey: idempotencyKey,
		Operations:     operations,
	})
	if err != nil {
		logAttrs := []any{
			"user_id", user.ID,
			"family_id", family.ID,
			"operations", len(operations),
			"has_idempotency_key", idempotencyKey != "",
			"duration_ms", time.Since(startedAt).Milliseconds(),
		}

		switch {
		case errors.Is(err, syncdomain.ErrBatchTooLarge):
			h.log.BusinessError("sync.batch: batch too large", err, logAttrs...)
			writeError(w, http.StatusRequestEntityTooLarge, "sync_batch_too_large", "too many operations in one batch")
		case errors.Is(err, syncdomain.ErrInvalidOperationID):
			h.log.BusinessError("sync.batch: invalid operation id", err, logAttrs...)
			writeError(w, http.StatusBadRequest, "invalid_request", "operation_id must be a uuid")
		case errors.Is(err, syncdomain.ErrIdempotencyKeyPayloadMismatch):
			h.log.BusinessError("sync.batch: idempotency key payload mismatch", err, logAttrs...)
			writeError(w, http.StatusConflict, "idempotency_key_payload_mismatch", "Idempotency-Key was already used with different payload")
		case errors.Is(err, syncdomain.ErrBatchInProgress):
			h.log.BusinessError("sync.batch: batch in progress", err, logAttrs...)
			writeError(w, http.StatusConflict, "batch_in_progress", "sync batch is already in progress")
		default:
			h.log.InternalError("sync.batch: process batch failed", err, logAttrs...)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.log.Info(
		"sync: completed",
		"sync_id", response.SyncID,
		"user_id", user.ID,
		"family_id", family.ID,
		"status", response.Status,
		"total", response.Summary.Total,
		"applied", response.Summary.Applied,
		"duplicate", response.Summary.Duplicate,
		"failed", response.Summary.Failed,
		"has_idempotency_key", idempotencyKey != "",
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, response)
}

func parseSyncOperation(operation syncOperationRequest) (syncdomain.OperationInput, error) {
	operationID := strings.TrimSpace(operation.OperationID)
	if _, err := uuid.Parse(operationID); err != nil {
		return syncdomain.OperationInput{}, errors.New("invalid operation_id")
	}

	operationType := syncdomain.OperationType(strings.TrimSpace(operation.Type))
	localID := strings.TrimSpace(operation.LocalID)

	result := syncdomain.OperationInput{
		OperationID: operationID,
		Type:        operationType,
		LocalID:     localID,
	}

	switch operationType {
	case syncdomain.OperationTypeCreateShoppingItem:
		if localID == "" {
			return syncdomain.OperationInput{}, errors.New("local_id is required")
		}

		var payload syncCreateShoppingItemPayloadRequest
		if err := decodePayload(operation.Payload, &payload); err != nil {
			return syncdomain.OperationInput{}, err
		}
		if payload.ListID == 0 {
			return syncdomain.OperationInput{}, errors.New("list_id is required")
		}
		if strings.TrimSpace(payload.Name) == "" {
			return syncdomain.OperationInput{}, errors.New("name is required")
		}

		result.CreateShoppingItem = &syncdomain.CreateShoppingItemPayload{
			ListID:   payload.ListID,
			Name:     payload.Name,
			Quantity: payload.Quantity,
			Note:     payload.Note,
		}
		return result, nil

	case syncdomain.OperationTypeSetItemPurchased:
		var payload syncSetItemPurchasedPayloadRequest
		if err := decodePayload(operation.Payload, &payload); err != nil {
			return syncdomain.OperationInput{}, err
		}
		if payload.IsPurchased == nil {
			return syncdomain.OperationInput{}, errors.New("is_purchased is required")
		}

		itemLocalID := ""
		if payload.ItemLocalID != nil {
			itemLocalID = strings.TrimSpace(*payload.ItemLocalID)
		}
		itemID := uint(0)
		if payload.ItemID != nil {
			itemID = *payload.ItemID
		}
		if itemID == 0 && itemLocalID == "" {
			return syncdomain.OperationInput{}, errors.New("item_id or item_local_id is required")
		}

		result.SetItemPurchased = &syncdomain.SetItemPurchasedPayload{
			ItemID:      itemID,
			ItemLocalID: itemLocalID,
			IsPurchased: *payload.IsPurchased,
		}
		return result, nil

	case syncdomain.OperationTypeCreateChoreCompletion:
		if localID == "" {
			return syncdomain.OperationInput{}, errors.New("local_id is required")
		}

		var payload syncCreateChoreCompletionPayloadRequest
		if err := decodePayload(operation.Payload, &payload); err != nil {
			return syncdomain.OperationInput{}, err
		}
		if payload.ChoreID == 0 {
			return syncdomain.OperationInput{}, errors.New("chore_id is required")
		}

		result.CreateChoreCompletion = &syncdomain.CreateChoreCompletionPayload{
			ChoreID: payload.ChoreID,
			Note:    payload.Note,
		}
		return result, nil

	default:
		return result, nil
	}
}

func decodePayload(raw json.RawMessage, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid payload")
	}
	return nil
}
