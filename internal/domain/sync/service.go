package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	choredomain "famconomy-go/internal/domain/chore"
	shoppingdomain "famconomy-go/internal/domain/shopping"
	"github.com/google/uuid"
)

type ShoppingService interface {
	CreateItem(ctx context.Context, familyID uint, input shoppingdomain.CreateItemInput) (*shoppingdomain.Item, error)
	UpdateItem(ctx context.Context, input shoppingdomain.UpdateItemInput) (*shoppingdomain.Item, error)
}

type ChoreService interface {
	CompleteChore(ctx context.Context, input choredomain.CompleteInput) (*choredomain.Completion, error)
}

type Service struct {
	repo     Repository
	shopping ShoppingService
	chores   ChoreService
}

func NewService(repo Repository, shopping ShoppingService, chores ChoreService) *Service {
	return &Service{
		repo:     repo,
		shopping: shopping,
		chores:   chores,
	}
}

func (s *Service) ProcessBatch(ctx context.Context, input BatchInput) (*BatchResponse, error) {
	if len(input.Operations) == 0 {
		return nil, fmt.Errorf("operations are required")
	}
	if len(input.Operations) > MaxBatchOperations {
		return nil, ErrBatchTooLarge
	}
	for _, operation := range input.Operations {
		if _, err := uuid.Parse(operation.OperationID); err != nil {
			return nil, ErrInvalidOperationID
		}
	}

	syncID := uuid.NewString()

	requestHash, err := hashRequest(input.Operations)
	if err != nil {
		return nil, err
	}

	idempotencyKey := strings.TrimSpace(input.IdempotencyKey)
	batchCreated := false

	if idempotencyKey != "" {
		batch := &BatchRecord{
			ID:             syncID,
			FamilyID:       input.FamilyID,
			UserID:         input.User.ID,
			IdempotencyKey: &idempotencyKey,
			RequestHash:    requestHash,
			Status:         BatchStateProcessing,
		}

		created, existing, err := s.repo.BeginBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		if !created {
			if existing == nil {
				return nil, ErrBatchInProgress
			}
			if existing.RequestHash != requestHash {
				return nil, ErrIdempotencyKeyPayloadMismatch
			}
			if existing.Status == BatchStateCompleted && len(existing.ResponseJSON) > 0 {
				var cached BatchResponse
				if err := json.Unmarshal(existing.ResponseJSON, &cached); err == nil {
					return &cached, nil
				}
			}
			return nil, ErrBatchInProgress
		}

		batchCreated = true
	}

	response := BatchResponse{
		SyncID:   syncID,
		Results:  make([]OperationResult, 0, len(input.Operations)),
		Mappings: make([]EntityMapping, 0),
		Summary: BatchSummary{
			Total: len(input.Operations),
		},
		ServerTime: time.Now().UTC(),
	}

	// Server IDs of shopping items created earlier in this batch, so later
	// operations can reference them by local ID.
	localItemIDs := make(map[string]uint)

	for _, operation := range input.Operations {
		result, mapping := s.processOperation(ctx, input, operation, localItemIDs)
		response.Results = append(response.Results, result)
		if mapping != nil {
			response.Mappings = append(response.Mappings, *mapping)
			if mapping.Entity == EntityShoppingItem {
				localItemIDs[mapping.LocalID] = mapping.ServerID
			}
		}

		switch result.Status {
		case ResultStatusApplied:
			response.Summary.Applied++
		case ResultStatusDuplicate:
			response.Summary.Duplicate++
		default:
			response.Summary.Failed++
		}
	}

	response.Status = deriveBatchStatus(response.Summary)

	if batchCreated {
		if encoded, err := json.Marshal(response); err == nil {
			_ = s.repo.CompleteBatch(ctx, syncID, BatchStateCompleted, encoded)
		}
	}

	return &response, nil
}

func (s *Service) processOperation(ctx context.Context, input BatchInput, operation OperationInput, localItemIDs map[string]uint) (OperationResult, *EntityMapping) {
	base := OperationResult{
		OperationID: operation.OperationID,
		Type:        operation.Type,
	}

	payloadHash, err := hashOperation(operation)
	if err != nil {
		return failResult(base, ErrorCodeInternalError, "internal error", true), nil
	}

	reserved := &OperationRecord{
		ID:            uuid.NewString(),
		FamilyID:      input.FamilyID,
		UserID:        input.User.ID,
		OperationID:   operation.OperationID,
		OperationType: operation.Type,
		PayloadHash:   payloadHash,
		Status:        OperationStatePending,
	}
	if operation.LocalID != "" {
		localID := operation.LocalID
		reserved.LocalID = &localID
	}

	created, existing, err := s.repo.ReserveOperation(ctx, reserved)
	if err != nil {
		return failResult(base, ErrorCodeInternalError, "internal error", true), nil
	}
	if !created {
		return resultFromExisting(base, existing, payloadHash), nil
	}

	result := base
	var mapping *EntityMapping

	switch operation.Type {
	case OperationTypeCreateShoppingItem:
		if operation.CreateShoppingItem == nil {
			result = failResult(result, ErrorCodeInvalidRequest, "payload is required", false)
			break
		}

		item, err := s.shopping.CreateItem(ctx, input.FamilyID, shoppingdomain.CreateItemInput{
			ListID:   operation.CreateShoppingItem.ListID,
			Name:     operation.CreateShoppingItem.Name,
			Quantity: operation.CreateShoppingItem.Quantity,
			Note:     operation.CreateShoppingItem.Note,
		})
		if err != nil {
			if errors.Is(err, shoppingdomain.ErrListNotFound) {
				result = failResult(result, ErrorCodeListNotFound, "shopping list not found", false)
				break
			}
			result = failResult(result, ErrorCodeInternalError, "internal error", true)
			break
		}

		result.Status = ResultStatusApplied
		result.LocalID = nonEmptyStringPtr(operation.LocalID)
		entity := EntityShoppingItem
		result.Entity = &entity
		serverID := item.ID
		result.ServerID = &serverID

		if result.LocalID != nil {
			mapping = &EntityMapping{
				Entity:   entity,
				LocalID:  *result.LocalID,
				ServerID: serverID,
			}
		}

	case OperationTypeSetItemPurchased:
		if operation.SetItemPurchased == nil {
			result = failResult(result, ErrorCodeInvalidRequest, "payload is required", false)
			break
		}

		itemID := operation.SetItemPurchased.ItemID
		if itemID == 0 {
			resolved, ok := localItemIDs[operation.SetItemPurchased.ItemLocalID]
			if !ok {
				result = failResult(result, ErrorCodeDependencyNotResolved, "item id dependency is not resolved", false)
				break
			}
			itemID = resolved
		}

		isPurchased := operation.SetItemPurchased.IsPurchased
		var purchasedBy *shoppingdomain.MemberSnapshot
		if isPurchased {
			purchasedBy = &shoppingdomain.MemberSnapshot{
				ID:   input.User.ID,
				Name: input.User.Name,
			}
		}

		_, err := s.shopping.UpdateItem(ctx, shoppingdomain.UpdateItemInput{
			ID:          itemID,
			FamilyID:    input.FamilyID,
			IsPurchased: &isPurchased,
			PurchasedBy: purchasedBy,
		})
		if err != nil {
			if errors.Is(err, shoppingdomain.ErrItemNotFound) {
				result = failResult(result, ErrorCodeItemNotFound, "shopping item not found", false)
				break
			}
			result = failResult(result, ErrorCodeInternalError, "internal error", true)
			break
		}

		result.Status = ResultStatusApplied

	case OperationTypeCreateChoreCompletion:
		if operation.CreateChoreCompletion == nil {
			result = failResult(result, ErrorCodeInvalidRequest, "payload is required", false)
			break
		}

		completion, err := s.chores.CompleteChore(ctx, choredomain.CompleteInput{
			ChoreID:  operation.CreateChoreCompletion.ChoreID,
			FamilyID: input.FamilyID,
			CompletedBy: choredomain.MemberSnapshot{
				ID:   input.User.ID,
				Name: input.User.Name,
			},
			Note: operation.CreateChoreCompletion.Note,
		})
		if err != nil {
			if errors.Is(err, choredomain.ErrChoreNotFound) {
				result = failResult(result, ErrorCodeChoreNotFound, "chore not found", false)
				break
			}
			result = failResult(result, ErrorCodeInternalError, "internal error", true)
			break
		}

		result.Status = ResultStatusApplied
		result.LocalID = nonEmptyStringPtr(operation.LocalID)
		entity := EntityChoreCompletion
		result.Entity = &entity
		serverID := completion.ID
		result.ServerID = &serverID

		if result.LocalID != nil {
			mapping = &EntityMapping{
				Entity:   entity,
				LocalID:  *result.LocalID,
				ServerID: serverID,
			}
		}

	default:
		result = failResult(result, ErrorCodeUnsupportedOperationType, "unsupported operation type", false)
	}

	updateRecord := *reserved
	if result.Status == ResultStatusApplied {
		updateRecord.Status = OperationStateApplied
		updateRecord.Entity = result.Entity
		updateRecord.ServerID = result.ServerID
		updateRecord.ErrorCode = nil
		updateRecord.ErrorMessage = nil
		updateRecord.Retryable = nil
	} else {
		updateRecord.Status = OperationStateFailed
		if result.Error != nil {
			code := result.Error.Code
			message := result.Error.Message
			retryable := result.Error.Retryable
			updateRecord.ErrorCode = &code
			updateRecord.ErrorMessage = &message
			updateRecord.Retryable = &retryable
		}
	}
	_ = s.repo.UpdateOperation(ctx, &updateRecord)

	return result, mapping
}

// resultFromExisting replays a previously recorded operation: an identical
// payload is a duplicate, a different payload under the same operation ID is
// a client bug.
func resultFromExisting(base OperationResult, existing *OperationRecord, payloadHash string) OperationResult {
	if existing == nil {
		return failResult(base, ErrorCodeInternalError, "internal error", true)
	}
	if existing.PayloadHash != payloadHash {
		return failResult(base, ErrorCodeInvalidRequest, "operation id reused with different payload", false)
	}

	result := base
	result.Status = ResultStatusDuplicate
	result.Entity = existing.Entity
	result.ServerID = existing.ServerID
	if existing.LocalID != nil {
		result.LocalID = existing.LocalID
	}
	if existing.Status == OperationStateFailed {
		result.Status = ResultStatusFailed
		if existing.ErrorCode != nil {
			result.Error = &OperationError{
				Code:    *existing.ErrorCode,
				Message: stringOrEmpty(existing.ErrorMessage),
			}
			if existing.Retryable != nil {
				result.Error.Retryable = *existing.Retryable
			}
		}
	}
	return result
}

func failResult(base OperationResult, code ErrorCode, message string, retryable bool) OperationResult {
	result := base
	result.Status = ResultStatusFailed
	result.Error = &OperationError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}
	return result
}

func deriveBatchStatus(summary BatchSummary) BatchStatus {
	switch {
	case summary.Failed == 0:
		return BatchStatusSuccess
	case summary.Applied > 0 || summary.Duplicate > 0:
		return BatchStatusPartialSuccess
	default:
		return BatchStatusFailed
	}
}

func hashRequest(operations []OperationInput) (string, error) {
	encoded, err := json.Marshal(operations)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:]), nil
}

func hashOperation(operation OperationInput) (string, error) {
	encoded, err := json.Marshal(operation)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:]), nil
}

func nonEmptyStringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
