package sync

import (
	"time"

	"gorm.io/datatypes"
)

const MaxBatchOperations = 100

type OperationType string

const (
	OperationTypeCreateShoppingItem    OperationType = "create_shopping_item"
	OperationTypeSetItemPurchased      OperationType = "set_item_purchased"
	OperationTypeCreateChoreCompletion OperationType = "create_chore_completion"
)

type ResultStatus string

const (
	ResultStatusApplied   ResultStatus = "applied"
	ResultStatusDuplicate ResultStatus = "duplicate"
	ResultStatusFailed    ResultStatus = "failed"
)

type BatchStatus string

const (
	BatchStatusSuccess        BatchStatus = "success"
	BatchStatusPartialSuccess BatchStatus = "partial_success"
	BatchStatusFailed         BatchStatus = "failed"
)

type ErrorCode string

const (
	ErrorCodeInvalidRequest           ErrorCode = "invalid_request"
	ErrorCodeUnsupportedOperationType ErrorCode = "unsupported_operation_type"
	ErrorCodeDependencyNotResolved    ErrorCode = "dependency_not_resolved"
	ErrorCodeListNotFound             ErrorCode = "shopping_list_not_found"
	ErrorCodeItemNotFound             ErrorCode = "shopping_item_not_found"
	ErrorCodeChoreNotFound            ErrorCode = "chore_not_found"
	ErrorCodeInternalError            ErrorCode = "internal_error"
)

type Entity string

const (
	EntityShoppingItem    Entity = "shopping_item"
	EntityChoreCompletion Entity = "chore_completion"
)

type BatchState string

const (
	BatchStateProcessing BatchState = "processing"
	BatchStateCompleted  BatchState = "completed"
)

type OperationState string

const (
	OperationStatePending OperationState = "pending"
	OperationStateApplied OperationState = "applied"
	OperationStateFailed  OperationState = "failed"
)

// MemberSnapshot identifies the syncing member for purchase and completion
// snapshots.
type MemberSnapshot struct {
	ID   uint
	Name string
}

type BatchInput struct {
	FamilyID       uint
	User           MemberSnapshot
	IdempotencyKey string
	Operations     []OperationInput
}

type OperationInput struct {
	OperationID           string
	Type                  OperationType
	LocalID               string
	CreateShoppingItem    *CreateShoppingItemPayload
	SetItemPurchased      *SetItemPurchasedPayload
	CreateChoreCompletion *CreateChoreCompletionPayload
}

type CreateShoppingItemPayload struct {
	ListID   uint
	Name     string
	Quantity *string
	Note     *string
}

type SetItemPurchasedPayload struct {
	ItemID      uint
	ItemLocalID string
	IsPurchased bool
}

type CreateChoreCompletionPayload struct {
	ChoreID uint
	Note    *string
}

type BatchResponse struct {
	SyncID     string            `json:"sync_id"`
	Status     BatchStatus       `json:"status"`
	Summary    BatchSummary      `json:"summary"`
	Results    []OperationResult `json:"results"`
	Mappings   []EntityMapping   `json:"mappings"`
	ServerTime time.Time         `json:"server_time"`
}

type BatchSummary struct {
	Total     int `json:"total"`
	Applied   int `json:"applied"`
	Duplicate int `json:"duplicate"`
	Failed    int `json:"failed"`
}

type OperationResult struct {
	OperationID string          `json:"operation_id"`
	Type        OperationType   `json:"type"`
	Status      ResultStatus    `json:"status"`
	LocalID     *string         `json:"local_id,omitempty"`
	Entity      *Entity         `json:"entity,omitempty"`
	ServerID    *uint           `json:"server_id,omitempty"`
	Error       *OperationError `json:"error,omitempty"`
}

type OperationError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

type EntityMapping struct {
	Entity   Entity `json:"entity"`
	LocalID  string `json:"local_id"`
	ServerID uint   `json:"server_id"`
}

type BatchRecord struct {
	ID             string         `gorm:"type:uuid;primaryKey"`
	FamilyID       uint           `gorm:"not null;index"`
	UserID         uint           `gorm:"not null;index"`
	IdempotencyKey *string        `gorm:"column:idempotency_key"`
	RequestHash    string         `gorm:"not null"`
	Status         BatchState     `gorm:"not null"`
	ResponseJSON   datatypes.JSON `gorm:"type:jsonb;column:response_json"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (BatchRecord) TableName() string {
	return "sync_batches"
}

type OperationRecord struct {
	ID            string         `gorm:"type:uuid;primaryKey"`
	FamilyID      uint           `gorm:"not null;index"`
	UserID        uint           `gorm:"not null;index"`
	OperationID   string         `gorm:"type:uuid;not null"`
	OperationType OperationType  `gorm:"not null;column:operation_type"`
	PayloadHash   string         `gorm:"not null;column:payload_hash"`
	LocalID       *string        `gorm:"column:local_id"`
	Status        OperationState `gorm:"not null"`
	Entity        *Entity        `gorm:"column:entity"`
	ServerID      *uint          `gorm:"column:server_id"`
	ErrorCode     *ErrorCode     `gorm:"column:error_code"`
	ErrorMessage  *string        `gorm:"column:error_message"`
	Retryable     *bool          `gorm:"column:retryable"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (OperationRecord) TableName() string {
	return "sync_operations"
}
