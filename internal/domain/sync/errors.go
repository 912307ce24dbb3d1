package sync

import "errors"

var (
	ErrBatchTooLarge                 = errors.New("sync batch too large")
	ErrBatchInProgress               = errors.New("sync batch in progress")
	ErrInvalidOperationID            = errors.New("invalid operation id")
	ErrIdempotencyKeyPayloadMismatch = errors.New("idempotency key payload mismatch")
)
