package chore

import "errors"

var (
	ErrChoreNotFound      = errors.New("chore not found")
	ErrCompletionNotFound = errors.New("completion not found")
)
