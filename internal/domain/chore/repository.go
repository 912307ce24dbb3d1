package chore

import "context"

type Repository interface {
	ListChores(ctx context.Context, familyID uint, filter ListFilter) ([]Chore, int64, error)
	GetChoreByID(ctx context.Context, familyID, choreID uint) (*Chore, error)
	CreateChore(ctx context.Context, chore *Chore) error
	UpdateChore(ctx context.Context, chore *Chore) error
	DeleteChore(ctx context.Context, familyID, choreID uint) (bool, error)
	ListCompletionsByChoreIDs(ctx context.Context, choreIDs []uint) ([]Completion, error)
	CreateCompletion(ctx context.Context, completion *Completion) error
}
