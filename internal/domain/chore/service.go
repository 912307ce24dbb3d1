package chore

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListChores(ctx context.Context, familyID uint, filter ListFilter, includeCompletions bool) ([]ChoreWithCompletions, int64, error) {
	chores, total, err := s.repo.ListChores(ctx, familyID, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(chores) == 0 {
		return []ChoreWithCompletions{}, total, nil
	}

	completionsByChore := map[uint][]Completion{}
	if includeCompletions {
		choreIDs := make([]uint, 0, len(chores))
		for _, item := range chores {
			choreIDs = append(choreIDs, item.ID)
		}
		completions, err := s.repo.ListCompletionsByChoreIDs(ctx, choreIDs)
		if err != nil {
			return nil, 0, err
		}
		for _, completion := range completions {
			completionsByChore[completion.ChoreID] = append(completionsByChore[completion.ChoreID], completion)
		}
	}

	result := make([]ChoreWithCompletions, 0, len(chores))
	for _, item := range chores {
		completions := completionsByChore[item.ID]
		if includeCompletions && completions == nil {
			completions = []Completion{}
		}
		result = append(result, ChoreWithCompletions{
			Chore:       item,
			Completions: completions,
		})
	}

	return result, total, nil
}

func (s *Service) CreateChore(ctx context.Context, input CreateChoreInput) (*Chore, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.RewardAmount != nil && *input.RewardAmount < 0 {
		return nil, fmt.Errorf("reward must be non-negative")
	}

	created := Chore{
		FamilyID:     input.FamilyID,
		Title:        title,
		Description:  trimOrNil(input.Description),
		AssignedToID: input.AssignedToID,
		RewardAmount: input.RewardAmount,
		DueDate:      input.DueDate,
	}

	if err := s.repo.CreateChore(ctx, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

func (s *Service) UpdateChore(ctx context.Context, input UpdateChoreInput) (*Chore, error) {
	chore, err := s.repo.GetChoreByID(ctx, input.FamilyID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("title is required")
		}
		chore.Title = trimmed
	}
	if input.Description != nil {
		chore.Description = trimOrNil(input.Description)
	}
	if input.ClearAssignee {
		chore.AssignedToID = nil
	} else if input.AssignedToID != nil {
		chore.AssignedToID = input.AssignedToID
	}
	if input.RewardAmount != nil {
		if *input.RewardAmount < 0 {
			return nil, fmt.Errorf("reward must be non-negative")
		}
		chore.RewardAmount = input.RewardAmount
	}
	if input.DueDate != nil {
		chore.DueDate = input.DueDate
	}

	if err := s.repo.UpdateChore(ctx, chore); err != nil {
		return nil, err
	}

	return chore, nil
}

func (s *Service) DeleteChore(ctx context.Context, familyID, choreID uint) error {
	deleted, err := s.repo.DeleteChore(ctx, familyID, choreID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrChoreNotFound
	}
	return nil
}

func (s *Service) CompleteChore(ctx context.Context, input CompleteInput) (*Completion, error) {
	if input.CompletedBy.ID == 0 {
		return nil, fmt.Errorf("completed_by is required")
	}

	if _, err := s.repo.GetChoreByID(ctx, input.FamilyID, input.ChoreID); err != nil {
		return nil, err
	}

	completion := Completion{
		ChoreID:         input.ChoreID,
		CompletedByID:   input.CompletedBy.ID,
		CompletedByName: strings.TrimSpace(input.CompletedBy.Name),
		Note:            trimOrNil(input.Note),
	}

	if err := s.repo.CreateCompletion(ctx, &completion); err != nil {
		return nil, err
	}

	return &completion, nil
}

func (s *Service) ListCompletions(ctx context.Context, familyID, choreID uint) ([]Completion, error) {
	if _, err := s.repo.GetChoreByID(ctx, familyID, choreID); err != nil {
		return nil, err
	}

	return s.repo.ListCompletionsByChoreIDs(ctx, []uint{choreID})
}

func trimOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
