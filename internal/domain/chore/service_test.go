package chore

import (
	"context"
	"errors"
	"testing"
)

type fakeChoreRepo struct {
	chores      map[uint]*Chore
	completions map[uint][]Completion

	nextChoreID      uint
	nextCompletionID uint
}

func newFakeChoreRepo() *fakeChoreRepo {
	return &fakeChoreRepo{
		chores:      make(map[uint]*Chore),
		completions: make(map[uint][]Completion),
	}
}

func (r *fakeChoreRepo) ListChores(ctx context.Context, familyID uint, filter ListFilter) ([]Chore, int64, error) {
	result := make([]Chore, 0)
	for _, item := range r.chores {
		if item.FamilyID != familyID {
			continue
		}
		if filter.AssignedToID != nil {
			if item.AssignedToID == nil || *item.AssignedToID != *filter.AssignedToID {
				continue
			}
		}
		result = append(result, *item)
	}
	return result, int64(len(result)), nil
}

func (r *fakeChoreRepo) GetChoreByID(ctx context.Context, familyID, choreID uint) (*Chore, error) {
	item, ok := r.chores[choreID]
	if !ok || item.FamilyID != familyID {
		return nil, ErrChoreNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeChoreRepo) CreateChore(ctx context.Context, chore *Chore) error {
	r.nextChoreID++
	chore.ID = r.nextChoreID
	copied := *chore
	r.chores[chore.ID] = &copied
	return nil
}

func (r *fakeChoreRepo) UpdateChore(ctx context.Context, chore *Chore) error {
	if _, ok := r.chores[chore.ID]; !ok {
		return ErrChoreNotFound
	}
	copied := *chore
	r.chores[chore.ID] = &copied
	return nil
}

func (r *fakeChoreRepo) DeleteChore(ctx context.Context, familyID, choreID uint) (bool, error) {
	item, ok := r.chores[choreID]
	if !ok || item.FamilyID != familyID {
		return false, nil
	}
	delete(r.chores, choreID)
	delete(r.completions, choreID)
	return true, nil
}

func (r *fakeChoreRepo) ListCompletionsByChoreIDs(ctx context.Context, choreIDs []uint) ([]Completion, error) {
	result := make([]Completion, 0)
	for _, choreID := range choreIDs {
		result = append(result, r.completions[choreID]...)
	}
	return result, nil
}

func (r *fakeChoreRepo) CreateCompletion(ctx context.Context, completion *Completion) error {
	r.nextCompletionID++
	completion.ID = r.nextCompletionID
	r.completions[completion.ChoreID] = append(r.completions[completion.ChoreID], *completion)
	return nil
}

func seedChore(repo *fakeChoreRepo, familyID uint, title string, assignedTo *uint) *Chore {
	repo.nextChoreID++
	chore := &Chore{ID: repo.nextChoreID, FamilyID: familyID, Title: title, AssignedToID: assignedTo}
	repo.chores[chore.ID] = chore
	return chore
}

func uintPtr(value uint) *uint {
	return &value
}

func strPtr(value string) *string {
	return &value
}

func TestCreateChoreTrimsFields(t *testing.T) {
	repo := newFakeChoreRepo()
	svc := NewService(repo)

	chore, err := svc.CreateChore(context.Background(), CreateChoreInput{
		FamilyID:    1,
		Title:       "  Take out trash  ",
		Description: strPtr("   "),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if chore.Title != "Take out trash" {
		t.Fatalf("expected trimmed title, got %q", chore.Title)
	}
	if chore.Description != nil {
		t.Fatalf("blank description must collapse to nil, got %q", *chore.Description)
	}
}

func TestCreateChoreNegativeReward(t *testing.T) {
	repo := newFakeChoreRepo()
	svc := NewService(repo)

	reward := -5.0
	_, err := svc.CreateChore(context.Background(), CreateChoreInput{
		FamilyID:     1,
		Title:        "Dishes",
		RewardAmount: &reward,
	})
	if err == nil {
		t.Fatalf("expected error for negative reward")
	}
}

func TestUpdateChoreClearAssignee(t *testing.T) {
	repo := newFakeChoreRepo()
	chore := seedChore(repo, 1, "Dishes", uintPtr(10))
	svc := NewService(repo)

	updated, err := svc.UpdateChore(context.Background(), UpdateChoreInput{
		ID:            chore.ID,
		FamilyID:      1,
		ClearAssignee: true,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.AssignedToID != nil {
		t.Fatalf("expected assignee cleared, got %v", *updated.AssignedToID)
	}
}

func TestUpdateChoreNotFound(t *testing.T) {
	repo := newFakeChoreRepo()
	svc := NewService(repo)

	_, err := svc.UpdateChore(context.Background(), UpdateChoreInput{ID: 42, FamilyID: 1, Title: strPtr("X")})
	if !errors.Is(err, ErrChoreNotFound) {
		t.Fatalf("expected ErrChoreNotFound, got %v", err)
	}
}

func TestDeleteChoreNotFound(t *testing.T) {
	repo := newFakeChoreRepo()
	svc := NewService(repo)

	err := svc.DeleteChore(context.Background(), 1, 42)
	if !errors.Is(err, ErrChoreNotFound) {
		t.Fatalf("expected ErrChoreNotFound, got %v", err)
	}
}

func TestCompleteChoreSnapshotsMember(t *testing.T) {
	repo := newFakeChoreRepo()
	chore := seedChore(repo, 1, "Dishes", nil)
	svc := NewService(repo)

	completion, err := svc.CompleteChore(context.Background(), CompleteInput{
		ChoreID:     chore.ID,
		FamilyID:    1,
		CompletedBy: MemberSnapshot{ID: 10, Name: " Alex Doe "},
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completion.CompletedByID != 10 {
		t.Fatalf("expected completer id 10, got %d", completion.CompletedByID)
	}
	if completion.CompletedByName != "Alex Doe" {
		t.Fatalf("expected trimmed name snapshot, got %q", completion.CompletedByName)
	}
}

func TestCompleteChoreRepeatable(t *testing.T) {
	repo := newFakeChoreRepo()
	chore := seedChore(repo, 1, "Dishes", nil)
	svc := NewService(repo)

	for i := 0; i < 2; i++ {
		if _, err := svc.CompleteChore(context.Background(), CompleteInput{
			ChoreID:     chore.ID,
			FamilyID:    1,
			CompletedBy: MemberSnapshot{ID: 10, Name: "Alex"},
		}); err != nil {
			t.Fatalf("completion %d failed: %v", i, err)
		}
	}
	if len(repo.completions[chore.ID]) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(repo.completions[chore.ID]))
	}
}

func TestCompleteChoreUnknownChore(t *testing.T) {
	repo := newFakeChoreRepo()
	svc := NewService(repo)

	_, err := svc.CompleteChore(context.Background(), CompleteInput{
		ChoreID:     77,
		FamilyID:    1,
		CompletedBy: MemberSnapshot{ID: 10, Name: "Alex"},
	})
	if !errors.Is(err, ErrChoreNotFound) {
		t.Fatalf("expected ErrChoreNotFound, got %v", err)
	}
}

func TestListChoresFiltersByAssignee(t *testing.T) {
	repo := newFakeChoreRepo()
	seedChore(repo, 1, "Dishes", uintPtr(10))
	seedChore(repo, 1, "Trash", uintPtr(11))
	svc := NewService(repo)

	chores, total, err := svc.ListChores(context.Background(), 1, ListFilter{AssignedToID: uintPtr(10)}, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(chores) != 1 {
		t.Fatalf("expected 1 chore, got %d (total %d)", len(chores), total)
	}
	if chores[0].Chore.Title != "Dishes" {
		t.Fatalf("expected Dishes, got %q", chores[0].Chore.Title)
	}
}

func TestListChoresIncludesCompletions(t *testing.T) {
	repo := newFakeChoreRepo()
	chore := seedChore(repo, 1, "Dishes", nil)
	svc := NewService(repo)

	if _, err := svc.CompleteChore(context.Background(), CompleteInput{
		ChoreID:     chore.ID,
		FamilyID:    1,
		CompletedBy: MemberSnapshot{ID: 10, Name: "Alex"},
	}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	chores, _, err := svc.ListChores(context.Background(), 1, ListFilter{}, true)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(chores[0].Completions) != 1 {
		t.Fatalf("expected 1 completion included, got %d", len(chores[0].Completions))
	}
}
