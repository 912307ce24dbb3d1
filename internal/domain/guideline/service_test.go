package guideline

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeGuidelineRepo struct {
	guidelines map[uint]*Guideline
	approvals  map[uint][]Approval
	nextID     uint
}

func newFakeGuidelineRepo() *fakeGuidelineRepo {
	return &fakeGuidelineRepo{
		guidelines: make(map[uint]*Guideline),
		approvals:  make(map[uint][]Approval),
	}
}

func (r *fakeGuidelineRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeGuidelineRepo) ListByFamilyAndType(ctx context.Context, familyID uint, guidelineType Type) ([]Detail, error) {
	result := make([]Detail, 0)
	for _, g := range r.guidelines {
		if g.FamilyID != familyID || g.Type != guidelineType {
			continue
		}
		detail, _ := r.GetDetail(ctx, familyID, g.ID)
		result = append(result, *detail)
	}
	return result, nil
}

func (r *fakeGuidelineRepo) GetDetail(ctx context.Context, familyID, guidelineID uint) (*Detail, error) {
	g, err := r.GetByID(ctx, familyID, guidelineID)
	if err != nil {
		return nil, err
	}
	details := make([]ApprovalDetail, 0, len(r.approvals[guidelineID]))
	for _, approval := range r.approvals[guidelineID] {
		details = append(details, ApprovalDetail{Approval: approval})
	}
	return &Detail{Guideline: *g, Approvals: details}, nil
}

func (r *fakeGuidelineRepo) GetByID(ctx context.Context, familyID, guidelineID uint) (*Guideline, error) {
	g, ok := r.guidelines[guidelineID]
	if !ok || g.FamilyID != familyID {
		return nil, ErrGuidelineNotFound
	}
	copied := *g
	return &copied, nil
}

func (r *fakeGuidelineRepo) ListApprovals(ctx context.Context, guidelineID uint) ([]Approval, error) {
	return append([]Approval{}, r.approvals[guidelineID]...), nil
}

func (r *fakeGuidelineRepo) Create(ctx context.Context, g *Guideline) error {
	r.nextID++
	g.ID = r.nextID
	copied := *g
	r.guidelines[g.ID] = &copied
	return nil
}

func (r *fakeGuidelineRepo) CreateApprovals(ctx context.Context, approvals []Approval) error {
	for _, approval := range approvals {
		r.approvals[approval.GuidelineID] = append(r.approvals[approval.GuidelineID], approval)
	}
	return nil
}

func (r *fakeGuidelineRepo) UpdateFields(ctx context.Context, guidelineID uint, fields map[string]interface{}) error {
	g, ok := r.guidelines[guidelineID]
	if !ok {
		return ErrGuidelineNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			g.Status = value.(Status)
		case "title":
			g.Title = value.(string)
		case "description":
			g.Description, _ = value.(*string)
		case "activated_at":
			switch v := value.(type) {
			case time.Time:
				g.ActivatedAt = &v
			case *time.Time:
				g.ActivatedAt = v
			}
		case "expires_at":
			switch v := value.(type) {
			case time.Time:
				g.ExpiresAt = &v
			case *time.Time:
				g.ExpiresAt = v
			}
		case "parent_id":
			switch v := value.(type) {
			case uint:
				g.ParentID = &v
			case nil:
				g.ParentID = nil
			}
		}
	}
	return nil
}

func (r *fakeGuidelineRepo) SetApproval(ctx context.Context, guidelineID, userID uint, approved bool, approvedAt *time.Time) (bool, error) {
	approvals := r.approvals[guidelineID]
	for i := range approvals {
		if approvals[i].UserID == userID {
			approvals[i].Approved = approved
			approvals[i].ApprovedAt = approvedAt
			return true, nil
		}
	}
	return false, nil
}

type fakeFamilyDirectory struct {
	members map[uint][]uint
}

func newFakeFamilyDirectory(members map[uint][]uint) *fakeFamilyDirectory {
	return &fakeFamilyDirectory{members: members}
}

func (f *fakeFamilyDirectory) IsMember(ctx context.Context, familyID, userID uint) (bool, error) {
	for _, id := range f.members[familyID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFamilyDirectory) ListMemberIDs(ctx context.Context, familyID uint) ([]uint, error) {
	return append([]uint{}, f.members[familyID]...), nil
}

func newTestService(repo Repository, family FamilyDirectory, now time.Time) *Service {
	svc := NewService(repo, family, Config{NewRuleWindow: 21 * 24 * time.Hour})
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateGuidelineProposerApprovesAutomatically(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10, 11}})
	svc := newTestService(repo, family, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	node, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Be kind",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if node.Status != StatusUnderReview {
		t.Fatalf("expected UNDER_REVIEW with pending votes, got %s", node.Status)
	}
	if len(node.Approvals) != 2 {
		t.Fatalf("expected one approval per member, got %d", len(node.Approvals))
	}

	approvedByProposer := false
	for _, approval := range node.Approvals {
		if approval.UserID == 10 && approval.Approved {
			approvedByProposer = true
		}
		if approval.UserID == 11 && approval.Approved {
			t.Fatalf("non-proposer should not be pre-approved")
		}
	}
	if !approvedByProposer {
		t.Fatalf("proposer approval should be recorded on creation")
	}
}

func TestCreateGuidelineSingleMemberActivatesImmediately(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, family, now)

	node, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "RULE",
		Title:        "Lights out at nine",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if node.Status != StatusActive {
		t.Fatalf("single-member family should activate on creation, got %s", node.Status)
	}
	if node.ActivatedAt == nil || !node.ActivatedAt.Equal(now) {
		t.Fatalf("expected activated_at %v, got %v", now, node.ActivatedAt)
	}
	if node.ExpiresAt == nil || !node.ExpiresAt.Equal(now.Add(21*24*time.Hour)) {
		t.Fatalf("expected RULE expiry 21 days out, got %v", node.ExpiresAt)
	}
}

func TestCreateGuidelineInvalidType(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	svc := newTestService(repo, family, time.Now())

	_, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "POLICY",
		Title:        "Nope",
	})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestCreateGuidelineBlankTitle(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	svc := newTestService(repo, family, time.Now())

	_, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "   ",
	})
	if !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
}

func TestCreateGuidelineNotFamilyMember(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	svc := newTestService(repo, family, time.Now())

	_, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 99,
		Type:         "VALUE",
		Title:        "Intruder",
	})
	if !errors.Is(err, ErrNotFamilyMember) {
		t.Fatalf("expected ErrNotFamilyMember, got %v", err)
	}
}

func TestCreateGuidelineParentTypeMismatch(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	svc := newTestService(repo, family, time.Now())

	parent, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Honesty",
	})
	if err != nil {
		t.Fatalf("parent create failed: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "RULE",
		Title:        "No screens at dinner",
		ParentID:     &parent.GuidelineID,
	})
	if !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent for cross-type nesting, got %v", err)
	}
}

func TestCreateGuidelineUnknownParent(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	svc := newTestService(repo, family, time.Now())

	missing := uint(77)
	_, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Orphan",
		ParentID:     &missing,
	})
	if !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
}

func TestApproveLastVoteActivatesRule(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10, 11}})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, family, now)

	created, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "RULE",
		Title:        "Homework before games",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != StatusUnderReview {
		t.Fatalf("expected UNDER_REVIEW before last vote, got %s", created.Status)
	}

	node, err := svc.Approve(context.Background(), 1, created.GuidelineID, 11, true)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if node.Status != StatusActive {
		t.Fatalf("expected ACTIVE after unanimous approval, got %s", node.Status)
	}
	if node.ExpiresAt == nil || !node.ExpiresAt.Equal(now.Add(21*24*time.Hour)) {
		t.Fatalf("expected expiry at activation plus window, got %v", node.ExpiresAt)
	}
}

func TestApproveRevokeKeepsUnderReview(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10, 11}})
	svc := newTestService(repo, family, time.Now().UTC())

	created, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Gratitude",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	node, err := svc.Approve(context.Background(), 1, created.GuidelineID, 11, false)
	if err != nil {
		t.Fatalf("reject vote failed: %v", err)
	}
	if node.Status != StatusUnderReview {
		t.Fatalf("expected UNDER_REVIEW after rejection, got %s", node.Status)
	}
}

func TestApproveWithoutApprovalRow(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10, 11}})
	svc := newTestService(repo, family, time.Now().UTC())

	created, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Respect",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Late joiner: member of the family but without a row in the approval set.
	family.members[1] = append(family.members[1], 12)

	_, err = svc.Approve(context.Background(), 1, created.GuidelineID, 12, true)
	if !errors.Is(err, ErrApprovalNotFound) {
		t.Fatalf("expected ErrApprovalNotFound, got %v", err)
	}
}

func TestApproveMissingGuideline(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	svc := newTestService(repo, family, time.Now().UTC())

	_, err := svc.Approve(context.Background(), 1, 404, 10, true)
	if !errors.Is(err, ErrGuidelineNotFound) {
		t.Fatalf("expected ErrGuidelineNotFound, got %v", err)
	}
}

func TestListSplitsByStatusAndFlagsNewRules(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, family, now)

	// Single-member family: this rule activates on creation.
	if _, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "RULE",
		Title:        "Fresh rule",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// An old active rule outside the lookback window.
	oldActivated := now.Add(-40 * 24 * time.Hour)
	repo.nextID++
	repo.guidelines[repo.nextID] = &Guideline{
		ID:          repo.nextID,
		FamilyID:    1,
		Type:        TypeRule,
		Title:       "Stale rule",
		Status:      StatusActive,
		ActivatedAt: &oldActivated,
	}

	// A pending proposal.
	repo.nextID++
	repo.guidelines[repo.nextID] = &Guideline{
		ID:       repo.nextID,
		FamilyID: 1,
		Type:     TypeRule,
		Title:    "Pending rule",
		Status:   StatusUnderReview,
	}

	result, err := svc.List(context.Background(), 1, 10, "RULE")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Active) != 2 {
		t.Fatalf("expected 2 active roots, got %d", len(result.Active))
	}
	if len(result.UnderReview) != 1 {
		t.Fatalf("expected 1 under-review root, got %d", len(result.UnderReview))
	}
	if len(result.NewRules) != 1 {
		t.Fatalf("expected 1 recently activated rule, got %d", len(result.NewRules))
	}
	if result.NewRules[0].Title != "Fresh rule" {
		t.Fatalf("expected fresh rule flagged, got %q", result.NewRules[0].Title)
	}
}

func TestListDefaultsToValueType(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	svc := newTestService(repo, family, time.Now().UTC())

	if _, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Patience",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	result, err := svc.List(context.Background(), 1, 10, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Active) != 1 {
		t.Fatalf("expected value listed under default type, got %d active", len(result.Active))
	}
	if result.NewRules != nil {
		t.Fatalf("newRules must be absent for VALUE listings")
	}
}

func TestUpdateManualActivationSetsRuleExpiry(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10, 11}})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, family, now)

	created, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "RULE",
		Title:        "Chores on Saturday",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	status := "ACTIVE"
	node, err := svc.Update(context.Background(), UpdateInput{
		FamilyID:    1,
		GuidelineID: created.GuidelineID,
		UserID:      10,
		Status:      &status,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if node.Status != StatusActive {
		t.Fatalf("expected ACTIVE, got %s", node.Status)
	}
	if node.ExpiresAt == nil || !node.ExpiresAt.Equal(now.Add(21*24*time.Hour)) {
		t.Fatalf("expected expiry set on manual activation, got %v", node.ExpiresAt)
	}
}

func TestUpdateRejectsSelfParent(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	svc := newTestService(repo, family, time.Now().UTC())

	created, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Self",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.Update(context.Background(), UpdateInput{
		FamilyID:    1,
		GuidelineID: created.GuidelineID,
		UserID:      10,
		ParentID:    &created.GuidelineID,
	})
	if !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
}

func TestUpdateClearParent(t *testing.T) {
	repo := newFakeGuidelineRepo()
	family := newFakeFamilyDirectory(map[uint][]uint{1: {10}})
	svc := newTestService(repo, family, time.Now().UTC())

	parent, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Parent",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	child, err := svc.Create(context.Background(), CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Child",
		ParentID:     &parent.GuidelineID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	node, err := svc.Update(context.Background(), UpdateInput{
		FamilyID:    1,
		GuidelineID: child.GuidelineID,
		UserID:      10,
		ClearParent: true,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if node.ParentID != nil {
		t.Fatalf("expected parent cleared, got %v", *node.ParentID)
	}
}
