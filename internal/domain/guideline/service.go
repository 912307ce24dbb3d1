package guideline

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Config carries the tunables of the guideline workflow. NewRuleWindow is both
// the RULE expiry duration and the lookback used to flag recently activated
// rules in list responses.
type Config struct {
	NewRuleWindow time.Duration
}

const DefaultNewRuleWindowDays = 21

type Service struct {
	repo   Repository
	family FamilyDirectory
	window time.Duration
	now    func() time.Time
}

func NewService(repo Repository, family FamilyDirectory, cfg Config) *Service {
	window := cfg.NewRuleWindow
	if window <= 0 {
		window = DefaultNewRuleWindowDays * 24 * time.Hour
	}

	return &Service{
		repo:   repo,
		family: family,
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context, familyID, userID uint, rawType string) (*ListResult, error) {
	guidelineType := ParseType(rawType)

	if err := s.requireMember(ctx, familyID, userID); err != nil {
		return nil, err
	}

	details, err := s.repo.ListByFamilyAndType(ctx, familyID, guidelineType)
	if err != nil {
		return nil, err
	}

	var active, underReview []Detail
	for _, detail := range details {
		switch detail.Status {
		case StatusActive:
			active = append(active, detail)
		case StatusUnderReview:
			underReview = append(underReview, detail)
		}
	}

	result := &ListResult{
		Active:      BuildTree(active),
		UnderReview: BuildTree(underReview),
	}

	if guidelineType == TypeRule {
		cutoff := s.now().Add(-s.window)
		var recent []Detail
		for _, detail := range active {
			if detail.ActivatedAt != nil && detail.ActivatedAt.After(cutoff) {
				recent = append(recent, detail)
			}
		}
		if len(recent) > 0 {
			result.NewRules = BuildTree(recent)
		}
	}

	return result, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Node, error) {
	if !IsValidType(input.Type) {
		return nil, ErrInvalidType
	}
	guidelineType := ParseType(input.Type)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if err := s.requireMember(ctx, input.FamilyID, input.ProposedByID); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		if err := s.validateParent(ctx, input.FamilyID, guidelineType, *input.ParentID, 0); err != nil {
			return nil, err
		}
	}

	memberIDs, err := s.family.ListMemberIDs(ctx, input.FamilyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created := Guideline{
		FamilyID:     input.FamilyID,
		Type:         guidelineType,
		Title:        title,
		Description:  trimOrNil(input.Description),
		ParentID:     input.ParentID,
		Status:       StatusUnderReview,
		ProposedByID: input.ProposedByID,
		ProposedAt:   now,
		Metadata:     input.Metadata,
	}

	// Insert the guideline and its full approval set atomically so a
	// guideline is never observable without one row per member.
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.Create(ctx, &created); err != nil {
			return err
		}

		approvals := make([]Approval, 0, len(memberIDs))
		for _, memberID := range memberIDs {
			approval := Approval{
				GuidelineID: created.ID,
				UserID:      memberID,
			}
			if memberID == input.ProposedByID {
				approvedAt := now
				approval.Approved = true
				approval.ApprovedAt = &approvedAt
			}
			approvals = append(approvals, approval)
		}
		return tx.CreateApprovals(ctx, approvals)
	})
	if err != nil {
		return nil, err
	}

	// A single-member family is unanimous on creation.
	if err := s.evaluateActivation(ctx, input.FamilyID, created.ID); err != nil {
		return nil, err
	}

	return s.getNode(ctx, input.FamilyID, created.ID)
}

func (s *Service) Approve(ctx context.Context, familyID, guidelineID, userID uint, approved bool) (*Node, error) {
	if err := s.requireMember(ctx, familyID, userID); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, familyID, guidelineID); err != nil {
		return nil, err
	}

	var approvedAt *time.Time
	if approved {
		now := s.now()
		approvedAt = &now
	}

	updated, err := s.repo.SetApproval(ctx, guidelineID, userID, approved, approvedAt)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Members who joined after the guideline was proposed have no
		// approval row and cannot vote on it.
		return nil, ErrApprovalNotFound
	}

	if err := s.evaluateActivation(ctx, familyID, guidelineID); err != nil {
		return nil, err
	}

	return s.getNode(ctx, familyID, guidelineID)
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Node, error) {
	if err := s.requireMember(ctx, input.FamilyID, input.UserID); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, input.FamilyID, input.GuidelineID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		fields["title"] = title
	}

	if input.Description != nil {
		fields["description"] = trimOrNil(input.Description)
	}

	if input.Metadata != nil {
		fields["metadata"] = input.Metadata
	}

	requestedActive := false
	if input.Status != nil {
		// Only ACTIVE and RETIRED are accepted here; anything else is
		// ignored without error.
		switch Status(strings.ToUpper(strings.TrimSpace(*input.Status))) {
		case StatusActive:
			requestedActive = true
			fields["status"] = StatusActive
			if current.ActivatedAt == nil {
				now := s.now()
				fields["activated_at"] = now
				if current.Type == TypeRule {
					fields["expires_at"] = now.Add(s.window)
				}
			}
		case StatusRetired:
			fields["status"] = StatusRetired
		}
	}

	if input.ClearParent {
		fields["parent_id"] = nil
	} else if input.ParentID != nil {
		if err := s.validateParent(ctx, input.FamilyID, current.Type, *input.ParentID, current.ID); err != nil {
			return nil, err
		}
		fields["parent_id"] = *input.ParentID
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, input.GuidelineID, fields); err != nil {
			return nil, err
		}
	}

	// Harmless double-check: the evaluator's terminal-status guard makes
	// this a no-op when the manual transition above already applied.
	if requestedActive {
		if err := s.evaluateActivation(ctx, input.FamilyID, input.GuidelineID); err != nil {
			return nil, err
		}
	}

	return s.getNode(ctx, input.FamilyID, input.GuidelineID)
}

func (s *Service) requireMember(ctx context.Context, familyID, userID uint) error {
	isMember, err := s.family.IsMember(ctx, familyID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotFamilyMember
	}
	return nil
}

func (s *Service) validateParent(ctx context.Context, familyID uint, guidelineType Type, parentID, selfID uint) error {
	if selfID != 0 && parentID == selfID {
		return ErrInvalidParent
	}

	parent, err := s.repo.GetByID(ctx, familyID, parentID)
	if err != nil {
		if errors.Is(err, ErrGuidelineNotFound) {
			return ErrInvalidParent
		}
		return err
	}
	if parent.Type != guidelineType {
		return ErrInvalidParent
	}
	return nil
}

// evaluateActivation re-reads the guideline and its approvals and persists
// the ACTIVE transition when consent is unanimous. Safe to call repeatedly.
func (s *Service) evaluateActivation(ctx context.Context, familyID, guidelineID uint) error {
	g, err := s.repo.GetByID(ctx, familyID, guidelineID)
	if err != nil {
		return err
	}

	approvals, err := s.repo.ListApprovals(ctx, guidelineID)
	if err != nil {
		return err
	}

	change, ok := EvaluateActivation(*g, approvals, s.now(), s.window)
	if !ok {
		return nil
	}

	return s.repo.UpdateFields(ctx, guidelineID, map[string]interface{}{
		"status":       change.Status,
		"activated_at": change.ActivatedAt,
		"expires_at":   change.ExpiresAt,
	})
}

func (s *Service) getNode(ctx context.Context, familyID, guidelineID uint) (*Node, error) {
	detail, err := s.repo.GetDetail(ctx, familyID, guidelineID)
	if err != nil {
		return nil, err
	}
	return newNode(*detail), nil
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
