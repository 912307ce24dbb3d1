package guideline

import (
	"context"
	"errors"
	"time"

	guidelinedomain "famconomy-go/internal/domain/guideline"
	userdomain "famconomy-go/internal/domain/user"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(guidelinedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListByFamilyAndType(ctx context.Context, familyID uint, guidelineType guidelinedomain.Type) ([]guidelinedomain.Detail, error) {
	var rows []guidelinedomain.Guideline
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND type = ?", familyID, guidelineType).
		Order("parent_id asc, title asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return r.loadDetails(ctx, rows)
}

func (r *PostgresRepository) GetDetail(ctx context.Context, familyID, guidelineID uint) (*guidelinedomain.Detail, error) {
	row, err := r.GetByID(ctx, familyID, guidelineID)
	if err != nil {
		return nil, err
	}

	details, err := r.loadDetails(ctx, []guidelinedomain.Guideline{*row})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, familyID, guidelineID uint) (*guidelinedomain.Guideline, error) {
	var row guidelinedomain.Guideline
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, guidelineID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, guidelinedomain.ErrGuidelineNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *PostgresRepository) ListApprovals(ctx context.Context, guidelineID uint) ([]guidelinedomain.Approval, error) {
	var approvals []guidelinedomain.Approval
	if err := r.db.WithContext(ctx).
		Where("guideline_id = ?", guidelineID).
		Order("user_id asc").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *PostgresRepository) Create(ctx context.Context, g *guidelinedomain.Guideline) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *PostgresRepository) CreateApprovals(ctx context.Context, approvals []guidelinedomain.Approval) error {
	if len(approvals) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&approvals).Error
}

func (r *PostgresRepository) UpdateFields(ctx context.Context, guidelineID uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&guidelinedomain.Guideline{}).
		Where("id = ?", guidelineID).
		Updates(fields).Error
}

func (r *PostgresRepository) SetApproval(ctx context.Context, guidelineID, userID uint, approved bool, approvedAt *time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&guidelinedomain.Approval{}).
		Where("guideline_id = ? AND user_id = ?", guidelineID, userID).
		Updates(map[string]interface{}{
			"approved":    approved,
			"approved_at": approvedAt,
		})
	return result.RowsAffected > 0, result.Error
}

// loadDetails attaches approvals and member profiles to a batch of guideline
// rows with two follow-up queries instead of per-row lookups.
func (r *PostgresRepository) loadDetails(ctx context.Context, rows []guidelinedomain.Guideline) ([]guidelinedomain.Detail, error) {
	details := make([]guidelinedomain.Detail, 0, len(rows))
	if len(rows) == 0 {
		return details, nil
	}

	guidelineIDs := make([]uint, 0, len(rows))
	userIDs := make(map[uint]struct{})
	for _, row := range rows {
		guidelineIDs = append(guidelineIDs, row.ID)
		userIDs[row.ProposedByID] = struct{}{}
	}

	var approvals []guidelinedomain.Approval
	if err := r.db.WithContext(ctx).
		Where("guideline_id IN ?", guidelineIDs).
		Order("user_id asc").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	for _, approval := range approvals {
		userIDs[approval.UserID] = struct{}{}
	}

	summaries, err := r.loadSummaries(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	approvalsByGuideline := make(map[uint][]guidelinedomain.ApprovalDetail, len(rows))
	for _, approval := range approvals {
		approvalsByGuideline[approval.GuidelineID] = append(approvalsByGuideline[approval.GuidelineID], guidelinedomain.ApprovalDetail{
			Approval: approval,
			User:     summaries[approval.UserID],
		})
	}

	for _, row := range rows {
		detail := guidelinedomain.Detail{
			Guideline:  row,
			Approvals:  approvalsByGuideline[row.ID],
			ProposedBy: summaries[row.ProposedByID],
		}
		if detail.Approvals == nil {
			detail.Approvals = []guidelinedomain.ApprovalDetail{}
		}
		details = append(details, detail)
	}

	return details, nil
}

func (r *PostgresRepository) loadSummaries(ctx context.Context, userIDs map[uint]struct{}) (map[uint]*guidelinedomain.MemberSummary, error) {
	summaries := make(map[uint]*guidelinedomain.MemberSummary, len(userIDs))
	if len(userIDs) == 0 {
		return summaries, nil
	}

	ids := make([]uint, 0, len(userIDs))
	for id := range userIDs {
		ids = append(ids, id)
	}

	var profiles []userdomain.Profile
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&profiles).Error; err != nil {
		return nil, err
	}

	for _, profile := range profiles {
		summaries[profile.UserID] = &guidelinedomain.MemberSummary{
			UserID:    profile.UserID,
			FirstName: stringOrEmpty(profile.FirstName),
			LastName:  stringOrEmpty(profile.LastName),
			Email:     stringOrEmpty(profile.Email),
		}
	}

	return summaries, nil
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
