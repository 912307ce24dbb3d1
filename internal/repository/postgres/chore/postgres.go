package chore

import (
	"context"
	"errors"

	choredomain "famconomy-go/internal/domain/chore"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListChores(ctx context.Context, familyID uint, filter choredomain.ListFilter) ([]choredomain.Chore, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&choredomain.Chore{}).
		Where("family_id = ?", familyID)
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var chores []choredomain.Chore
	if err := query.Order("created_at desc, id desc").Find(&chores).Error; err != nil {
		return nil, 0, err
	}
	return chores, total, nil
}

func (r *PostgresRepository) GetChoreByID(ctx context.Context, familyID, choreID uint) (*choredomain.Chore, error) {
	var chore choredomain.Chore
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND id = ?", familyID, choreID).
		First(&chore).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, choredomain.ErrChoreNotFound
		}
		return nil, err
	}
	return &chore, nil
}

func (r *PostgresRepository) CreateChore(ctx context.Context, chore *choredomain.Chore) error {
	return r.db.WithContext(ctx).Create(chore).Error
}

func (r *PostgresRepository) UpdateChore(ctx context.Context, chore *choredomain.Chore) error {
	return r.db.WithContext(ctx).Save(chore).Error
}

func (r *PostgresRepository) DeleteChore(ctx context.Context, familyID, choreID uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("family_id = ? AND id = ?", familyID, choreID).
			Delete(&choredomain.Chore{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("chore_id = ?", choreID).
			Delete(&choredomain.Completion{}).Error
	})
	return deleted, err
}

func (r *PostgresRepository) ListCompletionsByChoreIDs(ctx context.Context, choreIDs []uint) ([]choredomain.Completion, error) {
	if len(choreIDs) == 0 {
		return []choredomain.Completion{}, nil
	}

	var completions []choredomain.Completion
	if err := r.db.WithContext(ctx).
		Where("chore_id IN ?", choreIDs).
		Order("completed_at desc, id desc").
		Find(&completions).Error; err != nil {
		return nil, err
	}
	return completions, nil
}

func (r *PostgresRepository) CreateCompletion(ctx context.Context, completion *choredomain.Completion) error {
	return r.db.WithContext(ctx).Create(completion).Error
}
