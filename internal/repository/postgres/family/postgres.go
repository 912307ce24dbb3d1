package family

import (
	"context"
	"errors"

	familydomain "famconomy-go/internal/domain/family"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(familydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetFamilyByUser(ctx context.Context, userID uint) (*familydomain.Family, error) {
	var family familydomain.Family
	if err := r.db.WithContext(ctx).
		Joins("JOIN family_members ON family_members.family_id = families.id").
		Where("family_members.user_id = ?", userID).
		First(&family).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrFamilyNotFound
		}
		return nil, err
	}
	return &family, nil
}

func (r *PostgresRepository) GetFamilyByCode(ctx context.Context, code string) (*familydomain.Family, error) {
	var family familydomain.Family
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&family).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrFamilyCodeNotFound
		}
		return nil, err
	}
	return &family, nil
}

func (r *PostgresRepository) GetMemberByUser(ctx context.Context, userID uint) (*familydomain.FamilyMember, error) {
	var member familydomain.FamilyMember
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, familyID, userID uint) (*familydomain.FamilyMember, error) {
	var member familydomain.FamilyMember
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, familyID uint) ([]familydomain.FamilyMember, error) {
	var members []familydomain.FamilyMember
	if err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("joined_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) ListMembersWithProfiles(ctx context.Context, familyID uint) ([]familydomain.FamilyMemberProfile, error) {
	var rows []familydomain.FamilyMemberProfile
	if err := r.db.WithContext(ctx).
		Table("family_members").
		Select(`family_members.user_id,
			family_members.role,
			family_members.joined_at,
			coalesce(user_profiles.first_name, '') as first_name,
			coalesce(user_profiles.last_name, '') as last_name,
			coalesce(user_profiles.email, '') as email,
			coalesce(user_profiles.avatar_url, '') as avatar_url`).
		Joins("LEFT JOIN user_profiles ON user_profiles.user_id = family_members.user_id").
		Where("family_members.family_id = ?", familyID).
		Order("family_members.joined_at asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) CreateFamily(ctx context.Context, family *familydomain.Family) error {
	return r.db.WithContext(ctx).Create(family).Error
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *familydomain.FamilyMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *PostgresRepository) UpdateFamilyName(ctx context.Context, familyID uint, name string) error {
	return r.db.WithContext(ctx).
		Model(&familydomain.Family{}).
		Where("id = ?", familyID).
		Update("name", name).Error
}

func (r *PostgresRepository) DeleteFamily(ctx context.Context, familyID uint) error {
	return r.db.WithContext(ctx).
		Where("id = ?", familyID).
		Delete(&familydomain.Family{}).Error
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, familyID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Delete(&familydomain.FamilyMember{}).Error
}

func (r *PostgresRepository) DeleteMembersByFamily(ctx context.Context, familyID uint) error {
	return r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Delete(&familydomain.FamilyMember{}).Error
}

func (r *PostgresRepository) CountMembers(ctx context.Context, familyID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&familydomain.FamilyMember{}).
		Where("family_id = ?", familyID).
		Count(&count).Error
	return count, err
}

func (r *PostgresRepository) IsUserInFamily(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&familydomain.FamilyMember{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&familydomain.Family{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}
