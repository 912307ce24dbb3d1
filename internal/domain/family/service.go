package family

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	familyCodeLength   = 6
	familyCodeAttempts = 10

	defaultCacheTTL = time.Minute
)

type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
}

func NewService(repo Repository, cache Cache, cacheTTL time.Duration) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &Service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *Service) GetFamilyByUser(ctx context.Context, userID uint) (*Family, error) {
	if cached, ok := s.cache.GetByUserID(userID); ok {
		return cached, nil
	}

	family, err := s.repo.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.SetByUserID(userID, family, s.cacheTTL)
	return family, nil
}

// IsMember reports whether the user has a membership row in the family. Every
// family-scoped operation checks this before doing anything else.
func (s *Service) IsMember(ctx context.Context, familyID, userID uint) (bool, error) {
	_, err := s.repo.GetMember(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListMemberIDs returns the user IDs of the family's current members.
func (s *Service) ListMemberIDs(ctx context.Context, familyID uint) ([]uint, error) {
	members, err := s.repo.ListMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.UserID)
	}
	return ids, nil
}

func (s *Service) CreateFamily(ctx context.Context, userID uint, name string) (*Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	var result Family
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		inFamily, err := tx.IsUserInFamily(ctx, userID)
		if err != nil {
			return err
		}
		if inFamily {
			return ErrAlreadyInFamily
		}

		code, err := generateUniqueCode(ctx, tx)
		if err != nil {
			return err
		}

		family := Family{
			Name:    name,
			Code:    code,
			OwnerID: userID,
		}
		if err := tx.CreateFamily(ctx, &family); err != nil {
			return err
		}

		member := FamilyMember{
			FamilyID: family.ID,
			UserID:   userID,
			Role:     RoleOwner,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = family
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.DeleteByUserID(userID)
	return &result, nil
}

func (s *Service) JoinFamily(ctx context.Context, userID uint, code, role string) (*Family, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	if role == "" {
		role = RoleParent
	}
	if !validRole(role) {
		return nil, ErrInvalidRole
	}

	var result Family
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		inFamily, err := tx.IsUserInFamily(ctx, userID)
		if err != nil {
			return err
		}
		if inFamily {
			return ErrAlreadyInFamily
		}

		family, err := tx.GetFamilyByCode(ctx, code)
		if err != nil {
			return err
		}

		member := FamilyMember{
			FamilyID: family.ID,
			UserID:   userID,
			Role:     role,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = *family
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.DeleteByUserID(userID)
	return &result, nil
}

func (s *Service) LeaveFamily(ctx context.Context, userID uint) error {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetMemberByUser(ctx, userID)
		if err != nil {
			return err
		}

		if member.Role == RoleOwner {
			count, err := tx.CountMembers(ctx, member.FamilyID)
			if err != nil {
				return err
			}
			if count > 1 {
				return ErrOwnerMustTransfer
			}

			if err := tx.DeleteMembersByFamily(ctx, member.FamilyID); err != nil {
				return err
			}
			return tx.DeleteFamily(ctx, member.FamilyID)
		}

		return tx.DeleteMember(ctx, member.FamilyID, userID)
	})
	if err != nil {
		return err
	}

	s.cache.DeleteByUserID(userID)
	return nil
}

func (s *Service) UpdateFamily(ctx context.Context, userID uint, name string) (*Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	family, err := s.repo.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFamilyName(ctx, family.ID, name); err != nil {
		return nil, err
	}

	family.Name = name
	s.cache.Clear()
	return family, nil
}

func (s *Service) ListMembers(ctx context.Context, userID uint) ([]FamilyMemberProfile, error) {
	family, err := s.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListMembersWithProfiles(ctx, family.ID)
}

func (s *Service) RemoveMember(ctx context.Context, actingUserID, targetUserID uint) error {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		acting, err := tx.GetMemberByUser(ctx, actingUserID)
		if err != nil {
			return err
		}
		if acting.Role != RoleOwner {
			return ErrNotOwner
		}

		target, err := tx.GetMember(ctx, acting.FamilyID, targetUserID)
		if err != nil {
			return err
		}
		if target.Role == RoleOwner {
			return ErrCannotRemoveOwner
		}

		return tx.DeleteMember(ctx, acting.FamilyID, targetUserID)
	})
	if err != nil {
		return err
	}

	s.cache.DeleteByUserID(targetUserID)
	return nil
}

func generateUniqueCode(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < familyCodeAttempts; i++ {
		code, err := generateCode(familyCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := repo.IsCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func generateCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}
