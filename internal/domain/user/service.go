package user

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) UpsertProfile(ctx context.Context, userID uint, firstName, lastName, email, avatarURL string) error {
	if userID == 0 {
		return fmt.Errorf("user id is required")
	}

	profile := Profile{UserID: userID}
	if firstName != "" {
		profile.FirstName = &firstName
	}
	if lastName != "" {
		profile.LastName = &lastName
	}
	if email != "" {
		profile.Email = &email
	}
	if avatarURL != "" {
		profile.AvatarURL = &avatarURL
	}

	return s.repo.UpsertProfile(ctx, &profile)
}

func (s *Service) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}
