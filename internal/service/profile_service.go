package service

import (
	"context"
	"fmt"
	"strings"

	"fundhub/internal/domain"
	"fundhub/internal/security"
)

// ProfileService exposes account self-management: reading and editing the
// profile, changing the password and updating the photo.
type ProfileService struct {
	users domain.UserRepository
	hash  *security.PasswordHasher
}

func NewProfileService(users domain.UserRepository, hash *security.PasswordHasher) *ProfileService {
	return &ProfileService{users: users, hash: hash}
}

// ProfileUpdateInput carries the editable profile fields. Email, role and
// verification state are immutable through this path.
type ProfileUpdateInput struct {
	FullName *string
	Phone    *string

	InvestmentBudget    *string
	PreferredCategories []string
	InvestorBio         *string

	StartupName        *string
	ProjectCategory    *string
	ProjectStage       *string
	TeamSize           *int
	WebsiteLink        *string
	StartupDescription *string
}

func (s *ProfileService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID int64, in ProfileUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FullName != nil {
		if *in.FullName == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", domain.ErrValidation)
		}
		user.FullName = *in.FullName
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.InvestmentBudget != nil {
		user.InvestmentBudget = *in.InvestmentBudget
	}
	if in.PreferredCategories != nil {
		user.PreferredCategories = in.PreferredCategories
	}
	if in.InvestorBio != nil {
		user.InvestorBio = *in.InvestorBio
	}
	if in.StartupName != nil {
		user.StartupName = *in.StartupName
	}
	if in.ProjectCategory != nil {
		user.ProjectCategory = *in.ProjectCategory
	}
	if in.ProjectStage != nil {
		user.ProjectStage = *in.ProjectStage
	}
	if in.TeamSize != nil {
		user.TeamSize = *in.TeamSize
	}
	if in.WebsiteLink != nil {
		user.WebsiteLink = *in.WebsiteLink
	}
	if in.StartupDescription != nil {
		user.StartupDescription = *in.StartupDescription
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *ProfileService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hash.Verify(current, user.HashedPassword); err != nil {
		return domain.ErrInvalidCredentials
	}

	hashed, err := s.hash.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hashed)
}

// UpdatePhoto stores a new profile photo as a data URI.
func (s *ProfileService) UpdatePhoto(ctx context.Context, userID int64, photo string) (*domain.User, error) {
	if photo != "" && !strings.HasPrefix(photo, "data:image/") {
		return nil, fmt.Errorf("%w: photo must be a data:image/ URI", domain.ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfilePhoto = photo
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
