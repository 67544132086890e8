package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"fundhub/internal/domain"
	"fundhub/internal/notify"
	"fundhub/internal/otp"
	"fundhub/internal/security"
)

// AuthService handles registration, email verification, login and the
// password-reset flow for both account roles.
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenService
	hash   *security.PasswordHasher
	sender notify.Sender
	otpTTL time.Duration

	now func() time.Time
}

func NewAuthService(
	users domain.UserRepository,
	tokens *security.TokenService,
	hash *security.PasswordHasher,
	sender notify.Sender,
	otpTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   hash,
		sender: sender,
		otpTTL: otpTTL,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Role     domain.Role
	FullName string
	Email    string
	Password string
	Phone    string

	// Investor profile
	InvestmentBudget    string
	PreferredCategories []string
	InvestorBio         string

	// Startup owner profile
	StartupName        string
	ProjectCategory    string
	ProjectStage       string
	TeamSize           int
	WebsiteLink        string
	StartupDescription string
}

type TokenResponse struct {
	AccessToken string       `json:"token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in RegisterInput) validate() error {
	if !in.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, in.Role)
	}
	if in.FullName == "" {
		return fmt.Errorf("%w: full name is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}
	if in.Role == domain.RoleOwner && in.StartupName == "" {
		return fmt.Errorf("%w: startup name is required", domain.ErrValidation)
	}
	return nil
}

// Register creates an unverified account and dispatches a verification code.
// Re-registering an address that never finished verification overwrites the
// stale record; a verified duplicate is a conflict. A delivery failure is
// reported but does not roll the account back, so resend still works.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := in.validate(); err != nil {
		return nil, err
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := otp.Generate()
	if err != nil {
		return nil, err
	}
	expiry := otp.ExpiryFrom(s.now(), s.otpTTL)

	existing, err := s.users.GetByEmail(ctx, in.Email, in.Role)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	var user *domain.User
	switch {
	case existing != nil && existing.IsVerified:
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	case existing != nil:
		user = existing
		applyRegisterInput(user, in, hashed)
		user.OTP = &code
		user.OTPExpiry = &expiry
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("overwrite unverified account: %w", err)
		}
	default:
		user = &domain.User{}
		applyRegisterInput(user, in, hashed)
		user.OTP = &code
		user.OTPExpiry = &expiry
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	if err := s.sender.SendCode(ctx, user.Email, code, user.FullName, user.Role, notify.PurposeRegister); err != nil {
		return user, fmt.Errorf("%w: %v", domain.ErrDeliveryFailure, err)
	}
	return user, nil
}

func applyRegisterInput(u *domain.User, in RegisterInput, hashed string) {
	u.Role = in.Role
	u.FullName = in.FullName
	u.Email = in.Email
	u.HashedPassword = hashed
	u.Phone = in.Phone
	u.InvestmentBudget = in.InvestmentBudget
	u.PreferredCategories = in.PreferredCategories
	u.InvestorBio = in.InvestorBio
	u.StartupName = in.StartupName
	u.ProjectCategory = in.ProjectCategory
	u.ProjectStage = in.ProjectStage
	u.TeamSize = in.TeamSize
	u.WebsiteLink = in.WebsiteLink
	u.StartupDescription = in.StartupDescription
	u.IsVerified = false
}

// VerifyOTP completes registration. On success the code pair is cleared, the
// account flips to verified and a session token is issued.
func (s *AuthService) VerifyOTP(ctx context.Context, email string, role domain.Role, code string) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email), role)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, domain.ErrAlreadyVerified
	}
	if user.OTP == nil || user.OTPExpiry == nil {
		return nil, domain.ErrNoPendingOTP
	}
	if otp.Expired(s.now(), *user.OTPExpiry) {
		return nil, domain.ErrExpiredOTP
	}
	if *user.OTP != code {
		return nil, domain.ErrOTPMismatch
	}

	user.ClearOTP()
	user.IsVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}

	return s.tokenFor(user)
}

// ResendOTP issues a fresh registration code for an unverified account.
func (s *AuthService) ResendOTP(ctx context.Context, email string, role domain.Role) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email), role)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return domain.ErrAlreadyVerified
	}

	code, err := otp.Generate()
	if err != nil {
		return err
	}
	expiry := otp.ExpiryFrom(s.now(), s.otpTTL)
	user.OTP = &code
	user.OTPExpiry = &expiry
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("store new code: %w", err)
	}

	if err := s.sender.SendCode(ctx, user.Email, code, user.FullName, user.Role, notify.PurposeRegister); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailure, err)
	}
	return nil
}

// Login authenticates against the role-scoped account. A missing account and
// a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email string, role domain.Role, password string) (*TokenResponse, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email), role)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsVerified {
		return nil, domain.ErrNotVerified
	}
	if err := s.hash.Verify(password, user.HashedPassword); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.tokenFor(user)
}

// ForgotPassword starts the reset flow by mailing a reset code. Only verified
// accounts can reset; an unverified one should finish registration instead.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, role domain.Role) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email), role)
	if err != nil {
		return err
	}
	if !user.IsVerified {
		return domain.ErrNotVerified
	}

	code, err := otp.Generate()
	if err != nil {
		return err
	}
	expiry := otp.ExpiryFrom(s.now(), s.otpTTL)
	user.ResetOTP = &code
	user.ResetOTPExpiry = &expiry
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	if err := s.sender.SendCode(ctx, user.Email, code, user.FullName, user.Role, notify.PurposeReset); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailure, err)
	}
	return nil
}

// VerifyResetOTP checks a reset code without consuming it, so the password
// change step can re-verify the same code.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email string, role domain.Role, code string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email), role)
	if err != nil {
		return err
	}
	return s.checkResetCode(user, code)
}

// ResetPassword re-verifies the reset code and stores the new password. The
// repository clears the reset pair in the same statement.
func (s *AuthService) ResetPassword(ctx context.Context, email string, role domain.Role, code, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email), role)
	if err != nil {
		return err
	}
	if err := s.checkResetCode(user, code); err != nil {
		return err
	}

	hashed, err := s.hash.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hashed)
}

func (s *AuthService) checkResetCode(user *domain.User, code string) error {
	if user.ResetOTP == nil || user.ResetOTPExpiry == nil {
		return domain.ErrNoPendingOTP
	}
	if otp.Expired(s.now(), *user.ResetOTPExpiry) {
		return domain.ErrExpiredOTP
	}
	if *user.ResetOTP != code {
		return domain.ErrOTPMismatch
	}
	return nil
}

func (s *AuthService) tokenFor(user *domain.User) (*TokenResponse, error) {
	token, err := s.tokens.CreateForUser(user)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}
