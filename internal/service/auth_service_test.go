package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fundhub/internal/domain"
	"fundhub/internal/notify"
	"fundhub/internal/security"
	"fundhub/internal/service"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	args := m.Called(ctx, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	args := m.Called(ctx, id, hashedPassword)
	return args.Error(0)
}

// fakeSender records dispatched codes and can be told to fail.
type fakeSender struct {
	codes []string
	fail  bool
}

func (f *fakeSender) SendCode(_ context.Context, _, code, _ string, _ domain.Role, _ notify.Purpose) error {
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.codes = append(f.codes, code)
	return nil
}

func newAuthService(repo *MockUserRepo, sender *fakeSender) *service.AuthService {
	tokenSvc := security.NewTokenService("secret", time.Hour)
	hasher := security.NewPasswordHasher(4) // low cost for tests
	return service.NewAuthService(repo, tokenSvc, hasher, sender, 10*time.Minute)
}

func investorInput() service.RegisterInput {
	return service.RegisterInput{
		Role:     domain.RoleInvestor,
		FullName: "Ada Example",
		Email:    "ada@example.com",
		Password: "Password1!",
	}
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockUserRepo)
		sender := &fakeSender{}
		svc := newAuthService(repo, sender)

		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(nil, domain.ErrNotFound)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "ada@example.com" && !u.IsVerified && u.OTP != nil && u.OTPExpiry != nil
		})).Return(nil)

		user, err := svc.Register(context.Background(), investorInput())
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.False(t, user.IsVerified)
		require.Len(t, sender.codes, 1)
		assert.Equal(t, *user.OTP, sender.codes[0])
		assert.NotEqual(t, "Password1!", user.HashedPassword)
	})

	t.Run("VerifiedDuplicate", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		existing := &domain.User{ID: 7, Email: "ada@example.com", Role: domain.RoleInvestor, IsVerified: true}
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(existing, nil)

		user, err := svc.Register(context.Background(), investorInput())
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Nil(t, user)
	})

	t.Run("UnverifiedOverwrite", func(t *testing.T) {
		repo := new(MockUserRepo)
		sender := &fakeSender{}
		svc := newAuthService(repo, sender)

		stale := &domain.User{ID: 7, Email: "ada@example.com", Role: domain.RoleInvestor, FullName: "Old Name"}
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(stale, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == 7 && u.FullName == "Ada Example" && u.OTP != nil
		})).Return(nil)

		user, err := svc.Register(context.Background(), investorInput())
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Len(t, sender.codes, 1)
	})

	t.Run("DeliveryFailureKeepsAccount", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{fail: true})

		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(nil, domain.ErrNotFound)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		user, err := svc.Register(context.Background(), investorInput())
		assert.ErrorIs(t, err, domain.ErrDeliveryFailure)
		// Account survives so resend can recover the flow.
		assert.NotNil(t, user)
	})

	t.Run("SameEmailOtherRoleAllowed", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		in := investorInput()
		in.Role = domain.RoleOwner
		in.StartupName = "Ada Labs"
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleOwner).Return(nil, domain.ErrNotFound)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Register(context.Background(), in)
		assert.NoError(t, err)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		in := investorInput()
		in.Email = "not-an-email"
		_, err := svc.Register(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func pendingUser(code string, expiry time.Time) *domain.User {
	return &domain.User{
		ID:        3,
		Role:      domain.RoleInvestor,
		Email:     "ada@example.com",
		OTP:       &code,
		OTPExpiry: &expiry,
	}
}

func TestVerifyOTP(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		user := pendingUser("123456", time.Now().Add(5*time.Minute))
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.IsVerified && u.OTP == nil && u.OTPExpiry == nil
		})).Return(nil)

		resp, err := svc.VerifyOTP(context.Background(), "ada@example.com", domain.RoleInvestor, "123456")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.True(t, resp.User.IsVerified)
	})

	t.Run("Expired", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		user := pendingUser("123456", time.Now().Add(-time.Minute))
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)

		_, err := svc.VerifyOTP(context.Background(), "ada@example.com", domain.RoleInvestor, "123456")
		assert.ErrorIs(t, err, domain.ErrExpiredOTP)
	})

	t.Run("Mismatch", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		user := pendingUser("123456", time.Now().Add(5*time.Minute))
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)

		_, err := svc.VerifyOTP(context.Background(), "ada@example.com", domain.RoleInvestor, "000000")
		assert.ErrorIs(t, err, domain.ErrOTPMismatch)
	})

	t.Run("Replay", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		user := &domain.User{ID: 3, Role: domain.RoleInvestor, Email: "ada@example.com", IsVerified: true}
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)

		_, err := svc.VerifyOTP(context.Background(), "ada@example.com", domain.RoleInvestor, "123456")
		assert.ErrorIs(t, err, domain.ErrAlreadyVerified)
	})

	t.Run("NoPendingCode", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		user := &domain.User{ID: 3, Role: domain.RoleInvestor, Email: "ada@example.com"}
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)

		_, err := svc.VerifyOTP(context.Background(), "ada@example.com", domain.RoleInvestor, "123456")
		assert.ErrorIs(t, err, domain.ErrNoPendingOTP)
	})
}

func TestLogin(t *testing.T) {
	hasher := security.NewPasswordHasher(4)
	hashed, _ := hasher.Hash("Password1!")

	t.Run("Success", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		user := &domain.User{ID: 3, Role: domain.RoleInvestor, Email: "ada@example.com", HashedPassword: hashed, IsVerified: true}
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)

		resp, err := svc.Login(context.Background(), "ada@example.com", domain.RoleInvestor, "Password1!")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "bearer", resp.TokenType)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		user := &domain.User{ID: 3, Role: domain.RoleInvestor, Email: "ada@example.com", HashedPassword: hashed, IsVerified: true}
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)

		_, err := svc.Login(context.Background(), "ada@example.com", domain.RoleInvestor, "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("UnknownAccountLooksLikeWrongPassword", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		repo.On("GetByEmail", mock.Anything, "ghost@example.com", domain.RoleInvestor).Return(nil, domain.ErrNotFound)

		_, err := svc.Login(context.Background(), "ghost@example.com", domain.RoleInvestor, "whatever")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Unverified", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		user := &domain.User{ID: 3, Role: domain.RoleInvestor, Email: "ada@example.com", HashedPassword: hashed}
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)

		_, err := svc.Login(context.Background(), "ada@example.com", domain.RoleInvestor, "Password1!")
		assert.ErrorIs(t, err, domain.ErrNotVerified)
	})
}

func TestPasswordReset(t *testing.T) {
	t.Run("ForgotPasswordIssuesCode", func(t *testing.T) {
		repo := new(MockUserRepo)
		sender := &fakeSender{}
		svc := newAuthService(repo, sender)

		user := &domain.User{ID: 3, Role: domain.RoleInvestor, Email: "ada@example.com", IsVerified: true}
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ResetOTP != nil && u.ResetOTPExpiry != nil
		})).Return(nil)

		err := svc.ForgotPassword(context.Background(), "ada@example.com", domain.RoleInvestor)
		require.NoError(t, err)
		assert.Len(t, sender.codes, 1)
	})

	t.Run("VerifyLeavesCodeUsableForReset", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		code := "654321"
		expiry := time.Now().Add(5 * time.Minute)
		user := &domain.User{ID: 3, Role: domain.RoleInvestor, Email: "ada@example.com", IsVerified: true, ResetOTP: &code, ResetOTPExpiry: &expiry}
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)
		repo.On("UpdatePassword", mock.Anything, int64(3), mock.Anything).Return(nil)

		err := svc.VerifyResetOTP(context.Background(), "ada@example.com", domain.RoleInvestor, code)
		require.NoError(t, err)
		// Pair is only cleared by the password change itself.
		assert.NotNil(t, user.ResetOTP)

		err = svc.ResetPassword(context.Background(), "ada@example.com", domain.RoleInvestor, code, "NewPassword1!")
		require.NoError(t, err)
		repo.AssertCalled(t, "UpdatePassword", mock.Anything, int64(3), mock.Anything)
	})

	t.Run("ResetWithWrongCode", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := newAuthService(repo, &fakeSender{})

		code := "654321"
		expiry := time.Now().Add(5 * time.Minute)
		user := &domain.User{ID: 3, Role: domain.RoleInvestor, Email: "ada@example.com", IsVerified: true, ResetOTP: &code, ResetOTPExpiry: &expiry}
		repo.On("GetByEmail", mock.Anything, "ada@example.com", domain.RoleInvestor).Return(user, nil)

		err := svc.ResetPassword(context.Background(), "ada@example.com", domain.RoleInvestor, "000000", "NewPassword1!")
		assert.ErrorIs(t, err, domain.ErrOTPMismatch)
	})
}
