package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fundhub/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

const userColumns = `id, role, full_name, email, hashed_password, phone, profile_photo,
	investment_budget, preferred_categories, investor_bio,
	startup_name, project_category, project_stage, team_size, website_link, startup_description,
	is_verified, otp, otp_expiry, reset_otp, reset_otp_expiry, created_at`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (role, full_name, email, hashed_password, phone, profile_photo,
			investment_budget, preferred_categories, investor_bio,
			startup_name, project_category, project_stage, team_size, website_link, startup_description,
			is_verified, otp, otp_expiry, reset_otp, reset_otp_expiry, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`,
		u.Role, u.FullName, u.Email, u.HashedPassword, u.Phone, u.ProfilePhoto,
		u.InvestmentBudget, joinCategories(u.PreferredCategories), u.InvestorBio,
		u.StartupName, u.ProjectCategory, u.ProjectStage, u.TeamSize, u.WebsiteLink, u.StartupDescription,
		u.IsVerified, u.OTP, u.OTPExpiry, u.ResetOTP, u.ResetOTPExpiry,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	u.ID = id
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			full_name = ?, hashed_password = ?, phone = ?, profile_photo = ?,
			investment_budget = ?, preferred_categories = ?, investor_bio = ?,
			startup_name = ?, project_category = ?, project_stage = ?, team_size = ?,
			website_link = ?, startup_description = ?,
			is_verified = ?, otp = ?, otp_expiry = ?, reset_otp = ?, reset_otp_expiry = ?
		WHERE id = ?
	`,
		u.FullName, u.HashedPassword, u.Phone, u.ProfilePhoto,
		u.InvestmentBudget, joinCategories(u.PreferredCategories), u.InvestorBio,
		u.StartupName, u.ProjectCategory, u.ProjectStage, u.TeamSize,
		u.WebsiteLink, u.StartupDescription,
		u.IsVerified, u.OTP, u.OTPExpiry, u.ResetOTP, u.ResetOTPExpiry,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? AND role = ?`, email, role)
	return scanUser(row)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET hashed_password = ?, reset_otp = NULL, reset_otp_expiry = NULL
		WHERE id = ?
	`, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	var categories string
	err := row.Scan(
		&u.ID, &u.Role, &u.FullName, &u.Email, &u.HashedPassword, &u.Phone, &u.ProfilePhoto,
		&u.InvestmentBudget, &categories, &u.InvestorBio,
		&u.StartupName, &u.ProjectCategory, &u.ProjectStage, &u.TeamSize, &u.WebsiteLink, &u.StartupDescription,
		&u.IsVerified, &u.OTP, &u.OTPExpiry, &u.ResetOTP, &u.ResetOTPExpiry, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.PreferredCategories = splitCategories(categories)
	return u, nil
}

func joinCategories(cats []string) string {
	return strings.Join(cats, ",")
}

func splitCategories(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// isUniqueViolation matches the driver's unique-constraint error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
