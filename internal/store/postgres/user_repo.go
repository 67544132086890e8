package postgres

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
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (role, full_name, email, hashed_password, phone, profile_photo,
			investment_budget, preferred_categories, investor_bio,
			startup_name, project_category, project_stage, team_size, website_link, startup_description,
			is_verified, otp, otp_expiry, reset_otp, reset_otp_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at
	`,
		u.Role, u.FullName, u.Email, u.HashedPassword, u.Phone, u.ProfilePhoto,
		u.InvestmentBudget, joinCategories(u.PreferredCategories), u.InvestorBio,
		u.StartupName, u.ProjectCategory, u.ProjectStage, u.TeamSize, u.WebsiteLink, u.StartupDescription,
		u.IsVerified, u.OTP, u.OTPExpiry, u.ResetOTP, u.ResetOTPExpiry,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			full_name = $1, hashed_password = $2, phone = $3, profile_photo = $4,
			investment_budget = $5, preferred_categories = $6, investor_bio = $7,
			startup_name = $8, project_category = $9, project_stage = $10, team_size = $11,
			website_link = $12, startup_description = $13,
			is_verified = $14, otp = $15, otp_expiry = $16, reset_otp = $17, reset_otp_expiry = $18
		WHERE id = $19
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
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND role = $2`, email, role)
	return scanUser(row)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET hashed_password = $1, reset_otp = NULL, reset_otp_expiry = NULL
		WHERE id = $2
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
