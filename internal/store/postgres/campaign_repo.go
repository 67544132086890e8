package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fundhub/internal/domain"
)

type CampaignRepo struct {
	db *sql.DB
}

func NewCampaignRepo(db *sql.DB) *CampaignRepo {
	return &CampaignRepo{db: db}
}

var _ domain.CampaignRepository = (*CampaignRepo)(nil)

const campaignColumns = `id, owner_id, project_name, startup_name, owner_name, category, tagline,
	description, funding_goal, current_funding, project_stage, team_size, website_link,
	image_data, status, deadline, created_at`

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO campaigns (owner_id, project_name, startup_name, owner_name, category, tagline,
			description, funding_goal, current_funding, project_stage, team_size, website_link,
			image_data, status, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`,
		c.OwnerID, c.ProjectName, c.StartupName, c.OwnerName, c.Category, c.Tagline,
		c.Description, c.FundingGoal, c.CurrentFunding, c.ProjectStage, c.TeamSize, c.WebsiteLink,
		c.ImageData, c.Status, c.Deadline,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) GetByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	return scanCampaign(row)
}

func (r *CampaignRepo) List(ctx context.Context, f domain.CampaignFilter) ([]*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE status = $1`
	args := []any{domain.CampaignActive}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query += fmt.Sprintf(` AND (project_name ILIKE $%d OR owner_name ILIKE $%d OR startup_name ILIKE $%d)`,
			len(args)+1, len(args)+2, len(args)+3)
		args = append(args, pattern, pattern, pattern)
	}
	if f.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, len(args)+1)
		args = append(args, f.Category)
	}
	if f.Stage != "" {
		query += fmt.Sprintf(` AND project_stage = $%d`, len(args)+1)
		args = append(args, f.Stage)
	}
	if f.MinGoal != nil {
		query += fmt.Sprintf(` AND funding_goal >= $%d`, len(args)+1)
		args = append(args, *f.MinGoal)
	}
	if f.MaxGoal != nil {
		query += fmt.Sprintf(` AND funding_goal <= $%d`, len(args)+1)
		args = append(args, *f.MaxGoal)
	}

	limit := f.Limit
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	return r.queryCampaigns(ctx, query, args...)
}

func (r *CampaignRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Campaign, error) {
	return r.queryCampaigns(ctx, `
		SELECT `+campaignColumns+` FROM campaigns
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
}

func (r *CampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET
			project_name = $1, category = $2, tagline = $3, description = $4,
			funding_goal = $5, current_funding = $6, website_link = $7, image_data = $8,
			status = $9, deadline = $10
		WHERE id = $11
	`,
		c.ProjectName, c.Category, c.Tagline, c.Description,
		c.FundingGoal, c.CurrentFunding, c.WebsiteLink, c.ImageData,
		c.Status, c.Deadline,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
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

func (r *CampaignRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
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

func (r *CampaignRepo) OwnerStats(ctx context.Context, ownerID int64) (*domain.OwnerStats, error) {
	stats := &domain.OwnerStats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(current_funding), 0)
		FROM campaigns
		WHERE owner_id = $2
	`, domain.CampaignActive, ownerID).Scan(&stats.TotalCampaigns, &stats.ActiveCampaigns, &stats.TotalFunding)
	if err != nil {
		return nil, fmt.Errorf("owner stats: %w", err)
	}
	return stats, nil
}

func (r *CampaignRepo) queryCampaigns(ctx context.Context, query string, args ...any) ([]*domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var res []*domain.Campaign
	for rows.Next() {
		c := &domain.Campaign{}
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.ProjectName, &c.StartupName, &c.OwnerName, &c.Category, &c.Tagline,
			&c.Description, &c.FundingGoal, &c.CurrentFunding, &c.ProjectStage, &c.TeamSize, &c.WebsiteLink,
			&c.ImageData, &c.Status, &c.Deadline, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func scanCampaign(row *sql.Row) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.ProjectName, &c.StartupName, &c.OwnerName, &c.Category, &c.Tagline,
		&c.Description, &c.FundingGoal, &c.CurrentFunding, &c.ProjectStage, &c.TeamSize, &c.WebsiteLink,
		&c.ImageData, &c.Status, &c.Deadline, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	return c, nil
}
