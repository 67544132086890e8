package sqlite

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
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (owner_id, project_name, startup_name, owner_name, category, tagline,
			description, funding_goal, current_funding, project_stage, team_size, website_link,
			image_data, status, deadline, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`,
		c.OwnerID, c.ProjectName, c.StartupName, c.OwnerName, c.Category, c.Tagline,
		c.Description, c.FundingGoal, c.CurrentFunding, c.ProjectStage, c.TeamSize, c.WebsiteLink,
		c.ImageData, c.Status, c.Deadline,
	)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	return nil
}

func (r *CampaignRepo) GetByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	return scanCampaign(row)
}

func (r *CampaignRepo) List(ctx context.Context, f domain.CampaignFilter) ([]*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE status = ?`
	args := []any{domain.CampaignActive}

	if f.Search != "" {
		query += ` AND (project_name LIKE ? OR owner_name LIKE ? OR startup_name LIKE ?)`
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Stage != "" {
		query += ` AND project_stage = ?`
		args = append(args, f.Stage)
	}
	if f.MinGoal != nil {
		query += ` AND funding_goal >= ?`
		args = append(args, *f.MinGoal)
	}
	if f.MaxGoal != nil {
		query += ` AND funding_goal <= ?`
		args = append(args, *f.MaxGoal)
	}

	limit := f.Limit
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	return r.queryCampaigns(ctx, query, args...)
}

func (r *CampaignRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Campaign, error) {
	return r.queryCampaigns(ctx, `
		SELECT `+campaignColumns+` FROM campaigns
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`, ownerID)
}

func (r *CampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET
			project_name = ?, category = ?, tagline = ?, description = ?,
			funding_goal = ?, current_funding = ?, website_link = ?, image_data = ?,
			status = ?, deadline = ?
		WHERE id = ?
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
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
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(current_funding), 0)
		FROM campaigns
		WHERE owner_id = ?
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
