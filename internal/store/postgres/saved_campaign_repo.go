package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fundhub/internal/domain"
)

type SavedCampaignRepo struct {
	db *sql.DB
}

func NewSavedCampaignRepo(db *sql.DB) *SavedCampaignRepo {
	return &SavedCampaignRepo{db: db}
}

var _ domain.SavedCampaignRepository = (*SavedCampaignRepo)(nil)

func (r *SavedCampaignRepo) Save(ctx context.Context, investorID, campaignID int64, savedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO saved_campaigns (investor_id, campaign_id, saved_at)
		VALUES ($1, $2, $3)
	`, investorID, campaignID, savedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("save campaign: %w", err)
	}
	return nil
}

func (r *SavedCampaignRepo) Unsave(ctx context.Context, investorID, campaignID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM saved_campaigns WHERE investor_id = $1 AND campaign_id = $2
	`, investorID, campaignID)
	if err != nil {
		return fmt.Errorf("unsave campaign: %w", err)
	}
	return nil
}

func (r *SavedCampaignRepo) ListForInvestor(ctx context.Context, investorID int64) ([]*domain.SavedCampaign, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT investor_id, campaign_id, saved_at
		FROM saved_campaigns
		WHERE investor_id = $1
		ORDER BY saved_at DESC
	`, investorID)
	if err != nil {
		return nil, fmt.Errorf("list saved campaigns: %w", err)
	}
	defer rows.Close()

	var res []*domain.SavedCampaign
	for rows.Next() {
		sc := &domain.SavedCampaign{}
		if err := rows.Scan(&sc.InvestorID, &sc.CampaignID, &sc.SavedAt); err != nil {
			return nil, fmt.Errorf("scan saved campaign: %w", err)
		}
		res = append(res, sc)
	}
	return res, rows.Err()
}

func (r *SavedCampaignRepo) IsSaved(ctx context.Context, investorID, campaignID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM saved_campaigns WHERE investor_id = $1 AND campaign_id = $2
	`, investorID, campaignID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check saved: %w", err)
	}
	return true, nil
}
