package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fundhub/internal/domain"
)

// CampaignService manages fundraising campaigns and investors' bookmarks.
type CampaignService struct {
	users     domain.UserRepository
	campaigns domain.CampaignRepository
	saved     domain.SavedCampaignRepository
}

func NewCampaignService(
	users domain.UserRepository,
	campaigns domain.CampaignRepository,
	saved domain.SavedCampaignRepository,
) *CampaignService {
	return &CampaignService{
		users:     users,
		campaigns: campaigns,
		saved:     saved,
	}
}

const defaultCampaignDuration = 90 * 24 * time.Hour

type CampaignCreateInput struct {
	ProjectName string
	Category    string
	Tagline     string
	Description string
	FundingGoal float64
	ImageData   string
	Deadline    *time.Time
}

type CampaignUpdateInput struct {
	ProjectName *string
	Category    *string
	Tagline     *string
	Description *string
	FundingGoal *float64
	WebsiteLink *string
	ImageData   *string
	Status      *string
	Deadline    *time.Time
}

// SavedCampaignResponse joins a bookmark with the campaign it points at.
type SavedCampaignResponse struct {
	Campaign *domain.Campaign `json:"campaign"`
	SavedAt  time.Time        `json:"saved_at"`
}

// Create opens a campaign for the given owner. Owner profile fields are
// snapshotted onto the campaign so later profile edits do not rewrite
// published listings.
func (s *CampaignService) Create(ctx context.Context, ownerID int64, in CampaignCreateInput) (*domain.Campaign, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner.Role != domain.RoleOwner {
		return nil, fmt.Errorf("%w: only startup owners can create campaigns", domain.ErrValidation)
	}

	if in.ProjectName == "" || in.Category == "" || in.Description == "" {
		return nil, fmt.Errorf("%w: project name, category and description are required", domain.ErrValidation)
	}
	if in.FundingGoal <= 0 {
		return nil, fmt.Errorf("%w: funding goal must be positive", domain.ErrValidation)
	}
	if in.ImageData != "" && !strings.HasPrefix(in.ImageData, "data:image/") {
		return nil, fmt.Errorf("%w: image must be a data:image/ URI", domain.ErrValidation)
	}

	deadline := time.Now().UTC().Add(defaultCampaignDuration)
	if in.Deadline != nil {
		if in.Deadline.Before(time.Now()) {
			return nil, fmt.Errorf("%w: deadline must be in the future", domain.ErrValidation)
		}
		deadline = in.Deadline.UTC()
	}

	campaign := &domain.Campaign{
		OwnerID:      ownerID,
		ProjectName:  in.ProjectName,
		StartupName:  owner.StartupName,
		OwnerName:    owner.FullName,
		Category:     in.Category,
		Tagline:      in.Tagline,
		Description:  in.Description,
		FundingGoal:  in.FundingGoal,
		ProjectStage: owner.ProjectStage,
		TeamSize:     owner.TeamSize,
		WebsiteLink:  owner.WebsiteLink,
		ImageData:    in.ImageData,
		Status:       domain.CampaignActive,
		Deadline:     deadline,
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// List returns active campaigns matching the filter, newest first.
func (s *CampaignService) List(ctx context.Context, f domain.CampaignFilter) ([]*domain.Campaign, error) {
	return s.campaigns.List(ctx, f)
}

func (s *CampaignService) Get(ctx context.Context, id int64) (*domain.Campaign, error) {
	return s.campaigns.GetByID(ctx, id)
}

func (s *CampaignService) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Campaign, error) {
	return s.campaigns.ListByOwner(ctx, ownerID)
}

// Update edits an owner's own campaign. Snapshot fields stay frozen.
func (s *CampaignService) Update(ctx context.Context, ownerID, campaignID int64, in CampaignUpdateInput) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: campaign does not belong to this owner", domain.ErrValidation)
	}

	if in.ProjectName != nil {
		campaign.ProjectName = *in.ProjectName
	}
	if in.Category != nil {
		campaign.Category = *in.Category
	}
	if in.Tagline != nil {
		campaign.Tagline = *in.Tagline
	}
	if in.Description != nil {
		campaign.Description = *in.Description
	}
	if in.FundingGoal != nil {
		if *in.FundingGoal <= 0 {
			return nil, fmt.Errorf("%w: funding goal must be positive", domain.ErrValidation)
		}
		campaign.FundingGoal = *in.FundingGoal
	}
	if in.WebsiteLink != nil {
		campaign.WebsiteLink = *in.WebsiteLink
	}
	if in.ImageData != nil {
		if *in.ImageData != "" && !strings.HasPrefix(*in.ImageData, "data:image/") {
			return nil, fmt.Errorf("%w: image must be a data:image/ URI", domain.ErrValidation)
		}
		campaign.ImageData = *in.ImageData
	}
	if in.Status != nil {
		switch *in.Status {
		case domain.CampaignActive, domain.CampaignCompleted, domain.CampaignClosed:
			campaign.Status = *in.Status
		default:
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *in.Status)
		}
	}
	if in.Deadline != nil {
		campaign.Deadline = in.Deadline.UTC()
	}

	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *CampaignService) Delete(ctx context.Context, ownerID, campaignID int64) error {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.OwnerID != ownerID {
		return fmt.Errorf("%w: campaign does not belong to this owner", domain.ErrValidation)
	}
	return s.campaigns.Delete(ctx, campaignID)
}

func (s *CampaignService) OwnerStats(ctx context.Context, ownerID int64) (*domain.OwnerStats, error) {
	return s.campaigns.OwnerStats(ctx, ownerID)
}

// Save bookmarks a campaign for an investor. Saving twice is a conflict.
func (s *CampaignService) Save(ctx context.Context, investorID, campaignID int64) error {
	if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
		return err
	}
	return s.saved.Save(ctx, investorID, campaignID, time.Now().UTC())
}

func (s *CampaignService) Unsave(ctx context.Context, investorID, campaignID int64) error {
	return s.saved.Unsave(ctx, investorID, campaignID)
}

// ListSaved returns the investor's bookmarks joined with their campaigns.
// Bookmarks whose campaign has been deleted are skipped.
func (s *CampaignService) ListSaved(ctx context.Context, investorID int64) ([]*SavedCampaignResponse, error) {
	bookmarks, err := s.saved.ListForInvestor(ctx, investorID)
	if err != nil {
		return nil, err
	}

	res := make([]*SavedCampaignResponse, 0, len(bookmarks))
	for _, b := range bookmarks {
		campaign, err := s.campaigns.GetByID(ctx, b.CampaignID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, &SavedCampaignResponse{Campaign: campaign, SavedAt: b.SavedAt})
	}
	return res, nil
}

func (s *CampaignService) IsSaved(ctx context.Context, investorID, campaignID int64) (bool, error) {
	return s.saved.IsSaved(ctx, investorID, campaignID)
}
