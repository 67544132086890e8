package domain

import "time"

// Role discriminates the two kinds of platform accounts.
type Role string

const (
	RoleInvestor Role = "investor"
	RoleOwner    Role = "startup_owner"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleInvestor || r == RoleOwner
}

// Other returns the counterpart role in a conversation.
func (r Role) Other() Role {
	if r == RoleInvestor {
		return RoleOwner
	}
	return RoleInvestor
}

// Campaign lifecycle statuses.
const (
	CampaignActive    = "active"
	CampaignCompleted = "completed"
	CampaignClosed    = "closed"
)

// User is a platform account. Investors and startup owners share one record
// with a role discriminant; fields belonging to the other role stay empty.
type User struct {
	ID             int64  `db:"id" json:"id"`
	Role           Role   `db:"role" json:"role"`
	FullName       string `db:"full_name" json:"full_name"`
	Email          string `db:"email" json:"email"`
	HashedPassword string `db:"hashed_password" json:"-"`
	Phone          string `db:"phone" json:"phone"`
	ProfilePhoto   string `db:"profile_photo" json:"profile_photo,omitempty"`

	// Investor fields
	InvestmentBudget    string   `db:"investment_budget" json:"investment_budget,omitempty"`
	PreferredCategories []string `db:"preferred_categories" json:"preferred_categories,omitempty"`
	InvestorBio         string   `db:"investor_bio" json:"investor_bio,omitempty"`

	// Startup owner fields
	StartupName        string `db:"startup_name" json:"startup_name,omitempty"`
	ProjectCategory    string `db:"project_category" json:"project_category,omitempty"`
	ProjectStage       string `db:"project_stage" json:"project_stage,omitempty"`
	TeamSize           int    `db:"team_size" json:"team_size,omitempty"`
	WebsiteLink        string `db:"website_link" json:"website_link,omitempty"`
	StartupDescription string `db:"startup_description" json:"startup_description,omitempty"`

	IsVerified     bool       `db:"is_verified" json:"is_verified"`
	OTP            *string    `db:"otp" json:"-"`
	OTPExpiry      *time.Time `db:"otp_expiry" json:"-"`
	ResetOTP       *string    `db:"reset_otp" json:"-"`
	ResetOTPExpiry *time.Time `db:"reset_otp_expiry" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// ClearOTP drops the pending registration code pair.
func (u *User) ClearOTP() {
	u.OTP = nil
	u.OTPExpiry = nil
}

// ClearResetOTP drops the pending password-reset code pair.
func (u *User) ClearResetOTP() {
	u.ResetOTP = nil
	u.ResetOTPExpiry = nil
}

// Campaign is a fundraising campaign owned by a startup owner. OwnerName,
// StartupName, ProjectStage, TeamSize and WebsiteLink are snapshots taken from
// the owner's profile at creation time; later profile edits do not change them.
type Campaign struct {
	ID             int64     `db:"id" json:"id"`
	OwnerID        int64     `db:"owner_id" json:"owner_id"`
	ProjectName    string    `db:"project_name" json:"project_name"`
	StartupName    string    `db:"startup_name" json:"startup_name"`
	OwnerName      string    `db:"owner_name" json:"owner_name"`
	Category       string    `db:"category" json:"category"`
	Tagline        string    `db:"tagline" json:"tagline"`
	Description    string    `db:"description" json:"description"`
	FundingGoal    float64   `db:"funding_goal" json:"funding_goal"`
	CurrentFunding float64   `db:"current_funding" json:"current_funding"`
	ProjectStage   string    `db:"project_stage" json:"project_stage"`
	TeamSize       int       `db:"team_size" json:"team_size"`
	WebsiteLink    string    `db:"website_link" json:"website_link,omitempty"`
	ImageData      string    `db:"image_data" json:"image_data,omitempty"`
	Status         string    `db:"status" json:"status"`
	Deadline       time.Time `db:"deadline" json:"deadline"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Conversation ties an investor and a startup owner together around one
// campaign. At most one conversation exists per (investor, owner, campaign)
// triple. LastMessage, LastMessageTime and the two unread counters are
// denormalized bookkeeping updated on every send.
type Conversation struct {
	ID              int64     `db:"id" json:"id"`
	InvestorID      int64     `db:"investor_id" json:"investor_id"`
	OwnerID         int64     `db:"owner_id" json:"owner_id"`
	CampaignID      int64     `db:"campaign_id" json:"campaign_id"`
	LastMessage     string    `db:"last_message" json:"last_message"`
	LastMessageTime time.Time `db:"last_message_time" json:"last_message_time"`
	UnreadInvestor  int       `db:"unread_count_investor" json:"unread_count_investor"`
	UnreadOwner     int       `db:"unread_count_owner" json:"unread_count_owner"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// UnreadFor returns the unread counter belonging to the given role.
func (c *Conversation) UnreadFor(r Role) int {
	if r == RoleInvestor {
		return c.UnreadInvestor
	}
	return c.UnreadOwner
}

// ParticipantID returns the user id holding the given role in the conversation.
func (c *Conversation) ParticipantID(r Role) int64 {
	if r == RoleInvestor {
		return c.InvestorID
	}
	return c.OwnerID
}

// Message is a single chat message. Immutable once created, except for the
// read flag flipped by mark-as-read.
type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	SenderID       int64     `db:"sender_id" json:"sender_id"`
	SenderRole     Role      `db:"sender_role" json:"sender_type"`
	Body           string    `db:"body" json:"message"`
	IsRead         bool      `db:"is_read" json:"is_read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// SavedCampaign is an investor's bookmark on a campaign, unique per pair.
type SavedCampaign struct {
	InvestorID int64     `db:"investor_id" json:"investor_id"`
	CampaignID int64     `db:"campaign_id" json:"campaign_id"`
	SavedAt    time.Time `db:"saved_at" json:"saved_at"`
}
