package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// Update persists all mutable fields of u, including the OTP pairs.
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByEmail looks a user up by normalized email within one role.
	GetByEmail(ctx context.Context, email string, role Role) (*User, error)
	// UpdatePassword swaps the stored hash and clears the reset-OTP pair in
	// one statement.
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
}

// CampaignFilter narrows campaign listings. Zero values mean "no filter".
type CampaignFilter struct {
	Search   string
	Category string
	Stage    string
	MinGoal  *float64
	MaxGoal  *float64
	Limit    int
}

// OwnerStats aggregates a startup owner's dashboard numbers.
type OwnerStats struct {
	TotalCampaigns  int     `json:"totalCampaigns"`
	ActiveCampaigns int     `json:"activeCampaigns"`
	TotalFunding    float64 `json:"totalFunding"`
	TotalBackers    int     `json:"totalBackers"`
}

// CampaignRepository defines persistence operations for campaigns.
type CampaignRepository interface {
	Create(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id int64) (*Campaign, error)
	// List returns active campaigns newest first, narrowed by f.
	List(ctx context.Context, f CampaignFilter) ([]*Campaign, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Campaign, error)
	Update(ctx context.Context, c *Campaign) error
	Delete(ctx context.Context, id int64) error
	OwnerStats(ctx context.Context, ownerID int64) (*OwnerStats, error)
}

// ConversationRepository defines persistence operations for conversations.
type ConversationRepository interface {
	// GetOrCreate is an idempotent upsert keyed by the
	// (investor, owner, campaign) triple. A concurrent first-contact race is
	// resolved by the storage-level uniqueness constraint: the loser reads
	// the winner's row.
	GetOrCreate(ctx context.Context, investorID, ownerID, campaignID int64) (*Conversation, error)
	GetByID(ctx context.Context, id int64) (*Conversation, error)
	// ListForUser returns the user's conversations ordered by last message
	// time, newest first.
	ListForUser(ctx context.Context, userID int64, role Role) ([]*Conversation, error)
	// MarkRead zeroes the reader's unread counter and flips is_read on all
	// messages authored by the other role, atomically.
	MarkRead(ctx context.Context, conversationID int64, reader Role) error
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	// Append inserts m and updates the parent conversation's last-message
	// summary plus the non-sender's unread counter in the same transaction.
	// The counter bump is an in-SQL increment, not a read-modify-write.
	Append(ctx context.Context, m *Message) error
	// ListForConversation returns the most recent messages, newest first.
	ListForConversation(ctx context.Context, conversationID int64, limit int) ([]*Message, error)
}

// SavedCampaignRepository defines persistence for investor bookmarks.
type SavedCampaignRepository interface {
	// Save returns ErrConflict when the pair already exists.
	Save(ctx context.Context, investorID, campaignID int64, savedAt time.Time) error
	Unsave(ctx context.Context, investorID, campaignID int64) error
	// ListForInvestor returns bookmarks newest first.
	ListForInvestor(ctx context.Context, investorID int64) ([]*SavedCampaign, error)
	IsSaved(ctx context.Context, investorID, campaignID int64) (bool, error)
}
