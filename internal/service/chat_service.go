package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundhub/internal/domain"
)

// ChatService owns the conversation registry and message log.
type ChatService struct {
	users         domain.UserRepository
	campaigns     domain.CampaignRepository
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
}

func NewChatService(
	users domain.UserRepository,
	campaigns domain.CampaignRepository,
	conversations domain.ConversationRepository,
	messages domain.MessageRepository,
) *ChatService {
	return &ChatService{
		users:         users,
		campaigns:     campaigns,
		conversations: conversations,
		messages:      messages,
	}
}

const (
	defaultMessagePage = 50
	maxMessagePage     = 200
)

// ConversationResponse is a conversation with participant and campaign
// details joined in for list rendering.
type ConversationResponse struct {
	*domain.Conversation
	InvestorName  string `json:"investor_name"`
	InvestorPhoto string `json:"investor_photo,omitempty"`
	OwnerName     string `json:"owner_name"`
	OwnerPhoto    string `json:"owner_photo,omitempty"`
	StartupName   string `json:"startup_name"`
	ProjectName   string `json:"project_name"`
	Category      string `json:"category"`
}

type SendMessageInput struct {
	ConversationID int64
	SenderID       int64
	SenderRole     domain.Role
	Body           string
}

// GetOrCreateConversation returns the single conversation for the triple,
// creating it on first contact. Both participants and the campaign must exist
// and carry the expected roles.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, investorID, ownerID, campaignID int64) (*ConversationResponse, error) {
	investor, err := s.users.GetByID(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("get investor: %w", err)
	}
	if investor.Role != domain.RoleInvestor {
		return nil, fmt.Errorf("%w: user %d is not an investor", domain.ErrValidation, investorID)
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner.Role != domain.RoleOwner {
		return nil, fmt.Errorf("%w: user %d is not a startup owner", domain.ErrValidation, ownerID)
	}
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	if campaign.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: campaign %d does not belong to owner %d", domain.ErrValidation, campaignID, ownerID)
	}

	conv, err := s.conversations.GetOrCreate(ctx, investorID, ownerID, campaignID)
	if err != nil {
		return nil, err
	}

	return &ConversationResponse{
		Conversation:  conv,
		InvestorName:  investor.FullName,
		InvestorPhoto: investor.ProfilePhoto,
		OwnerName:     owner.FullName,
		OwnerPhoto:    owner.ProfilePhoto,
		StartupName:   owner.StartupName,
		ProjectName:   campaign.ProjectName,
		Category:      campaign.Category,
	}, nil
}

// ListConversations returns the user's conversations, most recent activity
// first, each joined with the counterpart's details.
func (s *ChatService) ListConversations(ctx context.Context, userID int64, role domain.Role) ([]*ConversationResponse, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	convs, err := s.conversations.ListForUser(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	res := make([]*ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		dto, err := s.toResponse(ctx, conv)
		if err != nil {
			return nil, err
		}
		res = append(res, dto)
	}
	return res, nil
}

// ListMessages returns a conversation's messages in chronological order.
func (s *ChatService) ListMessages(ctx context.Context, conversationID int64, limit int) ([]*domain.Message, error) {
	if _, err := s.conversations.GetByID(ctx, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessagePage
	}
	if limit > maxMessagePage {
		limit = maxMessagePage
	}

	msgs, err := s.messages.ListForConversation(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}

	// DB returns newest-first so the limit trims history, not recent messages.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// SendMessage appends a message and updates the conversation's summary and
// the recipient's unread counter in one transaction.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (*domain.Message, error) {
	if in.Body == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", domain.ErrValidation)
	}
	if len([]rune(in.Body)) > 5000 {
		return nil, fmt.Errorf("%w: message exceeds 5000 characters", domain.ErrValidation)
	}
	if !in.SenderRole.Valid() {
		return nil, fmt.Errorf("%w: unknown sender role %q", domain.ErrValidation, in.SenderRole)
	}

	conv, err := s.conversations.GetByID(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv.ParticipantID(in.SenderRole) != in.SenderID {
		return nil, fmt.Errorf("%w: sender is not the conversation's %s", domain.ErrValidation, in.SenderRole)
	}

	msg := &domain.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		SenderRole:     in.SenderRole,
		Body:           in.Body,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkRead flips the counterpart's messages to read and zeroes the reader's
// unread counter.
func (s *ChatService) MarkRead(ctx context.Context, conversationID int64, reader domain.Role) error {
	if !reader.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, reader)
	}
	return s.conversations.MarkRead(ctx, conversationID, reader)
}

func (s *ChatService) toResponse(ctx context.Context, conv *domain.Conversation) (*ConversationResponse, error) {
	dto := &ConversationResponse{Conversation: conv}

	if investor, err := s.users.GetByID(ctx, conv.InvestorID); err == nil {
		dto.InvestorName = investor.FullName
		dto.InvestorPhoto = investor.ProfilePhoto
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get investor: %w", err)
	}
	if owner, err := s.users.GetByID(ctx, conv.OwnerID); err == nil {
		dto.OwnerName = owner.FullName
		dto.OwnerPhoto = owner.ProfilePhoto
		dto.StartupName = owner.StartupName
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if campaign, err := s.campaigns.GetByID(ctx, conv.CampaignID); err == nil {
		dto.ProjectName = campaign.ProjectName
		dto.Category = campaign.Category
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get campaign: %w", err)
	}

	return dto, nil
}
