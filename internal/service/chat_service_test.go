package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundhub/internal/domain"
	"fundhub/internal/service"
	"fundhub/internal/store"
	"fundhub/internal/store/sqlite"
)

func newChatFixture(t *testing.T) (*service.ChatService, store.Stores, *domain.User, *domain.User, *domain.Campaign) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(db))
	stores := sqlite.New(db)

	ctx := context.Background()
	investor := &domain.User{
		Role: domain.RoleInvestor, FullName: "Ida Investor", Email: "ida@example.com",
		HashedPassword: "x", IsVerified: true,
	}
	require.NoError(t, stores.Users.Create(ctx, investor))

	owner := &domain.User{
		Role: domain.RoleOwner, FullName: "Otto Owner", Email: "otto@example.com",
		HashedPassword: "x", StartupName: "Otto Labs", IsVerified: true,
	}
	require.NoError(t, stores.Users.Create(ctx, owner))

	campaign := &domain.Campaign{
		OwnerID: owner.ID, ProjectName: "Solar Kit", StartupName: owner.StartupName,
		OwnerName: owner.FullName, Category: "energy", Tagline: "sun in a box",
		Description: "portable solar", FundingGoal: 10000, Status: domain.CampaignActive,
		Deadline: time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, stores.Campaigns.Create(ctx, campaign))

	svc := service.NewChatService(stores.Users, stores.Campaigns, stores.Conversations, stores.Messages)
	return svc, stores, investor, owner, campaign
}

func TestGetOrCreateConversation(t *testing.T) {
	svc, _, investor, owner, campaign := newChatFixture(t)
	ctx := context.Background()

	first, err := svc.GetOrCreateConversation(ctx, investor.ID, owner.ID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ida Investor", first.InvestorName)
	assert.Equal(t, "Otto Labs", first.StartupName)
	assert.Equal(t, "Solar Kit", first.ProjectName)

	second, err := svc.GetOrCreateConversation(ctx, investor.ID, owner.ID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)

	t.Run("RejectsSwappedRoles", func(t *testing.T) {
		_, err := svc.GetOrCreateConversation(ctx, owner.ID, investor.ID, campaign.ID)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("RejectsMissingCampaign", func(t *testing.T) {
		_, err := svc.GetOrCreateConversation(ctx, investor.ID, owner.ID, 9999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSendMessageAndUnreadCounters(t *testing.T) {
	svc, stores, investor, owner, campaign := newChatFixture(t)
	ctx := context.Background()

	conv, err := svc.GetOrCreateConversation(ctx, investor.ID, owner.ID, campaign.ID)
	require.NoError(t, err)
	convID := conv.Conversation.ID

	_, err = svc.SendMessage(ctx, service.SendMessageInput{
		ConversationID: convID, SenderID: investor.ID, SenderRole: domain.RoleInvestor, Body: "Hi",
	})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, service.SendMessageInput{
		ConversationID: convID, SenderID: owner.ID, SenderRole: domain.RoleOwner, Body: "Hello",
	})
	require.NoError(t, err)

	got, err := stores.Conversations.GetByID(ctx, convID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.LastMessage)
	assert.Equal(t, 1, got.UnreadOwner)
	assert.Equal(t, 1, got.UnreadInvestor)

	require.NoError(t, svc.MarkRead(ctx, convID, domain.RoleInvestor))
	got, err = stores.Conversations.GetByID(ctx, convID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UnreadInvestor)
	assert.Equal(t, 1, got.UnreadOwner)

	msgs, err := svc.ListMessages(ctx, convID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	// Chronological order, and mark-read only flips the other side's messages.
	assert.Equal(t, "Hi", msgs[0].Body)
	assert.Equal(t, "Hello", msgs[1].Body)
	assert.False(t, msgs[0].IsRead)
	assert.True(t, msgs[1].IsRead)
}

func TestSendMessageValidation(t *testing.T) {
	svc, _, investor, owner, campaign := newChatFixture(t)
	ctx := context.Background()

	conv, err := svc.GetOrCreateConversation(ctx, investor.ID, owner.ID, campaign.ID)
	require.NoError(t, err)
	convID := conv.Conversation.ID

	t.Run("EmptyBody", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, service.SendMessageInput{
			ConversationID: convID, SenderID: investor.ID, SenderRole: domain.RoleInvestor, Body: "",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("TooLong", func(t *testing.T) {
		long := make([]rune, 5001)
		for i := range long {
			long[i] = 'a'
		}
		_, err := svc.SendMessage(ctx, service.SendMessageInput{
			ConversationID: convID, SenderID: investor.ID, SenderRole: domain.RoleInvestor, Body: string(long),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("SenderNotParticipant", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, service.SendMessageInput{
			ConversationID: convID, SenderID: owner.ID, SenderRole: domain.RoleInvestor, Body: "spoofed",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("MissingConversation", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, service.SendMessageInput{
			ConversationID: 9999, SenderID: investor.ID, SenderRole: domain.RoleInvestor, Body: "Hi",
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListConversationsOrdering(t *testing.T) {
	svc, stores, investor, owner, campaign := newChatFixture(t)
	ctx := context.Background()

	second := &domain.Campaign{
		OwnerID: owner.ID, ProjectName: "Wind Kit", StartupName: owner.StartupName,
		OwnerName: owner.FullName, Category: "energy", Tagline: "breeze in a box",
		Description: "portable wind", FundingGoal: 5000, Status: domain.CampaignActive,
		Deadline: time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, stores.Campaigns.Create(ctx, second))

	convA, err := svc.GetOrCreateConversation(ctx, investor.ID, owner.ID, campaign.ID)
	require.NoError(t, err)
	convB, err := svc.GetOrCreateConversation(ctx, investor.ID, owner.ID, second.ID)
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, service.SendMessageInput{
		ConversationID: convA.Conversation.ID, SenderID: investor.ID, SenderRole: domain.RoleInvestor, Body: "Hi",
	})
	require.NoError(t, err)

	list, err := svc.ListConversations(ctx, investor.ID, domain.RoleInvestor)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Latest activity first.
	assert.Equal(t, convA.Conversation.ID, list[0].Conversation.ID)
	assert.Equal(t, convB.Conversation.ID, list[1].Conversation.ID)
	assert.Equal(t, "Wind Kit", list[1].ProjectName)
}
