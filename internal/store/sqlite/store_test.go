package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundhub/internal/domain"
	"fundhub/internal/store"
	"fundhub/internal/store/sqlite"
)

func openStores(t *testing.T) store.Stores {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(db))
	return sqlite.New(db)
}

func seedPair(t *testing.T, stores store.Stores) (investor, owner *domain.User, campaign *domain.Campaign) {
	t.Helper()
	ctx := context.Background()

	investor = &domain.User{
		Role: domain.RoleInvestor, FullName: "Ida Investor", Email: "ida@example.com",
		HashedPassword: "x", IsVerified: true,
	}
	require.NoError(t, stores.Users.Create(ctx, investor))

	owner = &domain.User{
		Role: domain.RoleOwner, FullName: "Otto Owner", Email: "otto@example.com",
		HashedPassword: "x", StartupName: "Otto Labs", IsVerified: true,
	}
	require.NoError(t, stores.Users.Create(ctx, owner))

	campaign = &domain.Campaign{
		OwnerID: owner.ID, ProjectName: "Solar Kit", StartupName: "Otto Labs",
		OwnerName: "Otto Owner", Category: "energy", Tagline: "sun in a box",
		Description: "portable solar", FundingGoal: 10000, ProjectStage: "seed",
		Status: domain.CampaignActive, Deadline: time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, stores.Campaigns.Create(ctx, campaign))
	return investor, owner, campaign
}

func TestUserUniquePerEmailAndRole(t *testing.T) {
	stores := openStores(t)
	ctx := context.Background()

	u := &domain.User{Role: domain.RoleInvestor, FullName: "A", Email: "a@example.com", HashedPassword: "x"}
	require.NoError(t, stores.Users.Create(ctx, u))

	dup := &domain.User{Role: domain.RoleInvestor, FullName: "B", Email: "a@example.com", HashedPassword: "x"}
	assert.ErrorIs(t, stores.Users.Create(ctx, dup), domain.ErrConflict)

	// Same address under the other role is a distinct account.
	other := &domain.User{Role: domain.RoleOwner, FullName: "C", Email: "a@example.com", HashedPassword: "x", StartupName: "C Labs"}
	assert.NoError(t, stores.Users.Create(ctx, other))
}

func TestUpdatePasswordClearsResetPair(t *testing.T) {
	stores := openStores(t)
	ctx := context.Background()

	code := "123456"
	expiry := time.Now().Add(10 * time.Minute).UTC()
	u := &domain.User{
		Role: domain.RoleInvestor, FullName: "A", Email: "a@example.com", HashedPassword: "old",
		IsVerified: true, ResetOTP: &code, ResetOTPExpiry: &expiry,
	}
	require.NoError(t, stores.Users.Create(ctx, u))

	require.NoError(t, stores.Users.UpdatePassword(ctx, u.ID, "new"))

	got, err := stores.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.HashedPassword)
	assert.Nil(t, got.ResetOTP)
	assert.Nil(t, got.ResetOTPExpiry)
}

func TestConversationGetOrCreateIsIdempotent(t *testing.T) {
	stores := openStores(t)
	investor, owner, campaign := seedPair(t, stores)
	ctx := context.Background()

	first, err := stores.Conversations.GetOrCreate(ctx, investor.ID, owner.ID, campaign.ID)
	require.NoError(t, err)
	second, err := stores.Conversations.GetOrCreate(ctx, investor.ID, owner.ID, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestConversationGetOrCreateConcurrent(t *testing.T) {
	stores := openStores(t)
	investor, owner, campaign := seedPair(t, stores)
	ctx := context.Background()

	const n = 8
	ids := make([]int64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			conv, err := stores.Conversations.GetOrCreate(ctx, investor.ID, owner.ID, campaign.ID)
			if assert.NoError(t, err) {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestMessageAppendUpdatesSummary(t *testing.T) {
	stores := openStores(t)
	investor, owner, campaign := seedPair(t, stores)
	ctx := context.Background()

	conv, err := stores.Conversations.GetOrCreate(ctx, investor.ID, owner.ID, campaign.ID)
	require.NoError(t, err)

	msg := &domain.Message{
		ConversationID: conv.ID, SenderID: investor.ID, SenderRole: domain.RoleInvestor, Body: "Hi",
	}
	require.NoError(t, stores.Messages.Append(ctx, msg))
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())

	got, err := stores.Conversations.GetByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", got.LastMessage)
	assert.Equal(t, 1, got.UnreadOwner)
	assert.Equal(t, 0, got.UnreadInvestor)

	t.Run("MissingConversation", func(t *testing.T) {
		err := stores.Messages.Append(ctx, &domain.Message{
			ConversationID: 9999, SenderID: investor.ID, SenderRole: domain.RoleInvestor, Body: "lost",
		})
		assert.Error(t, err)
	})
}

func TestMarkReadFlipsOtherSideOnly(t *testing.T) {
	stores := openStores(t)
	investor, owner, campaign := seedPair(t, stores)
	ctx := context.Background()

	conv, err := stores.Conversations.GetOrCreate(ctx, investor.ID, owner.ID, campaign.ID)
	require.NoError(t, err)

	for _, m := range []*domain.Message{
		{ConversationID: conv.ID, SenderID: investor.ID, SenderRole: domain.RoleInvestor, Body: "Hi"},
		{ConversationID: conv.ID, SenderID: owner.ID, SenderRole: domain.RoleOwner, Body: "Hello"},
	} {
		require.NoError(t, stores.Messages.Append(ctx, m))
	}

	require.NoError(t, stores.Conversations.MarkRead(ctx, conv.ID, domain.RoleOwner))

	got, err := stores.Conversations.GetByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UnreadOwner)
	assert.Equal(t, 1, got.UnreadInvestor)

	msgs, err := stores.Messages.ListForConversation(ctx, conv.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	// Newest first; the investor's "Hi" is now read, the owner's own "Hello" is not.
	assert.Equal(t, "Hello", msgs[0].Body)
	assert.False(t, msgs[0].IsRead)
	assert.Equal(t, "Hi", msgs[1].Body)
	assert.True(t, msgs[1].IsRead)

	t.Run("MissingConversation", func(t *testing.T) {
		assert.ErrorIs(t, stores.Conversations.MarkRead(ctx, 9999, domain.RoleOwner), domain.ErrNotFound)
	})
}

func TestMessagePageLimit(t *testing.T) {
	stores := openStores(t)
	investor, owner, campaign := seedPair(t, stores)
	ctx := context.Background()

	conv, err := stores.Conversations.GetOrCreate(ctx, investor.ID, owner.ID, campaign.ID)
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, stores.Messages.Append(ctx, &domain.Message{
			ConversationID: conv.ID, SenderID: investor.ID, SenderRole: domain.RoleInvestor,
			Body: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	msgs, err := stores.Messages.ListForConversation(ctx, conv.ID, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	// The limit trims the oldest messages.
	assert.Equal(t, "e", msgs[0].Body)
	assert.Equal(t, "c", msgs[2].Body)
}

func TestSavedCampaigns(t *testing.T) {
	stores := openStores(t)
	investor, _, campaign := seedPair(t, stores)
	ctx := context.Background()

	require.NoError(t, stores.Saved.Save(ctx, investor.ID, campaign.ID, time.Now().UTC()))
	assert.ErrorIs(t, stores.Saved.Save(ctx, investor.ID, campaign.ID, time.Now().UTC()), domain.ErrConflict)

	saved, err := stores.Saved.IsSaved(ctx, investor.ID, campaign.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	list, err := stores.Saved.ListForInvestor(ctx, investor.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, campaign.ID, list[0].CampaignID)

	require.NoError(t, stores.Saved.Unsave(ctx, investor.ID, campaign.ID))
	saved, err = stores.Saved.IsSaved(ctx, investor.ID, campaign.ID)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestCampaignListFilters(t *testing.T) {
	stores := openStores(t)
	_, owner, _ := seedPair(t, stores)
	ctx := context.Background()

	closed := &domain.Campaign{
		OwnerID: owner.ID, ProjectName: "Old Thing", StartupName: "Otto Labs",
		OwnerName: "Otto Owner", Category: "energy", Tagline: "done", Description: "finished",
		FundingGoal: 100, ProjectStage: "seed", Status: domain.CampaignClosed,
		Deadline: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, stores.Campaigns.Create(ctx, closed))

	list, err := stores.Campaigns.List(ctx, domain.CampaignFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Solar Kit", list[0].ProjectName)

	list, err = stores.Campaigns.List(ctx, domain.CampaignFilter{Search: "solar"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	min := 20000.0
	list, err = stores.Campaigns.List(ctx, domain.CampaignFilter{MinGoal: &min})
	require.NoError(t, err)
	assert.Empty(t, list)

	stats, err := stores.Campaigns.OwnerStats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCampaigns)
	assert.Equal(t, 1, stats.ActiveCampaigns)
}
