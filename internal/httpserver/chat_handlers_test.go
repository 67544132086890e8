package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundhub/internal/config"
	"fundhub/internal/domain"
	"fundhub/internal/httpserver"
	"fundhub/internal/notify"
	"fundhub/internal/security"
	"fundhub/internal/store"
	"fundhub/internal/store/sqlite"
	"fundhub/internal/ws"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	srv      *httptest.Server
	stores   store.Stores
	tokens   *security.TokenService
	investor *domain.User
	owner    *domain.User
	campaign *domain.Campaign
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(db))
	stores := sqlite.New(db)

	hasher := security.NewPasswordHasher(4)
	hashed, err := hasher.Hash("Password1!")
	require.NoError(t, err)

	ctx := context.Background()
	investor := &domain.User{
		Role: domain.RoleInvestor, FullName: "Ida Investor", Email: "ida@example.com",
		HashedPassword: hashed, IsVerified: true,
	}
	require.NoError(t, stores.Users.Create(ctx, investor))

	owner := &domain.User{
		Role: domain.RoleOwner, FullName: "Otto Owner", Email: "otto@example.com",
		HashedPassword: hashed, StartupName: "Otto Labs", IsVerified: true,
	}
	require.NoError(t, stores.Users.Create(ctx, owner))

	campaign := &domain.Campaign{
		OwnerID: owner.ID, ProjectName: "Solar Kit", StartupName: "Otto Labs",
		OwnerName: "Otto Owner", Category: "energy", Tagline: "sun in a box",
		Description: "portable solar", FundingGoal: 10000, Status: domain.CampaignActive,
		Deadline: time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, stores.Campaigns.Create(ctx, campaign))

	cfg := &config.Config{
		AppName:          "FundHub API",
		CORSOrigins:      []string{"*"},
		OTPExpiryMinutes: 10,
	}
	tokens := security.NewTokenService("test-secret", time.Hour)
	router := httpserver.NewRouter(cfg, stores, ws.NewHub(), tokens, hasher, notify.LogSender{})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		srv: srv, stores: stores, tokens: tokens,
		investor: investor, owner: owner, campaign: campaign,
	}
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func (ts *testServer) tokenFor(t *testing.T, u *domain.User) string {
	t.Helper()
	token, err := ts.tokens.CreateForUser(u)
	require.NoError(t, err)
	return token
}

func TestChatEndpoints(t *testing.T) {
	ts := newTestServer(t)
	investorToken := ts.tokenFor(t, ts.investor)
	ownerToken := ts.tokenFor(t, ts.owner)

	t.Run("RequiresAuth", func(t *testing.T) {
		resp, env := ts.request(t, http.MethodPost, "/api/chat/conversation", "", map[string]any{})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.False(t, env.Success)
	})

	var convID int64
	t.Run("CreateConversation", func(t *testing.T) {
		resp, env := ts.request(t, http.MethodPost, "/api/chat/conversation", investorToken, map[string]any{
			"investor_id": ts.investor.ID,
			"owner_id":    ts.owner.ID,
			"campaign_id": ts.campaign.ID,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, env.Success)

		var conv struct {
			ID          int64  `json:"id"`
			ProjectName string `json:"project_name"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &conv))
		assert.Equal(t, "Solar Kit", conv.ProjectName)
		convID = conv.ID

		// Same triple returns the same conversation.
		resp, env = ts.request(t, http.MethodPost, "/api/chat/conversation", investorToken, map[string]any{
			"investor_id": ts.investor.ID,
			"owner_id":    ts.owner.ID,
			"campaign_id": ts.campaign.ID,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.Unmarshal(env.Data, &conv))
		assert.Equal(t, convID, conv.ID)
	})

	t.Run("SendAndList", func(t *testing.T) {
		resp, _ := ts.request(t, http.MethodPost, "/api/chat/send", investorToken, map[string]any{
			"conversation_id": convID,
			"sender_id":       ts.investor.ID,
			"sender_type":     "investor",
			"message":         "Hi",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, _ = ts.request(t, http.MethodPost, "/api/chat/send", ownerToken, map[string]any{
			"conversation_id": convID,
			"sender_id":       ts.owner.ID,
			"sender_type":     "startup_owner",
			"message":         "Hello",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, env := ts.request(t, http.MethodGet, fmt.Sprintf("/api/chat/messages/%d", convID), investorToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var msgs []struct {
			Message    string `json:"message"`
			SenderType string `json:"sender_type"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &msgs))
		require.Len(t, msgs, 2)
		assert.Equal(t, "Hi", msgs[0].Message)
		assert.Equal(t, "Hello", msgs[1].Message)
		assert.Equal(t, "startup_owner", msgs[1].SenderType)
	})

	t.Run("EmptyMessageRejected", func(t *testing.T) {
		resp, env := ts.request(t, http.MethodPost, "/api/chat/send", investorToken, map[string]any{
			"conversation_id": convID,
			"sender_id":       ts.investor.ID,
			"sender_type":     "investor",
			"message":         "",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, env.Success)
	})

	t.Run("ListConversationsWithUnread", func(t *testing.T) {
		path := fmt.Sprintf("/api/chat/conversations/%d/investor", ts.investor.ID)
		resp, env := ts.request(t, http.MethodGet, path, investorToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var convs []struct {
			ID             int64  `json:"id"`
			LastMessage    string `json:"last_message"`
			UnreadInvestor int    `json:"unread_count_investor"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &convs))
		require.Len(t, convs, 1)
		assert.Equal(t, "Hello", convs[0].LastMessage)
		assert.Equal(t, 1, convs[0].UnreadInvestor)
	})

	t.Run("MarkRead", func(t *testing.T) {
		resp, env := ts.request(t, http.MethodPost, "/api/chat/mark-read", investorToken, map[string]any{
			"conversation_id": convID,
			"user_type":       "investor",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, env.Success)

		conv, err := ts.stores.Conversations.GetByID(context.Background(), convID)
		require.NoError(t, err)
		assert.Equal(t, 0, conv.UnreadInvestor)
	})

	t.Run("UnknownConversation", func(t *testing.T) {
		resp, _ := ts.request(t, http.MethodGet, "/api/chat/messages/9999", investorToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("LoginSuccess", func(t *testing.T) {
		resp, env := ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "ida@example.com",
			"role":     "investor",
			"password": "Password1!",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, env.Success)

		var data struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.NotEmpty(t, data.Token)
	})

	t.Run("LoginWrongRole", func(t *testing.T) {
		resp, _ := ts.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "ida@example.com",
			"role":     "startup_owner",
			"password": "Password1!",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("RegisterCreatesUnverified", func(t *testing.T) {
		resp, env := ts.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
			"role":      "investor",
			"full_name": "New User",
			"email":     "new@example.com",
			"password":  "Password1!",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.True(t, env.Success)

		user, err := ts.stores.Users.GetByEmail(context.Background(), "new@example.com", domain.RoleInvestor)
		require.NoError(t, err)
		assert.False(t, user.IsVerified)
		assert.NotNil(t, user.OTP)

		// Full verification round trip using the stored code.
		resp, env = ts.request(t, http.MethodPost, "/api/auth/verify-otp", "", map[string]any{
			"email": "new@example.com",
			"role":  "investor",
			"otp":   *user.OTP,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var data struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.NotEmpty(t, data.Token)
	})

	t.Run("RegisterVerifiedDuplicate", func(t *testing.T) {
		resp, _ := ts.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
			"role":      "investor",
			"full_name": "Imposter",
			"email":     "ida@example.com",
			"password":  "Password1!",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}
