package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fundhub/internal/config"
	"fundhub/internal/domain"
	"fundhub/internal/notify"
	"fundhub/internal/security"
	"fundhub/internal/service"
	"fundhub/internal/store"
	"fundhub/internal/ws"
)

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(
	cfg *config.Config,
	stores store.Stores,
	hub *ws.Hub,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
	sender notify.Sender,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	otpTTL := time.Duration(cfg.OTPExpiryMinutes) * time.Minute
	authSvc := service.NewAuthService(stores.Users, tokenSvc, passwordHasher, sender, otpTTL)
	chatSvc := service.NewChatService(stores.Users, stores.Campaigns, stores.Conversations, stores.Messages)
	campSvc := service.NewCampaignService(stores.Users, stores.Campaigns, stores.Saved)
	profSvc := service.NewProfileService(stores.Users, passwordHasher)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": cfg.AppName + " API",
			"version": "1.0.0",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc))
			r.Post("/verify-otp", handleVerifyOTP(authSvc))
			r.Post("/resend-otp", handleResendOTP(authSvc))
			r.Post("/login", handleLogin(authSvc))
			r.Post("/forgot-password", handleForgotPassword(authSvc))
			r.Post("/verify-reset-otp", handleVerifyResetOTP(authSvc))
			r.Post("/reset-password", handleResetPassword(authSvc))
		})

		// Public campaign browsing
		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", handleListCampaigns(campSvc))
			r.Get("/category/{category}", handleListCampaignsByCategory(campSvc))
			r.Get("/{campaignID}", handleGetCampaign(campSvc))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, stores.Users))

			r.Get("/auth/me", handleMe())

			r.Route("/chat", func(r chi.Router) {
				r.Post("/conversation", handleCreateConversation(chatSvc))
				r.Get("/conversations/{userID}/{userType}", handleListConversations(chatSvc))
				r.Get("/messages/{conversationID}", handleListMessages(chatSvc))
				r.Post("/send", handleSendMessage(chatSvc, hub))
				r.Post("/mark-read", handleMarkRead(chatSvc))
			})

			r.Route("/investor", func(r chi.Router) {
				r.Use(RequireRole(domain.RoleInvestor))
				r.Get("/profile", handleGetProfile(profSvc))
				r.Put("/profile", handleUpdateProfile(profSvc))
				r.Put("/profile/photo", handleUpdatePhoto(profSvc))
				r.Put("/profile/password", handleChangePassword(profSvc))
				r.Get("/saved-campaigns", handleListSavedCampaigns(campSvc))
				r.Post("/saved-campaigns/{campaignID}", handleSaveCampaign(campSvc))
				r.Delete("/saved-campaigns/{campaignID}", handleUnsaveCampaign(campSvc))
				r.Get("/saved-campaigns/{campaignID}", handleIsCampaignSaved(campSvc))
			})

			r.Route("/owner", func(r chi.Router) {
				r.Use(RequireRole(domain.RoleOwner))
				r.Get("/profile", handleGetProfile(profSvc))
				r.Put("/profile", handleUpdateProfile(profSvc))
				r.Put("/profile/photo", handleUpdatePhoto(profSvc))
				r.Put("/profile/password", handleChangePassword(profSvc))
				r.Get("/campaigns", handleListOwnCampaigns(campSvc))
				r.Post("/campaigns", handleCreateCampaign(campSvc))
				r.Put("/campaigns/{campaignID}", handleUpdateCampaign(campSvc))
				r.Delete("/campaigns/{campaignID}", handleDeleteCampaign(campSvc))
				r.Get("/stats", handleOwnerStats(campSvc))
			})
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, tokenSvc, stores.Users, chatSvc, cfg.CORSOrigins))

	return r
}
