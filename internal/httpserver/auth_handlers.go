package httpserver

import (
	"net/http"

	"fundhub/internal/domain"
	"fundhub/internal/service"
)

type registerRequest struct {
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`

	InvestmentBudget    string   `json:"investment_budget"`
	PreferredCategories []string `json:"preferred_categories"`
	InvestorBio         string   `json:"investor_bio"`

	StartupName        string `json:"startup_name"`
	ProjectCategory    string `json:"project_category"`
	ProjectStage       string `json:"project_stage"`
	TeamSize           int    `json:"team_size"`
	WebsiteLink        string `json:"website_link"`
	StartupDescription string `json:"startup_description"`
}

type otpRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func handleRegister(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeBody(w, r, &req) {
			return
		}

		user, err := authSvc.Register(r.Context(), service.RegisterInput{
			Role:                domain.Role(req.Role),
			FullName:            req.FullName,
			Email:               req.Email,
			Password:            req.Password,
			Phone:               req.Phone,
			InvestmentBudget:    req.InvestmentBudget,
			PreferredCategories: req.PreferredCategories,
			InvestorBio:         req.InvestorBio,
			StartupName:         req.StartupName,
			ProjectCategory:     req.ProjectCategory,
			ProjectStage:        req.ProjectStage,
			TeamSize:            req.TeamSize,
			WebsiteLink:         req.WebsiteLink,
			StartupDescription:  req.StartupDescription,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusCreated, map[string]any{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

func handleVerifyOTP(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req otpRequest
		if !decodeBody(w, r, &req) {
			return
		}
		resp, err := authSvc.VerifyOTP(r.Context(), req.Email, domain.Role(req.Role), req.OTP)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, resp)
	}
}

func handleResendOTP(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req otpRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := authSvc.ResendOTP(r.Context(), req.Email, domain.Role(req.Role)); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "verification code sent")
	}
}

func handleLogin(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeBody(w, r, &req) {
			return
		}
		resp, err := authSvc.Login(r.Context(), req.Email, domain.Role(req.Role), req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, resp)
	}
}

func handleForgotPassword(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req otpRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := authSvc.ForgotPassword(r.Context(), req.Email, domain.Role(req.Role)); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "reset code sent")
	}
}

func handleVerifyResetOTP(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req otpRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := authSvc.VerifyResetOTP(r.Context(), req.Email, domain.Role(req.Role), req.OTP); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "code verified")
	}
}

func handleResetPassword(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := authSvc.ResetPassword(r.Context(), req.Email, domain.Role(req.Role), req.OTP, req.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "password updated")
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeFail(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeData(w, http.StatusOK, user)
	}
}
