package httpserver

import (
	"net/http"

	"fundhub/internal/service"
)

type profileUpdateRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`

	InvestmentBudget    *string  `json:"investment_budget"`
	PreferredCategories []string `json:"preferred_categories"`
	InvestorBio         *string  `json:"investor_bio"`

	StartupName        *string `json:"startup_name"`
	ProjectCategory    *string `json:"project_category"`
	ProjectStage       *string `json:"project_stage"`
	TeamSize           *int    `json:"team_size"`
	WebsiteLink        *string `json:"website_link"`
	StartupDescription *string `json:"startup_description"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type updatePhotoRequest struct {
	ProfilePhoto string `json:"profile_photo"`
}

func handleGetProfile(profSvc *service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		profile, err := profSvc.Get(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, profile)
	}
}

func handleUpdateProfile(profSvc *service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req profileUpdateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		profile, err := profSvc.Update(r.Context(), user.ID, service.ProfileUpdateInput{
			FullName:            req.FullName,
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
		writeData(w, http.StatusOK, profile)
	}
}

func handleChangePassword(profSvc *service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req changePasswordRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := profSvc.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "password changed")
	}
}

func handleUpdatePhoto(profSvc *service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req updatePhotoRequest
		if !decodeBody(w, r, &req) {
			return
		}
		profile, err := profSvc.UpdatePhoto(r.Context(), user.ID, req.ProfilePhoto)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, profile)
	}
}
