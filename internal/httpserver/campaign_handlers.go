package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fundhub/internal/domain"
	"fundhub/internal/service"
)

type campaignCreateRequest struct {
	ProjectName string     `json:"project_name"`
	Category    string     `json:"category"`
	Tagline     string     `json:"tagline"`
	Description string     `json:"description"`
	FundingGoal float64    `json:"funding_goal"`
	ImageData   string     `json:"image_data"`
	Deadline    *time.Time `json:"deadline"`
}

type campaignUpdateRequest struct {
	ProjectName *string    `json:"project_name"`
	Category    *string    `json:"category"`
	Tagline     *string    `json:"tagline"`
	Description *string    `json:"description"`
	FundingGoal *float64   `json:"funding_goal"`
	WebsiteLink *string    `json:"website_link"`
	ImageData   *string    `json:"image_data"`
	Status      *string    `json:"status"`
	Deadline    *time.Time `json:"deadline"`
}

func campaignIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "campaignID"), 10, 64)
	if err != nil || id <= 0 {
		writeFail(w, http.StatusBadRequest, "invalid campaign id")
		return 0, false
	}
	return id, true
}

func handleListCampaigns(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := domain.CampaignFilter{
			Search:   q.Get("search"),
			Category: q.Get("category"),
			Stage:    q.Get("stage"),
		}
		if v := q.Get("min_goal"); v != "" {
			if min, err := strconv.ParseFloat(v, 64); err == nil {
				f.MinGoal = &min
			}
		}
		if v := q.Get("max_goal"); v != "" {
			if max, err := strconv.ParseFloat(v, 64); err == nil {
				f.MaxGoal = &max
			}
		}
		if v := q.Get("limit"); v != "" {
			f.Limit, _ = strconv.Atoi(v)
		}

		campaigns, err := campSvc.List(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, campaigns)
	}
}

func handleListCampaignsByCategory(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaigns, err := campSvc.List(r.Context(), domain.CampaignFilter{
			Category: chi.URLParam(r, "category"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, campaigns)
	}
}

func handleGetCampaign(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := campaignIDParam(w, r)
		if !ok {
			return
		}
		campaign, err := campSvc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, campaign)
	}
}

func handleCreateCampaign(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req campaignCreateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		campaign, err := campSvc.Create(r.Context(), user.ID, service.CampaignCreateInput{
			ProjectName: req.ProjectName,
			Category:    req.Category,
			Tagline:     req.Tagline,
			Description: req.Description,
			FundingGoal: req.FundingGoal,
			ImageData:   req.ImageData,
			Deadline:    req.Deadline,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusCreated, campaign)
	}
}

func handleListOwnCampaigns(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		campaigns, err := campSvc.ListByOwner(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, campaigns)
	}
}

func handleUpdateCampaign(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := campaignIDParam(w, r)
		if !ok {
			return
		}
		var req campaignUpdateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		campaign, err := campSvc.Update(r.Context(), user.ID, id, service.CampaignUpdateInput{
			ProjectName: req.ProjectName,
			Category:    req.Category,
			Tagline:     req.Tagline,
			Description: req.Description,
			FundingGoal: req.FundingGoal,
			WebsiteLink: req.WebsiteLink,
			ImageData:   req.ImageData,
			Status:      req.Status,
			Deadline:    req.Deadline,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, campaign)
	}
}

func handleDeleteCampaign(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := campaignIDParam(w, r)
		if !ok {
			return
		}
		if err := campSvc.Delete(r.Context(), user.ID, id); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "campaign deleted")
	}
}

func handleOwnerStats(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		stats, err := campSvc.OwnerStats(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, stats)
	}
}

func handleSaveCampaign(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := campaignIDParam(w, r)
		if !ok {
			return
		}
		if err := campSvc.Save(r.Context(), user.ID, id); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusCreated, "campaign saved")
	}
}

func handleUnsaveCampaign(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := campaignIDParam(w, r)
		if !ok {
			return
		}
		if err := campSvc.Unsave(r.Context(), user.ID, id); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "campaign unsaved")
	}
}

func handleListSavedCampaigns(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		saved, err := campSvc.ListSaved(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, saved)
	}
}

func handleIsCampaignSaved(campSvc *service.CampaignService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		id, ok := campaignIDParam(w, r)
		if !ok {
			return
		}
		saved, err := campSvc.IsSaved(r.Context(), user.ID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]bool{"is_saved": saved})
	}
}
