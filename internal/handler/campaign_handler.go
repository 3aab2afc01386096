package handler

import (
	"net/http"

	"signage-console/internal/domain"
	"signage-console/internal/middleware"
	"signage-console/internal/service"
	"signage-console/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const campaignsPath = "/dashboard/campaigns"

type CampaignHandler struct {
	campaignService *service.CampaignService
	validator       *validator.Validate
}

func NewCampaignHandler(campaignService *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		validator:       validator.New(),
	}
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.campaignService.List(r.Context(), middleware.GetPrincipal(r), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, view)
}

func (h *CampaignHandler) Detail(w http.ResponseWriter, r *http.Request) {
	view, err := h.campaignService.Detail(r.Context(), middleware.GetPrincipal(r), campaignID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, view)
}

// Act runs deploy, play or stop and returns the updated row.
func (h *CampaignHandler) Act(w http.ResponseWriter, r *http.Request) {
	row, err := h.campaignService.Act(r.Context(), middleware.GetPrincipal(r), campaignID(r), mux.Vars(r)["action"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, row)
}

func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.campaignService.Delete(r.Context(), middleware.GetPrincipal(r), campaignID(r)); err != nil {
		writeError(w, r, err)
		return
	}

	response.Navigate(w, nil, campaignsPath)
}

func (h *CampaignHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req domain.RenameCampaignRequest
	if err := decodeBody(r, &req, h.validator, false); err != nil {
		writeError(w, r, err)
		return
	}

	id := campaignID(r)
	if err := h.campaignService.Rename(r.Context(), middleware.GetPrincipal(r), id, req.Name); err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, domain.CreatedCampaign{ID: id})
}

func (h *CampaignHandler) AssignDevices(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignDevicesRequest
	if err := decodeBody(r, &req, h.validator, false); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.campaignService.AssignDevices(r.Context(), middleware.GetPrincipal(r), campaignID(r), req); err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, nil)
}
