package handler

import (
	"net/http"

	"signage-console/internal/middleware"
	"signage-console/internal/workflow"
	"signage-console/pkg/response"

	"github.com/go-playground/validator/v10"
)

type SaveWizardRequest struct {
	Name string `json:"name" validate:"max=255"`
}

// WizardHandler drives the "create campaign & upload" modal.
type WizardHandler struct {
	flow           *workflow.CreateCampaignFlow
	maxUploadBytes int64
	validator      *validator.Validate
}

func NewWizardHandler(flow *workflow.CreateCampaignFlow, maxUploadBytes int64) *WizardHandler {
	return &WizardHandler{
		flow:           flow,
		maxUploadBytes: maxUploadBytes,
		validator:      validator.New(),
	}
}

// Open provisions an empty campaign and binds the wizard to it.
func (h *WizardHandler) Open(w http.ResponseWriter, r *http.Request) {
	view, err := h.flow.Open(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, view)
}

func (h *WizardHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.flow.View(middleware.GetPrincipal(r).SessionID, campaignID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, view)
}

func (h *WizardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	files, duration, cleanup, err := readUploadForm(w, r, h.maxUploadBytes)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.flow.Upload(r.Context(), middleware.GetPrincipal(r), campaignID(r), files, duration)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, view)
}

func (h *WizardHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveWizardRequest
	if err := decodeBody(r, &req, h.validator, true); err != nil {
		writeError(w, r, err)
		return
	}

	path, err := h.flow.Save(r.Context(), middleware.GetPrincipal(r), campaignID(r), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Navigate(w, nil, path)
}

// Cancel closes the wizard and deletes the campaign it provisioned.
func (h *WizardHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Cancel(r.Context(), middleware.GetPrincipal(r), campaignID(r)); err != nil {
		writeError(w, r, err)
		return
	}

	response.Navigate(w, nil, campaignsPath)
}
