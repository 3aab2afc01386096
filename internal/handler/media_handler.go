package handler

import (
	"net/http"

	"signage-console/internal/domain"
	"signage-console/internal/middleware"
	"signage-console/internal/service"
	"signage-console/internal/workflow"
	"signage-console/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type MediaHandler struct {
	mediaService    *service.MediaService
	campaignService *service.CampaignService
	uploadFlow      *workflow.UploadFlow
	maxUploadBytes  int64
	validator       *validator.Validate
}

func NewMediaHandler(mediaService *service.MediaService, campaignService *service.CampaignService, uploadFlow *workflow.UploadFlow, maxUploadBytes int64) *MediaHandler {
	return &MediaHandler{
		mediaService:    mediaService,
		campaignService: campaignService,
		uploadFlow:      uploadFlow,
		maxUploadBytes:  maxUploadBytes,
		validator:       validator.New(),
	}
}

// Update edits one media item's name, duration and order.
func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateMediaRequest
	if err := decodeBody(r, &req, h.validator, false); err != nil {
		writeError(w, r, err)
		return
	}

	id := campaignID(r)
	p := middleware.GetPrincipal(r)
	mediaID := domain.ID(mux.Vars(r)["mediaId"])
	if err := h.mediaService.Update(r.Context(), p, id, mediaID, &req); err != nil {
		writeError(w, r, err)
		return
	}
	h.campaignService.Invalidate(p.SessionID, id)

	response.Navigate(w, nil, campaignsPath+"/"+id.String())
}

func (h *MediaHandler) OpenUpload(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)
	response.Success(w, h.uploadFlow.Open(p.SessionID, campaignID(r)))
}

func (h *MediaHandler) UploadStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.uploadFlow.View(middleware.GetPrincipal(r).SessionID, campaignID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, view)
}

// Upload sends a batch of files to the campaign. Per-file failures show up as
// rows in the returned view, not as an error status.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	files, duration, cleanup, err := readUploadForm(w, r, h.maxUploadBytes)
	defer cleanup()
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := middleware.GetPrincipal(r)
	id := campaignID(r)
	view, err := h.uploadFlow.Submit(r.Context(), p, id, files, duration)
	h.campaignService.Invalidate(p.SessionID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, view)
}

func (h *MediaHandler) FinishUpload(w http.ResponseWriter, r *http.Request) {
	id := campaignID(r)
	view, err := h.uploadFlow.Finish(middleware.GetPrincipal(r).SessionID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Navigate(w, view, campaignsPath+"/"+id.String())
}

func (h *MediaHandler) CloseUpload(w http.ResponseWriter, r *http.Request) {
	h.uploadFlow.Close(middleware.GetPrincipal(r).SessionID, campaignID(r))
	response.Success(w, nil)
}
