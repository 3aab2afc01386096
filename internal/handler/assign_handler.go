package handler

import (
	"net/http"

	"signage-console/internal/domain"
	"signage-console/internal/middleware"
	"signage-console/internal/workflow"
	"signage-console/pkg/response"

	"github.com/go-playground/validator/v10"
)

type ToggleDeviceRequest struct {
	DeviceID domain.ID `json:"deviceId" validate:"required"`
}

type FilterLocationRequest struct {
	Location string `json:"location"`
}

type SubmitAssignRequest struct {
	Prepared bool `json:"prepared"`
}

// AssignHandler drives the "assign devices" modal of a campaign.
type AssignHandler struct {
	flow      *workflow.AssignDevicesFlow
	validator *validator.Validate
}

func NewAssignHandler(flow *workflow.AssignDevicesFlow) *AssignHandler {
	return &AssignHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *AssignHandler) Open(w http.ResponseWriter, r *http.Request) {
	view, err := h.flow.Open(r.Context(), middleware.GetPrincipal(r), campaignID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, view)
}

func (h *AssignHandler) View(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.flow.View(middleware.GetPrincipal(r).SessionID, campaignID(r)))
}

func (h *AssignHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleDeviceRequest
	if err := decodeBody(r, &req, h.validator, false); err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r)(h.flow.Toggle(middleware.GetPrincipal(r).SessionID, campaignID(r), req.DeviceID))
}

func (h *AssignHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req FilterLocationRequest
	if err := decodeBody(r, &req, h.validator, true); err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r)(h.flow.Filter(middleware.GetPrincipal(r).SessionID, campaignID(r), req.Location))
}

func (h *AssignHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.flow.Clear(middleware.GetPrincipal(r).SessionID, campaignID(r)))
}

// Submit replaces the campaign's device list with the whole selection.
func (h *AssignHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitAssignRequest
	if err := decodeBody(r, &req, h.validator, true); err != nil {
		writeError(w, r, err)
		return
	}

	id := campaignID(r)
	view, err := h.flow.Submit(r.Context(), middleware.GetPrincipal(r), id, req.Prepared)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Navigate(w, view, campaignsPath+"/"+id.String())
}

func (h *AssignHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.flow.Close(middleware.GetPrincipal(r).SessionID, campaignID(r))
	response.Success(w, nil)
}

func (h *AssignHandler) respond(w http.ResponseWriter, r *http.Request) func(workflow.AssignView, error) {
	return func(view workflow.AssignView, err error) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Success(w, view)
	}
}
