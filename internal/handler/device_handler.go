package handler

import (
	"net/http"

	"signage-console/internal/domain"
	"signage-console/internal/middleware"
	"signage-console/internal/service"
	"signage-console/pkg/response"
)

type DeviceHandler struct {
	deviceService   *service.DeviceService
	defaultPageSize int
}

func NewDeviceHandler(deviceService *service.DeviceService, defaultPageSize int) *DeviceHandler {
	return &DeviceHandler{
		deviceService:   deviceService,
		defaultPageSize: defaultPageSize,
	}
}

// List serves the devices screen. Filters, page and size travel in the query string;
// "clear" drops every filter and returns to the first page.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	query := domain.ParseDeviceQuery(r.URL.Query(), h.defaultPageSize)
	if _, ok := r.URL.Query()["clear"]; ok {
		query = query.Cleared()
	}

	view, err := h.deviceService.List(r.Context(), middleware.GetPrincipal(r), query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, view)
}

func (h *DeviceHandler) Filters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.deviceService.Filters(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, filters)
}
