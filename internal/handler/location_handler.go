package handler

import (
	"net/http"

	"signage-console/internal/middleware"
	"signage-console/internal/service"
	"signage-console/pkg/response"
)

type LocationHandler struct {
	locationService *service.LocationService
}

func NewLocationHandler(locationService *service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.locationService.Search(r.Context(), middleware.GetPrincipal(r), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, view)
}
