package handler

import (
	"errors"
	"net/http"

	"signage-console/internal/middleware"
	"signage-console/internal/service"
	"signage-console/pkg/response"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Home serves the dashboard snapshot. When a refresh fails after an earlier
// success, the previous summary is still served with the error attached.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.dashboardService.Load(r.Context(), middleware.GetPrincipal(r))
	if err != nil && (snapshot.Data == nil || errors.Is(err, service.ErrNotAuthenticated)) {
		writeError(w, r, err)
		return
	}

	response.Success(w, snapshot)
}
