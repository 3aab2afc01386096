package repository

import (
	"context"
	"net/http"

	"signage-console/internal/domain"
)

type DashboardRepository interface {
	Get(ctx context.Context, p *domain.Principal) (*domain.Dashboard, error)
}

type dashboardRepository struct {
	backend *Backend
}

func NewDashboardRepository(backend *Backend) DashboardRepository {
	return &dashboardRepository{backend: backend}
}

func (r *dashboardRepository) Get(ctx context.Context, p *domain.Principal) (*domain.Dashboard, error) {
	var dashboard domain.Dashboard
	if _, err := r.backend.call(ctx, request{
		method: http.MethodGet,
		path:   accountPath(p.AccountID, "dashboard"),
		token:  p.AccessToken,
	}, &dashboard, "Failed to load dashboard"); err != nil {
		return nil, err
	}

	if dashboard.Campaigns == nil {
		dashboard.Campaigns = []domain.CampaignRef{}
	}
	return &dashboard, nil
}
