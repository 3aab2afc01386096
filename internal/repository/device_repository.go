package repository

import (
	"context"
	"net/http"

	"signage-console/internal/domain"
)

type DeviceRepository interface {
	List(ctx context.Context, p *domain.Principal, query domain.DeviceQuery) (*domain.DevicePage, error)
	Filters(ctx context.Context, p *domain.Principal) (*domain.FilterOptions, error)
	Available(ctx context.Context, p *domain.Principal) ([]domain.Device, error)
}

type deviceRepository struct {
	backend *Backend
}

func NewDeviceRepository(backend *Backend) DeviceRepository {
	return &deviceRepository{backend: backend}
}

func (r *deviceRepository) List(ctx context.Context, p *domain.Principal, query domain.DeviceQuery) (*domain.DevicePage, error) {
	var page domain.DevicePage
	if _, err := r.backend.call(ctx, request{
		method: http.MethodGet,
		path:   accountPath(p.AccountID, "devices"),
		query:  query.Values(),
		token:  p.AccessToken,
	}, &page, "Failed to fetch devices"); err != nil {
		return nil, err
	}

	if page.Content == nil {
		page.Content = []domain.Device{}
	}
	if page.TotalPages < 0 {
		page.TotalPages = 0
	}
	return &page, nil
}

func (r *deviceRepository) Filters(ctx context.Context, p *domain.Principal) (*domain.FilterOptions, error) {
	var filters domain.FilterOptions
	if _, err := r.backend.call(ctx, request{
		method: http.MethodGet,
		path:   accountPath(p.AccountID, "filter"),
		token:  p.AccessToken,
	}, &filters, "Failed to load filters"); err != nil {
		return nil, err
	}

	filters.Normalize()
	return &filters, nil
}

// Available lists devices that may be assigned to a campaign.
func (r *deviceRepository) Available(ctx context.Context, p *domain.Principal) ([]domain.Device, error) {
	var devices []domain.Device
	if _, err := r.backend.call(ctx, request{
		method: http.MethodGet,
		path:   accountPath(p.AccountID, "available-devices"),
		token:  p.AccessToken,
	}, &devices, "Failed to load devices"); err != nil {
		return nil, err
	}

	if devices == nil {
		devices = []domain.Device{}
	}
	return devices, nil
}
