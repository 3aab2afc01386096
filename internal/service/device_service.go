package service

import (
	"context"

	"signage-console/internal/domain"
	"signage-console/internal/repository"
)

type DeviceService struct {
	repo repository.DeviceRepository
}

func NewDeviceService(repo repository.DeviceRepository) *DeviceService {
	return &DeviceService{
		repo: repo,
	}
}

// List fetches one page for the devices screen along with the filter options.
func (s *DeviceService) List(ctx context.Context, p *domain.Principal, query domain.DeviceQuery) (*domain.DevicesView, error) {
	page, err := s.repo.List(ctx, p, query)
	if err != nil {
		return nil, err
	}

	filters, err := s.repo.Filters(ctx, p)
	if err != nil {
		return nil, err
	}

	return &domain.DevicesView{
		Query:      query,
		Devices:    withHeartbeatDisplay(page.Content),
		TotalPages: page.TotalPages,
		HasPrev:    query.Page > 0,
		HasNext:    query.Page+1 < page.TotalPages,
		PageSizes:  domain.PageSizes,
		Filters:    *filters,
	}, nil
}

func (s *DeviceService) Filters(ctx context.Context, p *domain.Principal) (*domain.FilterOptions, error) {
	return s.repo.Filters(ctx, p)
}

func (s *DeviceService) Available(ctx context.Context, p *domain.Principal) ([]domain.Device, error) {
	devices, err := s.repo.Available(ctx, p)
	if err != nil {
		return nil, err
	}
	return withHeartbeatDisplay(devices), nil
}

func withHeartbeatDisplay(devices []domain.Device) []domain.Device {
	for i := range devices {
		devices[i].HeartbeatDisplay = domain.FormatHeartbeat(devices[i].Heartbeat)
	}
	return devices
}
