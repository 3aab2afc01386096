package service

import (
	"context"
	"sync"

	"signage-console/internal/domain"
	"signage-console/internal/listing"
	"signage-console/internal/repository"
)

type DashboardService struct {
	repo repository.DashboardRepository

	mu      sync.Mutex
	screens map[string]*listing.Screen[*domain.DashboardView]
}

func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{
		repo:    repo,
		screens: make(map[string]*listing.Screen[*domain.DashboardView]),
	}
}

func (s *DashboardService) Summary(ctx context.Context, p *domain.Principal) (*domain.DashboardView, error) {
	dashboard, err := s.repo.Get(ctx, p)
	if err != nil {
		return nil, err
	}

	percent := domain.StoragePercent(dashboard.StorageUsage)
	return &domain.DashboardView{
		NumberOfActiveDevices: dashboard.NumberOfActiveDevices,
		NumberOfLocations:     dashboard.NumberOfLocations,
		StoragePercent:        percent,
		StorageTier:           domain.StorageTier(percent),
		Campaigns:             dashboard.Campaigns,
	}, nil
}

// Load refreshes the session's dashboard screen. A failed refresh keeps the
// last good summary in the snapshot next to the error.
func (s *DashboardService) Load(ctx context.Context, p *domain.Principal) (listing.Snapshot[*domain.DashboardView], error) {
	screen := s.screen(p.SessionID)
	screen.Begin()

	view, err := s.Summary(ctx, p)
	if err != nil {
		screen.Fail(err)
		return screen.Snapshot(), err
	}

	screen.Succeed(view)
	return screen.Snapshot(), nil
}

func (s *DashboardService) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.screens, sessionID)
}

func (s *DashboardService) screen(sessionID string) *listing.Screen[*domain.DashboardView] {
	s.mu.Lock()
	defer s.mu.Unlock()
	screen, ok := s.screens[sessionID]
	if !ok {
		screen = listing.NewScreen[*domain.DashboardView](true)
		s.screens[sessionID] = screen
	}
	return screen
}
