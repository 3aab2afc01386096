package service

import (
	"context"

	"signage-console/internal/domain"
	"signage-console/internal/repository"
)

type LocationService struct {
	repo repository.LocationRepository
}

func NewLocationService(repo repository.LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

func (s *LocationService) Search(ctx context.Context, p *domain.Principal, text string) (*domain.LocationsView, error) {
	terms := domain.SearchTerms(text)
	locations, err := s.repo.List(ctx, p, terms)
	if err != nil {
		return nil, err
	}
	return &domain.LocationsView{Terms: terms, Locations: locations}, nil
}
