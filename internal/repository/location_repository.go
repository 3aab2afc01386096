package repository

import (
	"context"
	"net/http"
	"net/url"

	"signage-console/internal/domain"
)

type LocationRepository interface {
	List(ctx context.Context, p *domain.Principal, terms []string) ([]domain.Location, error)
}

type locationRepository struct {
	backend *Backend
}

func NewLocationRepository(backend *Backend) LocationRepository {
	return &locationRepository{backend: backend}
}

func (r *locationRepository) List(ctx context.Context, p *domain.Principal, terms []string) ([]domain.Location, error) {
	query := url.Values{}
	for _, t := range terms {
		query.Add("searchTerms", t)
	}

	var locations []domain.Location
	if _, err := r.backend.call(ctx, request{
		method: http.MethodGet,
		path:   accountPath(p.AccountID, "locations"),
		query:  query,
		token:  p.AccessToken,
	}, &locations, "Failed to fetch locations"); err != nil {
		return nil, err
	}

	if locations == nil {
		locations = []domain.Location{}
	}
	return locations, nil
}
