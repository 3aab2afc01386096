package repository

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	"signage-console/internal/domain"
)

var ErrMissingCampaignID = errors.New("Server did not return campaignId")

type CampaignRepository interface {
	List(ctx context.Context, p *domain.Principal) ([]domain.Campaign, error)
	Get(ctx context.Context, p *domain.Principal, campaignID domain.ID) (*domain.Campaign, error)
	CreateEmpty(ctx context.Context, p *domain.Principal) (domain.ID, error)
	Rename(ctx context.Context, p *domain.Principal, campaignID domain.ID, name string) error
	PostAction(ctx context.Context, p *domain.Principal, campaignID domain.ID, action domain.CampaignAction) (*domain.Campaign, error)
	Delete(ctx context.Context, p *domain.Principal, campaignID domain.ID) error
	AssignDevices(ctx context.Context, p *domain.Principal, campaignID domain.ID, req domain.AssignDevicesRequest) error
}

type campaignRepository struct {
	backend *Backend
}

func NewCampaignRepository(backend *Backend) CampaignRepository {
	return &campaignRepository{backend: backend}
}

func (r *campaignRepository) List(ctx context.Context, p *domain.Principal) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	if _, err := r.backend.call(ctx, request{
		method: http.MethodGet,
		path:   accountPath(p.AccountID, "campaign"),
		token:  p.AccessToken,
	}, &campaigns, "Failed to fetch campaigns"); err != nil {
		return nil, err
	}

	if campaigns == nil {
		campaigns = []domain.Campaign{}
	}
	for i := range campaigns {
		campaigns[i].Normalize()
	}
	return campaigns, nil
}

func (r *campaignRepository) Get(ctx context.Context, p *domain.Principal, campaignID domain.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	if _, err := r.backend.call(ctx, request{
		method: http.MethodGet,
		path:   accountPath(p.AccountID, "campaign", campaignID.String()),
		token:  p.AccessToken,
	}, &campaign, "Failed to fetch campaign"); err != nil {
		return nil, err
	}

	if campaign.ID.IsZero() {
		campaign.ID = campaignID
	}
	campaign.Normalize()
	return &campaign, nil
}

// CreateEmpty provisions a nameless campaign. The id comes from the JSON body,
// or failing that from the last segment of the Location header.
func (r *campaignRepository) CreateEmpty(ctx context.Context, p *domain.Principal) (domain.ID, error) {
	var created domain.CreatedCampaign
	resp, err := r.backend.call(ctx, request{
		method: http.MethodPost,
		path:   accountPath(p.AccountID, "campaign"),
		token:  p.AccessToken,
	}, &created, "Failed to create empty campaign")
	// A non-JSON body is fine as long as the Location header carries the id.
	if err != nil && !errors.Is(err, errDecode) {
		return "", err
	}

	if !created.ID.IsZero() {
		return created.ID, nil
	}

	if loc := resp.Header.Get("Location"); loc != "" {
		if u, err := url.Parse(loc); err == nil {
			loc = u.Path
		}
		if id := path.Base(strings.TrimRight(loc, "/")); id != "" && id != "." && id != "/" {
			return domain.ID(id), nil
		}
	}

	return "", ErrMissingCampaignID
}

func (r *campaignRepository) Rename(ctx context.Context, p *domain.Principal, campaignID domain.ID, name string) error {
	_, err := r.backend.call(ctx, request{
		method: http.MethodPatch,
		path:   accountPath(p.AccountID, "campaign", campaignID.String(), "name"),
		query:  url.Values{"name": {name}},
		token:  p.AccessToken,
	}, nil, "Failed to update campaign name")
	return err
}

// PostAction sends deploy/play/stop. The backend may answer with the updated
// campaign or with an empty body; nil means "no summary returned".
func (r *campaignRepository) PostAction(ctx context.Context, p *domain.Principal, campaignID domain.ID, action domain.CampaignAction) (*domain.Campaign, error) {
	var updated *domain.Campaign
	if _, err := r.backend.call(ctx, request{
		method: http.MethodPost,
		path:   accountPath(p.AccountID, "campaign", campaignID.String(), string(action)),
		token:  p.AccessToken,
	}, &updated, "Failed to "+string(action)+" campaign"); err != nil {
		if errors.Is(err, errDecode) {
			return nil, nil
		}
		return nil, err
	}

	if updated != nil {
		updated.Normalize()
	}
	return updated, nil
}

func (r *campaignRepository) Delete(ctx context.Context, p *domain.Principal, campaignID domain.ID) error {
	_, err := r.backend.call(ctx, request{
		method: http.MethodDelete,
		path:   accountPath(p.AccountID, "campaign", campaignID.String()),
		token:  p.AccessToken,
	}, nil, "Failed to delete campaign")
	return err
}

// AssignDevices replaces the campaign's device set with req.DeviceIDs.
func (r *campaignRepository) AssignDevices(ctx context.Context, p *domain.Principal, campaignID domain.ID, req domain.AssignDevicesRequest) error {
	if req.DeviceIDs == nil {
		req.DeviceIDs = []domain.ID{}
	}

	body, err := jsonBody(req)
	if err != nil {
		return err
	}

	_, err = r.backend.call(ctx, request{
		method:      http.MethodPut,
		path:        accountPath(p.AccountID, "campaign", campaignID.String(), "devices"),
		token:       p.AccessToken,
		body:        body,
		contentType: "application/json",
	}, nil, "Failed to assign devices")
	return err
}
