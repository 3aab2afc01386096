package service

import (
	"context"
	"log/slog"
	"sync"

	"signage-console/internal/domain"
	"signage-console/internal/repository"
)

// CampaignService gates lifecycle actions on the last status the session saw
// and merges backend summaries into that per-session view by id.
type CampaignService struct {
	repo   repository.CampaignRepository
	Logger *slog.Logger

	mu    sync.Mutex
	known map[string]map[domain.ID]domain.Campaign
}

func NewCampaignService(repo repository.CampaignRepository, logger *slog.Logger) *CampaignService {
	return &CampaignService{
		repo:   repo,
		Logger: logger,
		known:  make(map[string]map[domain.ID]domain.Campaign),
	}
}

// List loads all campaigns and keeps those whose name or status contains search.
func (s *CampaignService) List(ctx context.Context, p *domain.Principal, search string) (*domain.CampaignsView, error) {
	campaigns, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}

	s.remember(p.SessionID, campaigns...)
	return &domain.CampaignsView{
		Search: search,
		Rows:   FilterCampaigns(campaigns, search),
	}, nil
}

// FilterCampaigns keeps backend order and attaches each row's eligible actions.
func FilterCampaigns(campaigns []domain.Campaign, search string) []domain.CampaignRow {
	rows := make([]domain.CampaignRow, 0, len(campaigns))
	for i := range campaigns {
		if campaigns[i].MatchesSearch(search) {
			rows = append(rows, domain.NewCampaignRow(campaigns[i]))
		}
	}
	return rows
}

func (s *CampaignService) Detail(ctx context.Context, p *domain.Principal, campaignID domain.ID) (*domain.CampaignDetailView, error) {
	campaign, err := s.repo.Get(ctx, p, campaignID)
	if err != nil {
		return nil, err
	}

	campaign.MediaItems = domain.SortMediaItems(campaign.MediaItems)
	for i := range campaign.MediaItems {
		campaign.MediaItems[i].SizeDisplay = domain.FormatSizeMB(campaign.MediaItems[i].Size)
	}
	s.remember(p.SessionID, *campaign)
	return &domain.CampaignDetailView{Campaign: domain.NewCampaignRow(*campaign)}, nil
}

// Act runs deploy, play or stop. Ineligible actions fail with
// ErrActionNotAllowed before anything is sent.
func (s *CampaignService) Act(ctx context.Context, p *domain.Principal, campaignID domain.ID, rawAction string) (*domain.CampaignRow, error) {
	action, ok := domain.ParseCampaignAction(rawAction)
	if !ok || !action.IsStatusAction() {
		return nil, ErrInvalidAction
	}

	current, err := s.current(ctx, p, campaignID)
	if err != nil {
		return nil, err
	}
	if !current.Status.Allows(action) {
		return nil, ErrActionNotAllowed
	}

	updated, err := s.repo.PostAction(ctx, p, campaignID, action)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// No summary came back; the status the server moved to is only known after a refetch.
		if fresh, err := s.repo.Get(ctx, p, campaignID); err == nil {
			updated = fresh
		}
	}

	merged := s.merge(p.SessionID, *current, updated)
	resolveLogger(s.Logger).Info("campaign action applied",
		"event", "campaign_action_applied",
		"module", "service/campaign",
		"account_id", p.AccountID,
		"campaign_id", campaignID.String(),
		"action", string(action),
		"status", string(merged.Status),
	)

	row := domain.NewCampaignRow(merged)
	return &row, nil
}

func (s *CampaignService) Delete(ctx context.Context, p *domain.Principal, campaignID domain.ID) error {
	current, err := s.current(ctx, p, campaignID)
	if err != nil {
		return err
	}
	if !current.Status.CanDelete() {
		return ErrActionNotAllowed
	}

	if err := s.repo.Delete(ctx, p, campaignID); err != nil {
		return err
	}
	s.forget(p.SessionID, campaignID)
	return nil
}

// Discard deletes a campaign without status gating. The create wizard uses it
// to undo a campaign it provisioned itself.
func (s *CampaignService) Discard(ctx context.Context, p *domain.Principal, campaignID domain.ID) error {
	if err := s.repo.Delete(ctx, p, campaignID); err != nil {
		return err
	}
	s.forget(p.SessionID, campaignID)
	return nil
}

func (s *CampaignService) CreateEmpty(ctx context.Context, p *domain.Principal) (domain.ID, error) {
	return s.repo.CreateEmpty(ctx, p)
}

func (s *CampaignService) Rename(ctx context.Context, p *domain.Principal, campaignID domain.ID, name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	if err := s.repo.Rename(ctx, p, campaignID, name); err != nil {
		return err
	}
	s.Invalidate(p.SessionID, campaignID)
	return nil
}

func (s *CampaignService) AssignDevices(ctx context.Context, p *domain.Principal, campaignID domain.ID, req domain.AssignDevicesRequest) error {
	if err := s.repo.AssignDevices(ctx, p, campaignID, req); err != nil {
		return err
	}
	s.Invalidate(p.SessionID, campaignID)
	return nil
}

// Invalidate drops the session's copy of a campaign after it was changed
// elsewhere; the next gate refetches it.
func (s *CampaignService) Invalidate(sessionID string, campaignID domain.ID) {
	s.forget(sessionID, campaignID)
}

// Forget drops everything remembered for a session.
func (s *CampaignService) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.known, sessionID)
}

func (s *CampaignService) current(ctx context.Context, p *domain.Principal, campaignID domain.ID) (*domain.Campaign, error) {
	s.mu.Lock()
	c, ok := s.known[p.SessionID][campaignID]
	s.mu.Unlock()
	if ok {
		return &c, nil
	}

	campaign, err := s.repo.Get(ctx, p, campaignID)
	if err != nil {
		return nil, err
	}
	s.remember(p.SessionID, *campaign)
	return campaign, nil
}

func (s *CampaignService) remember(sessionID string, campaigns ...domain.Campaign) {
	for _, c := range campaigns {
		if !c.Status.IsKnown() {
			resolveLogger(s.Logger).Warn("campaign has an unrecognized status",
				"event", "campaign_status_unknown",
				"module", "service/campaign",
				"session_id", sessionID,
				"campaign_id", c.ID.String(),
				"status", string(c.Status),
			)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.known[sessionID]
	if !ok {
		byID = make(map[domain.ID]domain.Campaign)
		s.known[sessionID] = byID
	}
	for _, c := range campaigns {
		byID[c.ID] = c
	}
}

// merge overlays a returned summary onto the known campaign. Collections the
// summary leaves empty keep their previous value. Without a summary the
// known copy is dropped so the next action gates on a refetched status.
func (s *CampaignService) merge(sessionID string, current domain.Campaign, updated *domain.Campaign) domain.Campaign {
	if updated == nil {
		s.forget(sessionID, current.ID)
		return current
	}

	merged := *updated
	if merged.ID.IsZero() {
		merged.ID = current.ID
	}
	if merged.Name == "" {
		merged.Name = current.Name
	}
	if len(merged.MediaItems) == 0 {
		merged.MediaItems = current.MediaItems
	}
	if len(merged.Devices) == 0 {
		merged.Devices = current.Devices
	}
	merged.Normalize()

	s.remember(sessionID, merged)
	return merged
}

func (s *CampaignService) forget(sessionID string, campaignID domain.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.known[sessionID], campaignID)
}
