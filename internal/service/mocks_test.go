package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"signage-console/internal/domain"
	"signage-console/internal/repository"
)

type mockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	saves    int
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{
		sessions: make(map[string]domain.Session),
	}
}

func (m *mockSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *mockSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	m.saves++
	return nil
}

func (m *mockSessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type mockAuthRepository struct {
	pair         *domain.TokenPair
	authErr      error
	registerErr  error
	refresh      func(refreshToken string) (string, error)
	refreshCalls atomic.Int32
}

func (m *mockAuthRepository) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.TokenPair, error) {
	if m.authErr != nil {
		return nil, m.authErr
	}
	return m.pair, nil
}

func (m *mockAuthRepository) Register(ctx context.Context, creds domain.Credentials) error {
	return m.registerErr
}

func (m *mockAuthRepository) Refresh(ctx context.Context, refreshToken string) (string, error) {
	m.refreshCalls.Add(1)
	if m.refresh == nil {
		return "", errors.New("refresh not configured")
	}
	return m.refresh(refreshToken)
}

type mockCampaignRepository struct {
	campaigns map[domain.ID]domain.Campaign
	order     []domain.ID
	actionErr error
	summary   *domain.Campaign

	actions []domain.CampaignAction
	deleted []domain.ID
	gets    int
	renamed map[domain.ID]string
	created domain.ID
}

func newMockCampaignRepository(campaigns ...domain.Campaign) *mockCampaignRepository {
	m := &mockCampaignRepository{
		campaigns: make(map[domain.ID]domain.Campaign),
		renamed:   make(map[domain.ID]string),
		created:   "100",
	}
	for _, c := range campaigns {
		c.Normalize()
		m.campaigns[c.ID] = c
		m.order = append(m.order, c.ID)
	}
	return m
}

func (m *mockCampaignRepository) List(ctx context.Context, p *domain.Principal) ([]domain.Campaign, error) {
	out := make([]domain.Campaign, 0, len(m.order))
	for _, id := range m.order {
		if c, ok := m.campaigns[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCampaignRepository) Get(ctx context.Context, p *domain.Principal, campaignID domain.ID) (*domain.Campaign, error) {
	m.gets++
	c, ok := m.campaigns[campaignID]
	if !ok {
		return nil, &repository.APIError{Status: 404, Message: "Failed to fetch campaign"}
	}
	return &c, nil
}

func (m *mockCampaignRepository) CreateEmpty(ctx context.Context, p *domain.Principal) (domain.ID, error) {
	m.campaigns[m.created] = domain.Campaign{ID: m.created, Status: domain.CampaignStatusPrepared}
	m.order = append(m.order, m.created)
	return m.created, nil
}

func (m *mockCampaignRepository) Rename(ctx context.Context, p *domain.Principal, campaignID domain.ID, name string) error {
	m.renamed[campaignID] = name
	return nil
}

func (m *mockCampaignRepository) PostAction(ctx context.Context, p *domain.Principal, campaignID domain.ID, action domain.CampaignAction) (*domain.Campaign, error) {
	m.actions = append(m.actions, action)
	if m.actionErr != nil {
		return nil, m.actionErr
	}
	return m.summary, nil
}

func (m *mockCampaignRepository) Delete(ctx context.Context, p *domain.Principal, campaignID domain.ID) error {
	m.deleted = append(m.deleted, campaignID)
	delete(m.campaigns, campaignID)
	return nil
}

func (m *mockCampaignRepository) AssignDevices(ctx context.Context, p *domain.Principal, campaignID domain.ID, req domain.AssignDevicesRequest) error {
	c := m.campaigns[campaignID]
	c.Devices = c.Devices[:0]
	for _, id := range req.DeviceIDs {
		c.Devices = append(c.Devices, domain.Device{ID: id})
	}
	m.campaigns[campaignID] = c
	return nil
}

type mockMediaRepository struct {
	mu       sync.Mutex
	updates  []domain.MediaUpdate
	uploaded map[string]string
	failFor  map[string]bool
}

func newMockMediaRepository() *mockMediaRepository {
	return &mockMediaRepository{
		uploaded: make(map[string]string),
		failFor:  make(map[string]bool),
	}
}

func (m *mockMediaRepository) Update(ctx context.Context, p *domain.Principal, campaignID, mediaID domain.ID, update domain.MediaUpdate) error {
	m.updates = append(m.updates, update)
	return nil
}

func (m *mockMediaRepository) Upload(ctx context.Context, p *domain.Principal, campaignID domain.ID, fileName string, content io.Reader, duration int) error {
	data, _ := io.ReadAll(content)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[fileName] {
		return &repository.APIError{Status: 413, Message: "Failed to upload " + fileName}
	}
	m.uploaded[fileName] = string(data)
	return nil
}
