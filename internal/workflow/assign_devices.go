package workflow

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"signage-console/internal/domain"
)

// AllLocations is the location filter value that shows every device.
const AllLocations = "ALL"

type DeviceSource interface {
	Available(ctx context.Context, p *domain.Principal) ([]domain.Device, error)
}

type CampaignAssigner interface {
	Detail(ctx context.Context, p *domain.Principal, campaignID domain.ID) (*domain.CampaignDetailView, error)
	AssignDevices(ctx context.Context, p *domain.Principal, campaignID domain.ID, req domain.AssignDevicesRequest) error
}

type AssignModal struct {
	mu sync.Mutex
	machine
	campaignID domain.ID
	devices    []domain.Device
	selected   map[domain.ID]bool
	location   string
}

type AssignView struct {
	State      State           `json:"state"`
	CampaignID domain.ID       `json:"campaignId"`
	Location   string          `json:"location"`
	Locations  []string        `json:"locations"`
	Devices    []domain.Device `json:"devices"`
	Selected   []domain.ID     `json:"selected"`
	Error      string          `json:"error,omitempty"`
}

// locations lists "ALL" then the distinct device locations, case-insensitively sorted.
func (m *AssignModal) locations() []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, d := range m.devices {
		if !seen[d.LocationName] {
			seen[d.LocationName] = true
			names = append(names, d.LocationName)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return append([]string{AllLocations}, names...)
}

func (m *AssignModal) visible() []domain.Device {
	if m.location == AllLocations {
		out := make([]domain.Device, len(m.devices))
		copy(out, m.devices)
		return out
	}
	out := make([]domain.Device, 0)
	for _, d := range m.devices {
		if d.LocationName == m.location {
			out = append(out, d)
		}
	}
	return out
}

// selection returns selected ids: loaded devices first in list order, then
// preselected ids the list does not contain.
func (m *AssignModal) selection() []domain.ID {
	ids := make([]domain.ID, 0, len(m.selected))
	listed := make(map[domain.ID]bool, len(m.devices))
	for _, d := range m.devices {
		listed[d.ID] = true
		if m.selected[d.ID] {
			ids = append(ids, d.ID)
		}
	}

	var extra []domain.ID
	for id, on := range m.selected {
		if on && !listed[id] {
			extra = append(extra, id)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(ids, extra...)
}

func (m *AssignModal) view() AssignView {
	return AssignView{
		State:      m.State(),
		CampaignID: m.campaignID,
		Location:   m.location,
		Locations:  m.locations(),
		Devices:    m.visible(),
		Selected:   m.selection(),
		Error:      m.err,
	}
}

type AssignDevicesFlow struct {
	devices   DeviceSource
	campaigns CampaignAssigner
	modals    *Registry[*AssignModal]
	Logger    *slog.Logger
}

func NewAssignDevicesFlow(devices DeviceSource, campaigns CampaignAssigner, logger *slog.Logger) *AssignDevicesFlow {
	return &AssignDevicesFlow{
		devices:   devices,
		campaigns: campaigns,
		modals:    NewRegistry[*AssignModal](),
		Logger:    logger,
	}
}

// Open loads available devices and preselects the campaign's current ones.
// A load failure leaves the modal open in the error state.
func (f *AssignDevicesFlow) Open(ctx context.Context, p *domain.Principal, campaignID domain.ID) (AssignView, error) {
	m := &AssignModal{
		campaignID: campaignID,
		selected:   make(map[domain.ID]bool),
		location:   AllLocations,
	}
	m.move(StateLoading, StateClosed)
	f.modals.Put(p.SessionID, campaignID, m)

	detail, err := f.campaigns.Detail(ctx, p, campaignID)
	var devices []domain.Device
	if err == nil {
		devices, err = f.devices.Available(ctx, p)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.fail(err)
		return m.view(), err
	}
	for _, id := range detail.Campaign.DeviceIDs() {
		m.selected[id] = true
	}
	m.devices = devices
	m.move(StateReady, StateLoading)
	return m.view(), nil
}

func (f *AssignDevicesFlow) View(sessionID string, campaignID domain.ID) (AssignView, error) {
	return f.update(sessionID, campaignID, func(m *AssignModal) error { return nil })
}

func (f *AssignDevicesFlow) Toggle(sessionID string, campaignID, deviceID domain.ID) (AssignView, error) {
	return f.update(sessionID, campaignID, func(m *AssignModal) error {
		if err := m.editable(); err != nil {
			return err
		}
		if m.selected[deviceID] {
			delete(m.selected, deviceID)
		} else {
			m.selected[deviceID] = true
		}
		return nil
	})
}

// Filter changes which devices are shown. The selection is untouched.
func (f *AssignDevicesFlow) Filter(sessionID string, campaignID domain.ID, location string) (AssignView, error) {
	return f.update(sessionID, campaignID, func(m *AssignModal) error {
		if err := m.editable(); err != nil {
			return err
		}
		if location == "" {
			location = AllLocations
		}
		m.location = location
		return nil
	})
}

func (f *AssignDevicesFlow) Clear(sessionID string, campaignID domain.ID) (AssignView, error) {
	return f.update(sessionID, campaignID, func(m *AssignModal) error {
		if err := m.editable(); err != nil {
			return err
		}
		m.selected = make(map[domain.ID]bool)
		return nil
	})
}

// Submit replaces the campaign's devices with the full selection, including
// devices hidden by the location filter.
func (f *AssignDevicesFlow) Submit(ctx context.Context, p *domain.Principal, campaignID domain.ID, prepared bool) (AssignView, error) {
	m, err := f.modals.Get(p.SessionID, campaignID)
	if err != nil {
		return AssignView{}, err
	}

	m.mu.Lock()
	if err := m.move(StateSubmitting, StateReady, StateError); err != nil {
		v := m.view()
		m.mu.Unlock()
		return v, err
	}
	ids := m.selection()
	m.mu.Unlock()

	err = f.campaigns.AssignDevices(ctx, p, campaignID, domain.AssignDevicesRequest{
		DeviceIDs: ids,
		Prepared:  prepared,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.fail(err)
		return m.view(), err
	}

	m.move(StateDone, StateSubmitting)
	f.modals.Remove(p.SessionID, campaignID)

	resolveLogger(f.Logger).Info("campaign devices assigned",
		"event", "campaign_devices_assigned",
		"module", "workflow/assign_devices",
		"account_id", p.AccountID,
		"campaign_id", campaignID.String(),
		"devices", len(ids),
		"prepared", prepared,
	)
	return m.view(), nil
}

func (f *AssignDevicesFlow) Close(sessionID string, campaignID domain.ID) {
	f.modals.Remove(sessionID, campaignID)
}

func (f *AssignDevicesFlow) DropSession(sessionID string) {
	f.modals.DropSession(sessionID)
}

func (f *AssignDevicesFlow) update(sessionID string, campaignID domain.ID, change func(*AssignModal) error) (AssignView, error) {
	m, err := f.modals.Get(sessionID, campaignID)
	if err != nil {
		return AssignView{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	err = change(m)
	return m.view(), err
}

func (m *AssignModal) editable() error {
	switch m.State() {
	case StateReady, StateError:
		return nil
	default:
		return ErrWorkflowState
	}
}
