package workflow

import (
	"context"
	"log/slog"
	"sync"

	"signage-console/internal/domain"
	"signage-console/internal/service"
)

type MediaUploader interface {
	Upload(ctx context.Context, p *domain.Principal, campaignID domain.ID, files []service.UploadFile, duration int, onRow func(domain.UploadRow)) (*domain.UploadBatch, error)
	DefaultDuration() int
}

// uploadRows keeps rows newest first, updating a row in place once it settles.
type uploadRows struct {
	rows []domain.UploadRow
}

func (u *uploadRows) record(row domain.UploadRow) {
	for i := range u.rows {
		if u.rows[i].ID == row.ID {
			u.rows[i] = row
			return
		}
	}
	u.rows = append([]domain.UploadRow{row}, u.rows...)
}

func (u *uploadRows) batch() domain.UploadBatch {
	b := domain.UploadBatch{Rows: make([]domain.UploadRow, len(u.rows))}
	copy(b.Rows, u.rows)
	b.Settle()
	return b
}

func (u *uploadRows) uploading() bool {
	for _, r := range u.rows {
		if r.Status == domain.UploadUploading {
			return true
		}
	}
	return false
}

type UploadModal struct {
	mu sync.Mutex
	machine
	campaignID domain.ID
	uploads    uploadRows
}

type UploadView struct {
	State           State              `json:"state"`
	CampaignID      domain.ID          `json:"campaignId"`
	DefaultDuration int                `json:"defaultDuration"`
	Uploading       bool               `json:"uploading"`
	Batch           domain.UploadBatch `json:"batch"`
	Error           string             `json:"error,omitempty"`
}

func (m *UploadModal) record(row domain.UploadRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads.record(row)
}

func (m *UploadModal) view(defaultDuration int) UploadView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return UploadView{
		State:           m.State(),
		CampaignID:      m.campaignID,
		DefaultDuration: defaultDuration,
		Uploading:       m.uploads.uploading(),
		Batch:           m.uploads.batch(),
		Error:           m.err,
	}
}

// UploadFlow drives the "upload media" modal of the campaign detail screen.
type UploadFlow struct {
	media  MediaUploader
	modals *Registry[*UploadModal]
	Logger *slog.Logger
}

func NewUploadFlow(media MediaUploader, logger *slog.Logger) *UploadFlow {
	return &UploadFlow{
		media:  media,
		modals: NewRegistry[*UploadModal](),
		Logger: logger,
	}
}

// Open always starts from an empty modal.
func (f *UploadFlow) Open(sessionID string, campaignID domain.ID) UploadView {
	m := &UploadModal{campaignID: campaignID}
	m.move(StateReady, StateClosed)
	f.modals.Put(sessionID, campaignID, m)
	return m.view(f.media.DefaultDuration())
}

// Submit uploads files into the campaign, opening the modal first if needed.
// Rows settle one by one; the modal returns to ready for further uploads.
func (f *UploadFlow) Submit(ctx context.Context, p *domain.Principal, campaignID domain.ID, files []service.UploadFile, duration int) (UploadView, error) {
	m, err := f.modals.Get(p.SessionID, campaignID)
	if err != nil {
		f.Open(p.SessionID, campaignID)
		m, _ = f.modals.Get(p.SessionID, campaignID)
	}

	m.mu.Lock()
	err = m.move(StateSubmitting, StateReady, StateError)
	m.mu.Unlock()
	if err != nil {
		return m.view(f.media.DefaultDuration()), err
	}

	_, err = f.media.Upload(ctx, p, campaignID, files, duration, m.record)

	m.mu.Lock()
	if err != nil {
		m.fail(err)
	} else {
		m.move(StateReady, StateSubmitting)
	}
	m.mu.Unlock()

	return m.view(f.media.DefaultDuration()), err
}

func (f *UploadFlow) View(sessionID string, campaignID domain.ID) (UploadView, error) {
	m, err := f.modals.Get(sessionID, campaignID)
	if err != nil {
		return UploadView{}, err
	}
	return m.view(f.media.DefaultDuration()), nil
}

// Finish closes the modal once at least one file made it.
func (f *UploadFlow) Finish(sessionID string, campaignID domain.ID) (UploadView, error) {
	m, err := f.modals.Get(sessionID, campaignID)
	if err != nil {
		return UploadView{}, err
	}

	m.mu.Lock()
	if !m.uploads.batch().CanFinish {
		m.mu.Unlock()
		return m.view(f.media.DefaultDuration()), ErrWorkflowState
	}
	err = m.move(StateDone, StateReady)
	m.mu.Unlock()
	if err != nil {
		return m.view(f.media.DefaultDuration()), err
	}

	f.modals.Remove(sessionID, campaignID)
	return m.view(f.media.DefaultDuration()), nil
}

func (f *UploadFlow) Close(sessionID string, campaignID domain.ID) {
	f.modals.Remove(sessionID, campaignID)
}

func (f *UploadFlow) DropSession(sessionID string) {
	f.modals.DropSession(sessionID)
}
