package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"signage-console/internal/domain"
	"signage-console/internal/service"
)

type CampaignCreator interface {
	CreateEmpty(ctx context.Context, p *domain.Principal) (domain.ID, error)
	Rename(ctx context.Context, p *domain.Principal, campaignID domain.ID, name string) error
	Discard(ctx context.Context, p *domain.Principal, campaignID domain.ID) error
}

// Wizard is the "create campaign & upload" modal bound to the campaign it provisioned.
type Wizard struct {
	mu sync.Mutex
	machine
	campaignID domain.ID
	uploads    uploadRows
}

type WizardView struct {
	State            State              `json:"state"`
	CampaignID       domain.ID          `json:"campaignId"`
	DefaultDuration  int                `json:"defaultDuration"`
	Uploading        bool               `json:"uploading"`
	Batch            domain.UploadBatch `json:"batch"`
	CanAssignDevices bool               `json:"canAssignDevices"`
	Error            string             `json:"error,omitempty"`
}

func (w *Wizard) record(row domain.UploadRow) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.uploads.record(row)
}

func (w *Wizard) view(defaultDuration int) WizardView {
	w.mu.Lock()
	defer w.mu.Unlock()
	batch := w.uploads.batch()
	return WizardView{
		State:            w.State(),
		CampaignID:       w.campaignID,
		DefaultDuration:  defaultDuration,
		Uploading:        w.uploads.uploading(),
		Batch:            batch,
		CanAssignDevices: batch.CanFinish,
		Error:            w.err,
	}
}

type CreateCampaignFlow struct {
	campaigns CampaignCreator
	media     MediaUploader
	wizards   *Registry[*Wizard]
	Logger    *slog.Logger
}

func NewCreateCampaignFlow(campaigns CampaignCreator, media MediaUploader, logger *slog.Logger) *CreateCampaignFlow {
	return &CreateCampaignFlow{
		campaigns: campaigns,
		media:     media,
		wizards:   NewRegistry[*Wizard](),
		Logger:    logger,
	}
}

// Open provisions an empty campaign and binds a fresh wizard to it.
func (f *CreateCampaignFlow) Open(ctx context.Context, p *domain.Principal) (WizardView, error) {
	w := &Wizard{}
	w.move(StateLoading, StateClosed)

	id, err := f.campaigns.CreateEmpty(ctx, p)
	if err != nil {
		w.fail(err)
		return w.view(f.media.DefaultDuration()), err
	}

	w.campaignID = id
	w.move(StateReady, StateLoading)
	f.wizards.Put(p.SessionID, id, w)

	resolveLogger(f.Logger).Info("campaign wizard opened",
		"event", "campaign_wizard_opened",
		"module", "workflow/create_campaign",
		"account_id", p.AccountID,
		"campaign_id", id.String(),
	)
	return w.view(f.media.DefaultDuration()), nil
}

func (f *CreateCampaignFlow) View(sessionID string, campaignID domain.ID) (WizardView, error) {
	w, err := f.wizards.Get(sessionID, campaignID)
	if err != nil {
		return WizardView{}, err
	}
	return w.view(f.media.DefaultDuration()), nil
}

// Upload adds files to the wizard's campaign. The wizard stays ready; failed
// rows do not block further uploads.
func (f *CreateCampaignFlow) Upload(ctx context.Context, p *domain.Principal, campaignID domain.ID, files []service.UploadFile, duration int) (WizardView, error) {
	w, err := f.wizards.Get(p.SessionID, campaignID)
	if err != nil {
		return WizardView{}, err
	}

	w.mu.Lock()
	if s := w.State(); s != StateReady && s != StateError {
		w.mu.Unlock()
		return w.view(f.media.DefaultDuration()), fmt.Errorf("%w: upload while %s", ErrWorkflowState, s)
	}
	w.mu.Unlock()

	_, err = f.media.Upload(ctx, p, campaignID, files, duration, w.record)
	return w.view(f.media.DefaultDuration()), err
}

// Save renames the campaign when name is non-blank and closes the wizard.
// It returns the path of the campaign detail screen.
func (f *CreateCampaignFlow) Save(ctx context.Context, p *domain.Principal, campaignID domain.ID, name string) (string, error) {
	w, err := f.wizards.Get(p.SessionID, campaignID)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	err = w.move(StateSubmitting, StateReady, StateError)
	w.mu.Unlock()
	if err != nil {
		return "", err
	}

	if trimmed := strings.TrimSpace(name); trimmed != "" {
		if err := f.campaigns.Rename(ctx, p, campaignID, trimmed); err != nil {
			w.mu.Lock()
			w.fail(err)
			w.mu.Unlock()
			return "", err
		}
	}

	w.mu.Lock()
	w.move(StateDone, StateSubmitting)
	w.mu.Unlock()
	f.wizards.Remove(p.SessionID, campaignID)

	return "/dashboard/campaigns/" + campaignID.String(), nil
}

// Cancel deletes the provisioned campaign. The wizard closes even when the
// delete fails; the error is still reported.
func (f *CreateCampaignFlow) Cancel(ctx context.Context, p *domain.Principal, campaignID domain.ID) error {
	w, err := f.wizards.Get(p.SessionID, campaignID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if w.State() == StateSubmitting {
		w.mu.Unlock()
		return fmt.Errorf("%w: cancel while submitting", ErrWorkflowState)
	}
	w.state = StateClosed
	w.mu.Unlock()
	f.wizards.Remove(p.SessionID, campaignID)

	if err := f.campaigns.Discard(ctx, p, campaignID); err != nil {
		resolveLogger(f.Logger).Warn("campaign wizard cancel left campaign behind",
			"event", "campaign_wizard_discard_failed",
			"module", "workflow/create_campaign",
			"account_id", p.AccountID,
			"campaign_id", campaignID.String(),
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func (f *CreateCampaignFlow) DropSession(sessionID string) {
	f.wizards.DropSession(sessionID)
}
