package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"signage-console/internal/domain"
	"signage-console/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// UploadFile is one file of a batch; Open is called once, when its turn comes.
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

type MediaService struct {
	media           repository.MediaRepository
	campaigns       repository.CampaignRepository
	concurrency     int
	defaultDuration int
	Logger          *slog.Logger
}

func NewMediaService(media repository.MediaRepository, campaigns repository.CampaignRepository, concurrency, defaultDuration int, logger *slog.Logger) *MediaService {
	if concurrency < 1 {
		concurrency = 1
	}
	if defaultDuration < 1 {
		defaultDuration = 5
	}
	return &MediaService{
		media:           media,
		campaigns:       campaigns,
		concurrency:     concurrency,
		defaultDuration: defaultDuration,
		Logger:          logger,
	}
}

func (s *MediaService) DefaultDuration() int {
	return s.defaultDuration
}

// Update edits one media item. Without an explicit order number the item keeps
// its current order index, or its 1-based position when it has none.
func (s *MediaService) Update(ctx context.Context, p *domain.Principal, campaignID, mediaID domain.ID, req *domain.UpdateMediaRequest) error {
	if req.Name == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	if req.Duration < 1 {
		return &ValidationError{Field: "duration", Message: "Duration must be at least 1"}
	}

	update := domain.MediaUpdate{Name: req.Name, Duration: req.Duration}
	if req.OrderNumber != nil {
		update.OrderNumber = *req.OrderNumber
	} else {
		order, err := s.currentOrder(ctx, p, campaignID, mediaID)
		if err != nil {
			return err
		}
		update.OrderNumber = order
	}

	return s.media.Update(ctx, p, campaignID, mediaID, update)
}

func (s *MediaService) currentOrder(ctx context.Context, p *domain.Principal, campaignID, mediaID domain.ID) (int, error) {
	campaign, err := s.campaigns.Get(ctx, p, campaignID)
	if err != nil {
		return 0, err
	}

	for i, item := range domain.SortMediaItems(campaign.MediaItems) {
		if item.ID != mediaID {
			continue
		}
		if item.Order != nil {
			return *item.Order, nil
		}
		return i + 1, nil
	}
	return 0, &ValidationError{Field: "mediaId", Message: fmt.Sprintf("media item %s not found", mediaID)}
}

// Upload sends every file independently with bounded concurrency. A failed
// file marks only its own row; the batch can finish once any row is done.
// onRow, when set, observes every row transition.
func (s *MediaService) Upload(ctx context.Context, p *domain.Principal, campaignID domain.ID, files []UploadFile, duration int, onRow func(domain.UploadRow)) (*domain.UploadBatch, error) {
	if len(files) == 0 {
		return nil, &ValidationError{Field: "file", Message: "Select at least one file"}
	}
	if duration < 1 {
		duration = s.defaultDuration
	}
	if onRow == nil {
		onRow = func(domain.UploadRow) {}
	}

	batch := &domain.UploadBatch{Rows: make([]domain.UploadRow, len(files))}
	for i, f := range files {
		batch.Rows[i] = domain.UploadRow{
			ID:       uuid.New().String(),
			FileName: f.Name,
			Status:   domain.UploadUploading,
		}
		onRow(batch.Rows[i])
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i := range files {
		i := i
		g.Go(func() error {
			row := &batch.Rows[i]
			if err := s.uploadOne(ctx, p, campaignID, files[i], duration); err != nil {
				row.Status = domain.UploadError
				row.Message = err.Error()
			} else {
				row.Status = domain.UploadDone
			}
			onRow(*row)
			return nil
		})
	}
	g.Wait()

	batch.Settle()

	resolveLogger(s.Logger).Info("media batch uploaded",
		"event", "media_batch_uploaded",
		"module", "service/media",
		"account_id", p.AccountID,
		"campaign_id", campaignID.String(),
		"files", len(files),
		"can_finish", batch.CanFinish,
	)
	return batch, nil
}

func (s *MediaService) uploadOne(ctx context.Context, p *domain.Principal, campaignID domain.ID, file UploadFile, duration int) error {
	content, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer content.Close()

	return s.media.Upload(ctx, p, campaignID, file.Name, content, duration)
}
