package repository

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"signage-console/internal/domain"
)

type MediaRepository interface {
	Update(ctx context.Context, p *domain.Principal, campaignID, mediaID domain.ID, update domain.MediaUpdate) error
	Upload(ctx context.Context, p *domain.Principal, campaignID domain.ID, fileName string, content io.Reader, duration int) error
}

type mediaRepository struct {
	backend *Backend
}

func NewMediaRepository(backend *Backend) MediaRepository {
	return &mediaRepository{backend: backend}
}

func (r *mediaRepository) Update(ctx context.Context, p *domain.Principal, campaignID, mediaID domain.ID, update domain.MediaUpdate) error {
	body, err := jsonBody(update)
	if err != nil {
		return err
	}

	_, err = r.backend.call(ctx, request{
		method:      http.MethodPut,
		path:        accountPath(p.AccountID, "campaign", campaignID.String(), "media", mediaID.String()),
		token:       p.AccessToken,
		body:        body,
		contentType: "application/json",
	}, nil, "Failed to update media item")
	return err
}

// Upload streams one file as multipart (file + duration) without buffering it whole.
// content is no longer read once Upload returns.
func (r *mediaRepository) Upload(ctx context.Context, p *domain.Principal, campaignID domain.ID, fileName string, content io.Reader, duration int) error {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	done := make(chan struct{})

	go func() {
		defer close(done)
		part, err := form.CreateFormFile("file", fileName)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to stream %s: %w", fileName, err))
			return
		}
		if err := form.WriteField("duration", strconv.Itoa(duration)); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	_, err := r.backend.call(ctx, request{
		method:      http.MethodPost,
		path:        accountPath(p.AccountID, "campaign", campaignID.String(), "media"),
		token:       p.AccessToken,
		body:        pr,
		contentType: form.FormDataContentType(),
	}, nil, "Failed to upload "+fileName)

	// Unblocks the writer goroutine if the request ended before the body was drained.
	pr.CloseWithError(io.ErrClosedPipe)
	<-done
	return err
}
