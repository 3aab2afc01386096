package domain

import (
	"fmt"
	"sort"
)

type MediaItem struct {
	ID        ID       `json:"id"`
	Name      string   `json:"name"`
	Extension string   `json:"extension"`
	Duration  int      `json:"duration"`
	Size      *float64 `json:"size,omitempty"`
	// SizeDisplay is Size as the media table shows it.
	SizeDisplay string `json:"sizeDisplay"`
	Status      string `json:"mediaItemStatus"`
	URL         string `json:"mediaItemUrl"`
	Order       *int   `json:"itemOrder,omitempty"`
}

func (m MediaItem) OrderIndex() int {
	if m.Order == nil {
		return 0
	}
	return *m.Order
}

// SortMediaItems orders a copy by order index; ties keep backend order.
func SortMediaItems(items []MediaItem) []MediaItem {
	sorted := make([]MediaItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderIndex() < sorted[j].OrderIndex()
	})
	return sorted
}

type UpdateMediaRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Duration    int    `json:"duration" validate:"required,min=1"`
	OrderNumber *int   `json:"orderNumber,omitempty" validate:"omitempty,min=0"`
}

// MediaUpdate is the body sent to PUT .../media/{mediaId}.
type MediaUpdate struct {
	Name        string `json:"name"`
	Duration    int    `json:"duration"`
	OrderNumber int    `json:"orderNumber"`
}

type UploadStatus string

const (
	UploadUploading UploadStatus = "uploading"
	UploadDone      UploadStatus = "done"
	UploadError     UploadStatus = "error"
)

type UploadRow struct {
	ID       string       `json:"id"`
	FileName string       `json:"fileName"`
	Status   UploadStatus `json:"status"`
	Message  string       `json:"message,omitempty"`
}

func FormatSizeMB(size *float64) string {
	if size == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f MB", *size)
}

// UploadBatch is the state of one multi-file upload.
type UploadBatch struct {
	Rows      []UploadRow `json:"rows"`
	CanFinish bool        `json:"canFinish"`
}

// Settle recomputes CanFinish: true once any row is done.
func (b *UploadBatch) Settle() {
	b.CanFinish = false
	for _, row := range b.Rows {
		if row.Status == UploadDone {
			b.CanFinish = true
			return
		}
	}
}
