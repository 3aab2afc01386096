package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"signage-console/internal/service"
)

const multipartMemory = 32 << 20

// readUploadForm parses a media upload: any number of "file" parts plus an
// optional "duration" in seconds. A missing or bad duration is returned as zero
// and the service applies its default. The caller must call cleanup.
func readUploadForm(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]service.UploadFile, int, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, 0, func() {}, &service.ValidationError{Field: "file", Message: "Upload is too large or malformed"}
	}
	cleanup := func() { r.MultipartForm.RemoveAll() }

	var files []service.UploadFile
	for _, header := range r.MultipartForm.File["file"] {
		files = append(files, uploadFile(header))
	}

	duration, err := strconv.Atoi(r.FormValue("duration"))
	if err != nil {
		duration = 0
	}

	return files, duration, cleanup, nil
}

func uploadFile(header *multipart.FileHeader) service.UploadFile {
	return service.UploadFile{
		Name: header.Filename,
		Open: func() (io.ReadCloser, error) {
			f, err := header.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}
