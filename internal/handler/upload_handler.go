package handler

import (
	"net/http"

	"portfolio-api/internal/service"
	"portfolio-api/pkg/apierror"
)

type UploadHandler struct {
	service *service.UploadService
	maxSize int64
}

func NewUploadHandler(service *service.UploadService, maxSize int64) *UploadHandler {
	return &UploadHandler{service: service, maxSize: maxSize}
}

// Upload accepts a single multipart "file" part and returns the object URL.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apierror.BadRequest("A multipart 'file' field is required"))
		return
	}
	defer file.Close()

	result, err := h.service.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "File uploaded", result)
}
