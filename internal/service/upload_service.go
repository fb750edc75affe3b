package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"portfolio-api/internal/model"
	"portfolio-api/internal/storage"
	"portfolio-api/internal/util"
	"portfolio-api/pkg/apierror"
)

// UploadService pushes admin media uploads to object storage. MIME type is
// sniffed from content, never taken from the request. Raster images get a
// JPEG thumbnail uploaded next to the original.
type UploadService struct {
	store         storage.ObjectStorage
	maxSize       int64
	thumbnailSize int
}

func NewUploadService(store storage.ObjectStorage, maxSize int64, thumbnailSize int) *UploadService {
	if thumbnailSize <= 0 {
		thumbnailSize = 512
	}
	return &UploadService{store: store, maxSize: maxSize, thumbnailSize: thumbnailSize}
}

func (s *UploadService) Upload(ctx context.Context, filename string, r io.Reader) (model.UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return model.UploadResult{}, apierror.New("PAYLOAD_TOO_LARGE", "file exceeds the upload size limit", "", http.StatusRequestEntityTooLarge)
	}
	if len(data) == 0 {
		return model.UploadResult{}, apierror.BadRequest("file is empty")
	}

	mimeType := util.DetectMIME(data)
	if !util.IsImageMIME(mimeType) {
		return model.UploadResult{}, apierror.New("UNSUPPORTED_TYPE", "only image uploads are allowed", mimeType, http.StatusBadRequest)
	}

	key := s.objectKey(filename)
	url, err := s.store.Upload(ctx, key, mimeType, bytes.NewReader(data))
	if err != nil {
		return model.UploadResult{}, err
	}

	result := model.UploadResult{
		URL:      url,
		Size:     int64(len(data)),
		MimeType: mimeType,
	}

	if util.IsThumbnailMIME(mimeType) {
		thumbURL, err := s.uploadThumbnail(ctx, key, data)
		if err != nil {
			// The original made it to storage; a missing thumbnail is not
			// worth failing the upload over.
			return result, nil
		}
		result.ThumbnailURL = thumbURL
	}

	return result, nil
}

func (s *UploadService) uploadThumbnail(ctx context.Context, originalKey string, data []byte) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("image has empty bounds")
	}

	scale := float64(s.thumbnailSize) / float64(max(width, height))
	if scale > 1 {
		scale = 1
	}
	dstW := int(float64(width) * scale)
	dstH := int(float64(height) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	thumbKey := strings.TrimSuffix(originalKey, filepath.Ext(originalKey)) + "_thumb.jpg"
	return s.store.Upload(ctx, thumbKey, "image/jpeg", bytes.NewReader(buf.Bytes()))
}

// objectKey partitions uploads by date so buckets stay browsable.
func (s *UploadService) objectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	now := time.Now().UTC()
	return fmt.Sprintf("uploads/%04d/%02d/%s%s", now.Year(), now.Month(), uuid.NewString(), ext)
}
