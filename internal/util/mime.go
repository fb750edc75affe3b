package util

import (
	"net/http"
	"strings"
)

// DetectMIME sniffs the content type from the first bytes of the payload,
// never trusting the client-supplied filename or header.
func DetectMIME(head []byte) string {
	return http.DetectContentType(head)
}

func IsImageMIME(mimeType string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(mimeType))
	return strings.HasPrefix(cleaned, "image/")
}

// IsThumbnailMIME reports whether the format can be decoded for thumbnail
// generation. SVG and friends are images but not raster-decodable.
func IsThumbnailMIME(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff":
		return true
	default:
		return false
	}
}
