package util

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMIME(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	assert.Equal(t, "image/png", DetectMIME(buf.Bytes()))
	assert.Equal(t, "text/plain; charset=utf-8", DetectMIME([]byte("plain text")))
}

func TestIsImageMIME(t *testing.T) {
	assert.True(t, IsImageMIME("image/png"))
	assert.True(t, IsImageMIME("  IMAGE/JPEG  "))
	assert.True(t, IsImageMIME("image/svg+xml"))
	assert.False(t, IsImageMIME("text/html"))
	assert.False(t, IsImageMIME("application/pdf"))
	assert.False(t, IsImageMIME(""))
}

func TestIsThumbnailMIME(t *testing.T) {
	assert.True(t, IsThumbnailMIME("image/png"))
	assert.True(t, IsThumbnailMIME("image/webp"))
	assert.False(t, IsThumbnailMIME("image/svg+xml"))
	assert.False(t, IsThumbnailMIME("text/plain"))
}
