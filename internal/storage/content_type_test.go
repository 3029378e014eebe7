package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContentType(t *testing.T) {
	// Provided type wins
	assert.Equal(t, "image/webp", DetectContentType("image/webp", "photo.jpg", nil))

	// Extension-based detection
	assert.Equal(t, "image/jpeg", DetectContentType("", "uploads/photo.jpg", nil))
	assert.Equal(t, "image/png", DetectContentType("", "icon.png", nil))

	// Content sniffing when the extension says nothing
	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	assert.Equal(t, "image/png", DetectContentType("", "blob", bytes.NewReader(pngHeader)))

	// Fallback
	assert.Equal(t, "application/octet-stream", DetectContentType("", "mystery", nil))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/jpeg"))
	assert.True(t, IsImage("IMAGE/PNG"))
	assert.True(t, IsImage("image/webp; charset=binary"))
	assert.False(t, IsImage("application/pdf"))
	assert.False(t, IsImage(""))
}
