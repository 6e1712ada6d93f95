package extractor

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func encodeImage(t *testing.T, format string, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	default:
		t.Fatalf("unknown format %s", format)
	}
	return buf.Bytes()
}

func TestExtract_PNGDimensions(t *testing.T) {
	e := NewExtractor(testLogger())

	meta, err := e.Extract(context.Background(), encodeImage(t, "png", 120, 80), "shot.png", "image/png")

	require.NoError(t, err)
	assert.Equal(t, 120, meta.Width)
	assert.Equal(t, 80, meta.Height)
	assert.Nil(t, meta.CaptureTime)
}

func TestExtract_JPEGWithoutExifIsSparse(t *testing.T) {
	e := NewExtractor(testLogger())

	meta, err := e.Extract(context.Background(), encodeImage(t, "jpeg", 64, 48), "photo.jpg", "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, 64, meta.Width)
	assert.Equal(t, 48, meta.Height)
	assert.Nil(t, meta.CaptureTime)
	assert.Nil(t, meta.Latitude)
	assert.Empty(t, meta.Camera)
}

func TestExtract_CorruptImage(t *testing.T) {
	e := NewExtractor(testLogger())

	_, err := e.Extract(context.Background(), []byte("definitely not a jpeg"), "photo.jpg", "image/jpeg")

	assert.Error(t, err)
}

func TestExtract_VideoContainerSniff(t *testing.T) {
	e := NewExtractor(testLogger())

	mp4 := append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypisom")...)
	meta, err := e.Extract(context.Background(), mp4, "clip.mp4", "video/mp4")

	require.NoError(t, err)
	assert.Zero(t, meta.Width)

	mkv := []byte{0x1A, 0x45, 0xDF, 0xA3, 0x00, 0x00}
	_, err = e.Extract(context.Background(), mkv, "clip.mkv", "video/x-matroska")
	assert.NoError(t, err)
}

func TestExtract_UnrecognizedVideoBytes(t *testing.T) {
	e := NewExtractor(testLogger())

	_, err := e.Extract(context.Background(), []byte("plain text pretending"), "clip.mp4", "video/mp4")

	assert.Error(t, err)
}

func TestExtract_UnsupportedContentType(t *testing.T) {
	e := NewExtractor(testLogger())

	_, err := e.Extract(context.Background(), []byte("%PDF-1.4"), "doc.pdf", "application/pdf")

	assert.Error(t, err)
}
