package thumbnail

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feniix/family-gallery-sub000/internal/config"
)

func testConfig() config.ThumbnailConfig {
	return config.ThumbnailConfig{MaxWidth: 40, MaxHeight: 40, Timeout: 5 * time.Second}
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x % 256), A: 255})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerate_FitsWithinBounds(t *testing.T) {
	gen := NewGenerator(testConfig())

	out, err := gen.Generate(context.Background(), pngBytes(t, 200, 100), "image/png")

	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, cfg.Width, 40)
	assert.LessOrEqual(t, cfg.Height, 40)
	// Fit preserves aspect ratio instead of squashing.
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestGenerate_RejectsNonImage(t *testing.T) {
	gen := NewGenerator(testConfig())

	_, err := gen.Generate(context.Background(), []byte("not media"), "video/mp4")

	assert.Error(t, err)
}

func TestGenerate_UndecodableImage(t *testing.T) {
	gen := NewGenerator(testConfig())

	_, err := gen.Generate(context.Background(), []byte{0x00, 0x01}, "image/png")

	assert.ErrorContains(t, err, "decode")
}

func TestGenerate_HonorsContext(t *testing.T) {
	gen := NewGenerator(testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.Generate(ctx, pngBytes(t, 200, 100), "image/png")

	assert.ErrorIs(t, err, context.Canceled)
}
