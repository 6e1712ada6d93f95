package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// Extractor reads embedded metadata out of uploaded files. Photos are
// fully decoded for dimensions and EXIF; videos are only sniffed for a
// recognizable container, their embedded tags are left for an async
// processing stage.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

var _ port.MetadataExtractor = (*Extractor)(nil)

// Extract probes data. An error means the bytes are not decodable media
// of the declared type; sparse or missing tags are not errors.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename, contentType string) (*domain.EmbeddedMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(contentType, "image/"):
		return e.extractImage(data, filename)
	case strings.HasPrefix(contentType, "video/"):
		return e.extractVideo(data, filename)
	default:
		return nil, fmt.Errorf("undecodable content type %q", contentType)
	}
}

func (e *Extractor) extractImage(data []byte, filename string) (*domain.EmbeddedMetadata, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", filename, err)
	}

	meta := &domain.EmbeddedMetadata{Width: cfg.Width, Height: cfg.Height}

	// EXIF lives in JPEG (and TIFF) only; absence is normal.
	if format != "jpeg" {
		return meta, nil
	}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		e.logger.Debug("no exif block", "filename", filename, "error", err)
		return meta, nil
	}

	meta.CaptureTime = exifTime(x, exif.DateTimeOriginal)
	meta.DigitizedTime = exifTime(x, exif.DateTimeDigitized)
	meta.Camera = exifString(x, exif.Model)
	meta.Software = exifString(x, exif.Software)

	if lat, long, err := x.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &long
	}

	return meta, nil
}

// Known container magics at the offsets they are found in practice:
// the MP4/MOV/HEIF family, Matroska/WebM, and AVI.
var videoMagics = []struct {
	offset int
	magic  []byte
}{
	{4, []byte("ftyp")},
	{0, []byte{0x1A, 0x45, 0xDF, 0xA3}},
	{0, []byte("RIFF")},
}

func (e *Extractor) extractVideo(data []byte, filename string) (*domain.EmbeddedMetadata, error) {
	for _, m := range videoMagics {
		end := m.offset + len(m.magic)
		if len(data) >= end && bytes.Equal(data[m.offset:end], m.magic) {
			// Duration and dimensions require real demuxing; not done
			// inline in the upload path.
			return &domain.EmbeddedMetadata{}, nil
		}
	}
	return nil, fmt.Errorf("unrecognized video container in %s", filename)
}

var exifLayouts = []string{"2006:01:02 15:04:05", "2006:01:02 15:04:05Z07:00"}

func exifTime(x *exif.Exif, field exif.FieldName) *time.Time {
	tag, err := x.Get(field)
	if err != nil {
		return nil
	}
	raw, err := tag.StringVal()
	if err != nil {
		return nil
	}
	for _, layout := range exifLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

func exifString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	raw, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(raw, "\x00"))
}
