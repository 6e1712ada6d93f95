package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/feniix/family-gallery-sub000/internal/config"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// Generator renders JPEG previews bounded to a configured box. Decoding a
// hostile or huge image can stall, so every call runs under the
// configured timeout.
type Generator struct {
	cfg config.ThumbnailConfig
}

func NewGenerator(cfg config.ThumbnailConfig) *Generator {
	return &Generator{cfg: cfg}
}

var _ port.ThumbnailGenerator = (*Generator)(nil)

// Generate produces a JPEG preview of an uploaded photo. Video previews
// require frame extraction and are not produced inline.
func (g *Generator) Generate(ctx context.Context, data []byte, contentType string) ([]byte, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("no inline preview for %q", contentType)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("thumbnail rendering: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)

	go func() {
		done <- func() result {
			img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
			if err != nil {
				return result{err: fmt.Errorf("decode: %w", err)}
			}
			thumb := imaging.Fit(img, g.cfg.MaxWidth, g.cfg.MaxHeight, imaging.Lanczos)

			var buf bytes.Buffer
			if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
				return result{err: fmt.Errorf("encode: %w", err)}
			}
			return result{out: buf.Bytes()}
		}()
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("thumbnail rendering: %w", ctx.Err())
	case res := <-done:
		return res.out, res.err
	}
}
