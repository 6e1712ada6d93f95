package dateresolve

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// Resolver produces a best-effort capture timestamp via an ordered,
// first-match-wins fallback chain. It always succeeds; the last resort is
// the current processing time at low confidence.
type Resolver struct {
	now func() time.Time
}

// NewResolver creates a date resolver
func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

// NewResolverWithClock creates a resolver with an injected clock
func NewResolverWithClock(now func() time.Time) *Resolver {
	return &Resolver{now: now}
}

var _ port.DateResolver = (*Resolver)(nil)

// Resolve picks the most trustworthy capture date available
func (r *Resolver) Resolve(filename string, modTime time.Time, meta *domain.EmbeddedMetadata) (time.Time, domain.DateInfo) {
	tz := ""
	if meta != nil && meta.Longitude != nil {
		tz = timezoneFromLongitude(*meta.Longitude)
	}

	if meta != nil && meta.CaptureTime != nil {
		return *meta.CaptureTime, domain.DateInfo{
			Source:     domain.DateSourceExifOriginal,
			Confidence: domain.DateConfidenceHigh,
			Timezone:   tz,
		}
	}

	if meta != nil && meta.DigitizedTime != nil {
		return *meta.DigitizedTime, domain.DateInfo{
			Source:     domain.DateSourceExifDigitized,
			Confidence: domain.DateConfidenceMedium,
			Timezone:   tz,
		}
	}

	if t, ok := FromFilename(filename); ok {
		return t, domain.DateInfo{
			Source:     domain.DateSourceFilename,
			Confidence: domain.DateConfidenceMedium,
			Timezone:   tz,
		}
	}

	if r.plausibleModTime(modTime) {
		return modTime, domain.DateInfo{
			Source:     domain.DateSourceFileModified,
			Confidence: domain.DateConfidenceLow,
			Timezone:   tz,
		}
	}

	return r.now().UTC(), domain.DateInfo{
		Source:     domain.DateSourceProcessing,
		Confidence: domain.DateConfidenceLow,
		Timezone:   tz,
	}
}

var earliestPlausible = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// plausibleModTime rejects mtimes that predate consumer digital cameras
// or sit more than a day in the future
func (r *Resolver) plausibleModTime(t time.Time) bool {
	if t.IsZero() || t.Before(earliestPlausible) {
		return false
	}
	return !t.After(r.now().Add(24 * time.Hour))
}

// Known device/app naming conventions, most specific first.
var (
	// IMG_20230101_120000.jpg, VID_20230101_120000.mp4, PXL_20230101_120000123.jpg
	reDeviceCompact = regexp.MustCompile(`(?:IMG|VID|PXL)[_-](\d{8})[_-](\d{6})`)
	// Screenshot_20230101-120000.png
	reScreenshotCompact = regexp.MustCompile(`(?i)screenshot[_-](\d{8})[-_](\d{6})`)
	// Screenshot_2023-01-01-12-00-00.png
	reScreenshotDashed = regexp.MustCompile(`(?i)screenshot[_-](\d{4})-(\d{2})-(\d{2})-(\d{2})-(\d{2})-(\d{2})`)
	// IMG-20230101-WA0001.jpg (WhatsApp, date only)
	reWhatsApp = regexp.MustCompile(`(?:IMG|VID)-(\d{8})-WA\d+`)
	// 2023-01-01 12.00.00.jpg
	reSpacedDotted = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[ _](\d{2})\.(\d{2})\.(\d{2})`)
	// 1672574400000.jpg (unix epoch milliseconds)
	reEpochMillis = regexp.MustCompile(`^(1[4-9]\d{11})\b`)
)

// FromFilename parses a capture timestamp out of known device and app
// naming conventions. Parsed times are interpreted as UTC.
func FromFilename(filename string) (time.Time, bool) {
	if m := reDeviceCompact.FindStringSubmatch(filename); m != nil {
		return parseCompact(m[1], m[2])
	}
	if m := reScreenshotCompact.FindStringSubmatch(filename); m != nil {
		return parseCompact(m[1], m[2])
	}
	if m := reScreenshotDashed.FindStringSubmatch(filename); m != nil {
		return parseParts(m[1:7])
	}
	if m := reWhatsApp.FindStringSubmatch(filename); m != nil {
		return parseCompact(m[1], "000000")
	}
	if m := reSpacedDotted.FindStringSubmatch(filename); m != nil {
		return parseParts(m[1:7])
	}
	if m := reEpochMillis.FindStringSubmatch(filename); m != nil {
		millis, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(millis).UTC(), true
	}
	return time.Time{}, false
}

func parseCompact(date, clock string) (time.Time, bool) {
	t, err := time.ParseInLocation("20060102150405", date+clock, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseParts(parts []string) (time.Time, bool) {
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	t := time.Date(nums[0], time.Month(nums[1]), nums[2], nums[3], nums[4], nums[5], 0, time.UTC)
	if t.Year() != nums[0] || int(t.Month()) != nums[1] || t.Day() != nums[2] {
		return time.Time{}, false
	}
	return t, true
}

// timezoneFromLongitude estimates a UTC offset from GPS longitude as
// round(longitude / 15) hours. An approximation, not authoritative.
func timezoneFromLongitude(longitude float64) string {
	hours := int(math.Round(longitude / 15))
	switch {
	case hours == 0:
		return "UTC"
	case hours > 0:
		return "UTC+" + strconv.Itoa(hours)
	default:
		return "UTC" + strconv.Itoa(hours)
	}
}

var screenshotMarkers = []string{"screenshot", "screen shot", "capture d'écran"}

// IsScreenshot reports whether the filename looks like a screen capture
func IsScreenshot(filename string) bool {
	lower := strings.ToLower(filename)
	for _, marker := range screenshotMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

var editorMarkers = []string{"photoshop", "lightroom", "snapseed", "gimp", "affinity", "pixelmator"}

// IsEdited reports whether the filename or the embedded software tag
// indicates the file went through an editor
func IsEdited(filename, software string) bool {
	lower := strings.ToLower(filename)
	if strings.Contains(lower, "-edited") || strings.Contains(lower, "_edited") {
		return true
	}
	soft := strings.ToLower(software)
	for _, marker := range editorMarkers {
		if strings.Contains(soft, marker) {
			return true
		}
	}
	return false
}
