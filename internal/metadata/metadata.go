// Package metadata fetches title, channel, best-available thumbnail URL,
// and caption text for a video id from the YouTube Data API.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BrooCode/happy-scroll-ai/internal/videoid"
)

// CaptionSource tags which tier of the fallback chain produced the
// caption text returned in Metadata.
type CaptionSource string

const (
	CaptionManual              CaptionSource = "manual"
	CaptionAutoGenerated       CaptionSource = "auto-generated"
	CaptionManualOtherLanguage CaptionSource = "manual-other-language"
	CaptionAutoOtherLanguage   CaptionSource = "auto-other-language"
	CaptionDescriptionFallback CaptionSource = "description-fallback"
)

// Metadata is the immutable record produced by Fetch for one VideoId.
type Metadata struct {
	VideoID       videoid.ID
	Title         string
	Channel       string
	ThumbnailURL  string
	Caption       string
	CaptionSource CaptionSource
}

// Sentinel errors
var (
	ErrVideoNotFound       = errors.New("metadata: video not found")
	ErrMetadataUnavailable = errors.New("metadata: no usable thumbnail or snippet data")
	ErrUpstreamUnavailable = errors.New("metadata: upstream network or quota failure")
	ErrPermissionDenied    = errors.New("metadata: permission denied by upstream")
)

// Error wraps a sentinel with the operation and nested cause.
type Error struct {
	Sentinel  error
	Operation string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("metadata: %s: %v", e.Operation, e.Sentinel)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Sentinel }

// DefaultTimeout bounds a single Fetch call (snippet + captions).
const DefaultTimeout = 10 * time.Second

// Client fetches VideoMetadata for a VideoId.
type Client interface {
	Fetch(ctx context.Context, id videoid.ID) (Metadata, error)
}

// thumbnailQuality enumerates the fallback chain, best first.
var thumbnailQuality = []string{"maxres", "high"}

// selectThumbnail walks the fallback chain and returns the first URL the
// platform reports as available.
func selectThumbnail(available map[string]string) (string, bool) {
	for _, quality := range thumbnailQuality {
		if url, ok := available[quality]; ok && url != "" {
			return url, true
		}
	}
	return "", false
}

// captionText applies the five-tier preference order and returns the
// first non-empty candidate plus its source tag.
func captionText(manualEN, autoEN, manualAny, autoAny, description string, tags []string) (string, CaptionSource) {
	if t := strings.TrimSpace(manualEN); t != "" {
		return t, CaptionManual
	}
	if t := strings.TrimSpace(autoEN); t != "" {
		return t, CaptionAutoGenerated
	}
	if t := strings.TrimSpace(manualAny); t != "" {
		return t, CaptionManualOtherLanguage
	}
	if t := strings.TrimSpace(autoAny); t != "" {
		return t, CaptionAutoOtherLanguage
	}
	return strings.TrimSpace(description + " " + strings.Join(tags, " ")), CaptionDescriptionFallback
}
