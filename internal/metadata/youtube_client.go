package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/BrooCode/happy-scroll-ai/internal/log"
	"github.com/BrooCode/happy-scroll-ai/internal/videoid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeClient is a Client backed by the official YouTube Data API v3.
type YouTubeClient struct {
	svc *youtube.Service
}

// NewYouTubeClient builds a Client authenticated with an API key, resolving
// upstream credentials once at startup.
func NewYouTubeClient(ctx context.Context, apiKey string) (*YouTubeClient, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &Error{Sentinel: ErrUpstreamUnavailable, Operation: "new_service", Err: err}
	}
	return &YouTubeClient{svc: svc}, nil
}

// Fetch implements Client.
func (c *YouTubeClient) Fetch(ctx context.Context, id videoid.ID) (Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()
	logger := log.WithComponent("metadata")

	videosResp, err := c.svc.Videos.List([]string{"snippet", "contentDetails"}).
		Id(string(id)).Context(ctx).Do()
	if err != nil {
		return Metadata{}, classifyError("videos.list", err)
	}
	if len(videosResp.Items) == 0 {
		return Metadata{}, &Error{Sentinel: ErrVideoNotFound, Operation: "videos.list"}
	}
	item := videosResp.Items[0]
	snippet := item.Snippet
	if snippet == nil {
		return Metadata{}, &Error{Sentinel: ErrMetadataUnavailable, Operation: "videos.list", Err: errors.New("missing snippet")}
	}

	available := map[string]string{}
	if t := snippet.Thumbnails; t != nil {
		if t.Maxres != nil {
			available["maxres"] = t.Maxres.Url
		}
		if t.High != nil {
			available["high"] = t.High.Url
		}
	}
	thumbURL, ok := selectThumbnail(available)
	if !ok {
		return Metadata{}, &Error{Sentinel: ErrMetadataUnavailable, Operation: "videos.list", Err: errors.New("no usable thumbnail")}
	}

	caption, source, err := c.fetchCaptionText(ctx, id)
	if err != nil {
		logger.Warn().Err(err).Str(log.FieldVideoID, string(id)).Msg("caption fetch failed, falling back to description")
		caption, source = strings.TrimSpace(snippet.Description+" "+strings.Join(snippet.Tags, " ")), CaptionDescriptionFallback
	}

	return Metadata{
		VideoID:       id,
		Title:         snippet.Title,
		Channel:       snippet.ChannelTitle,
		ThumbnailURL:  thumbURL,
		Caption:       caption,
		CaptionSource: source,
	}, nil
}

// captionTrack is the subset of a caption track listing we need to rank
// candidates by the five-tier preference order in captionText.
type captionTrack struct {
	id       string
	language string
	auto     bool
}

func (c *YouTubeClient) fetchCaptionText(ctx context.Context, id videoid.ID) (string, CaptionSource, error) {
	listResp, err := c.svc.Captions.List([]string{"snippet"}, string(id)).Context(ctx).Do()
	if err != nil {
		return "", "", classifyError("captions.list", err)
	}

	var manualEN, autoEN, manualAny, autoAny *captionTrack
	for _, item := range listResp.Items {
		s := item.Snippet
		if s == nil {
			continue
		}
		track := &captionTrack{id: item.Id, language: s.Language, auto: s.TrackKind == "ASR"}
		isEnglish := strings.HasPrefix(strings.ToLower(s.Language), "en")

		switch {
		case !track.auto && isEnglish && manualEN == nil:
			manualEN = track
		case track.auto && isEnglish && autoEN == nil:
			autoEN = track
		case !track.auto && manualAny == nil:
			manualAny = track
		case track.auto && autoAny == nil:
			autoAny = track
		}
	}

	ranked := []struct {
		track  *captionTrack
		source CaptionSource
	}{
		{manualEN, CaptionManual},
		{autoEN, CaptionAutoGenerated},
		{manualAny, CaptionManualOtherLanguage},
		{autoAny, CaptionAutoOtherLanguage},
	}
	for _, candidate := range ranked {
		if candidate.track == nil {
			continue
		}
		text, err := c.downloadCaption(ctx, candidate.track.id)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		return text, candidate.source, nil
	}
	return "", "", errors.New("no usable caption track")
}

func (c *YouTubeClient) downloadCaption(ctx context.Context, captionID string) (string, error) {
	resp, err := c.svc.Captions.Download(captionID).Context(ctx).Download()
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return stripCaptionMarkup(string(raw)), nil
}

// timingCuePattern matches whole WebVTT/SRT timestamp lines and cue-number
// lines so only spoken text remains; tagPattern strips inline markup.
var (
	timingCuePattern = regexp.MustCompile(`(?m)^(?:\d+|WEBVTT.*|.*-->.*)$`)
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
)

func stripCaptionMarkup(raw string) string {
	cleaned := timingCuePattern.ReplaceAllString(raw, "")
	cleaned = tagPattern.ReplaceAllString(cleaned, "")
	lines := strings.Split(cleaned, "\n")
	var kept []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}

func classifyError(operation string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 404:
			return &Error{Sentinel: ErrVideoNotFound, Operation: operation, Err: err}
		case 403:
			return &Error{Sentinel: ErrPermissionDenied, Operation: operation, Err: err}
		case 429, 500, 502, 503:
			return &Error{Sentinel: ErrUpstreamUnavailable, Operation: operation, Err: err}
		}
	}
	return &Error{Sentinel: ErrUpstreamUnavailable, Operation: operation, Err: fmt.Errorf("%w", err)}
}
