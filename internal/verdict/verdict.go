// Package verdict combines the transcript and thumbnail branch outcomes
// into the final, cacheable safety verdict for a video.
package verdict

import (
	"fmt"
	"strings"
)

// Verdict is the cached, returned value for a video
type Verdict struct {
	VideoID          string `json:"video_id"`
	IsSafe           bool   `json:"is_safe"`
	IsSafeTranscript bool   `json:"is_safe_transcript"`
	IsSafeThumbnail  bool   `json:"is_safe_thumbnail"`
	TranscriptReason string `json:"transcript_reason"`
	ThumbnailReason  string `json:"thumbnail_reason"`
	OverallReason    string `json:"overall_reason"`
	VideoTitle       string `json:"video_title"`
	ChannelTitle     string `json:"channel_title"`
}

// Branch is the sum-typed outcome of one upstream analysis: either a
// successful safe/unsafe judgment with a reason, or an error with a
// human-readable detail. Exactly one of (Reason) or (Err, Detail) applies;
// Ok reports which.
type Branch struct {
	Ok     bool
	Safe   bool
	Reason string

	Err    error
	Detail string
}

// OkBranch builds a successful Branch.
func OkBranch(safe bool, reason string) Branch {
	return Branch{Ok: true, Safe: safe, Reason: reason}
}

// ErrBranch builds a failed Branch. err is the sentinel from the owning
// package (transcript.ErrClassifierUnavailable, thumbnail.ErrImageFetchFailed,
// etc.); detail is a short human-readable description.
func ErrBranch(err error, detail string) Branch {
	return Branch{Ok: false, Err: err, Detail: detail}
}

// safe reports the branch's contribution to the conjunction: only a
// successful, safe=true branch counts as safe. Any error forces the
// corresponding is_safe_* to false (fail-closed).
func (b Branch) safe() bool {
	return b.Ok && b.Safe
}

// reason returns the branch's reason string, whichever variant is set.
func (b Branch) reason() string {
	if b.Ok {
		return b.Reason
	}
	return b.Detail
}

// Combine merges the two branch results and video metadata into a Verdict.
// It is a total function over the four (ok/err)×(ok/err) cases: no branch
// error ever propagates as a request failure here, it only contributes a
// negative, explained verdict.
func Combine(videoID string, transcriptBranch, thumbnailBranch Branch, title, channel string) Verdict {
	isSafeTranscript := transcriptBranch.safe()
	isSafeThumbnail := thumbnailBranch.safe()

	v := Verdict{
		VideoID:          videoID,
		IsSafeTranscript: isSafeTranscript,
		IsSafeThumbnail:  isSafeThumbnail,
		IsSafe:           isSafeTranscript && isSafeThumbnail,
		TranscriptReason: transcriptBranch.reason(),
		ThumbnailReason:  thumbnailBranch.reason(),
		VideoTitle:       title,
		ChannelTitle:     channel,
	}
	v.OverallReason = composeOverallReason(v)
	return v
}

// composeOverallReason produces a short human-readable summary. When both
// branches are safe, an affirmative sentence; otherwise each failing
// branch's contribution is listed
func composeOverallReason(v Verdict) string {
	if v.IsSafe {
		return "both the caption text and the thumbnail image passed the safety checks"
	}

	var failing []string
	if !v.IsSafeTranscript {
		failing = append(failing, fmt.Sprintf("transcript: %s", v.TranscriptReason))
	}
	if !v.IsSafeThumbnail {
		failing = append(failing, fmt.Sprintf("thumbnail: %s", v.ThumbnailReason))
	}
	return "flagged by " + strings.Join(failing, "; ")
}
