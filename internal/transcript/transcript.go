// Package transcript submits caption text and video metadata to a text
// policy classifier and parses its SAFE/UNSAFE verdict.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/BrooCode/happy-scroll-ai/internal/core/normalize"
)

// Result is the branch outcome of a transcript analysis.
type Result struct {
	Safe   bool
	Reason string
}

// Sentinel errors
var (
	ErrClassifierUnavailable = errors.New("transcript: classifier unavailable")
	ErrClassifierUnparseable = errors.New("transcript: response had no recognizable verdict")
)

// Error wraps a sentinel with operation context.
type Error struct {
	Sentinel  error
	Operation string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("transcript: %s: %v", e.Operation, e.Sentinel)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Sentinel }

// DefaultTimeout bounds a single Analyze call.
const DefaultTimeout = 30 * time.Second

// maxReasonLength bounds the reason string captured from the classifier's
// justification.
const maxReasonLength = 500

// Analyzer submits caption text plus title/channel for classification.
type Analyzer interface {
	Analyze(ctx context.Context, caption, title, channel string) (Result, error)
}

// PromptTemplate is the fixed prompt sent to the text policy classifier. The
// category enumeration is the product's policy contract and must not be
// edited casually.
const PromptTemplate = `You are a strict content-safety classifier protecting young children from short-form video content.

Given a video's title, channel name, and caption/transcript text, decide whether the content is appropriate for a young child audience. Flag content that contains, references, or implies any of the following:
- violence or threats of violence
- sexual content or innuendo
- profanity or crude language
- drug, alcohol, or tobacco references
- discrimination, hate speech, or harassment
- content designed to scare or disturb young viewers
- dangerous acts, stunts, or challenges that could be imitated
- other adult themes not suitable for children

Title: %s
Channel: %s
Transcript:
%s

Respond with a single verdict keyword on its own, either SAFE or UNSAFE, followed by a short one-sentence justification. If you are uncertain, respond UNSAFE.`

// BuildPrompt renders PromptTemplate for one analysis request.
func BuildPrompt(caption, title, channel string) string {
	return fmt.Sprintf(PromptTemplate, title, channel, caption)
}

// verdictPattern finds a standalone SAFE/UNSAFE token, case-insensitive.
var verdictPattern = regexp.MustCompile(`(?i)\b(UNSAFE|SAFE)\b`)

// hedgeWords trigger fail-closed treatment even when a literal "SAFE" token
// is present: when in doubt, the classifier is treated as failing closed.
var hedgeWords = []string{
	"uncertain", "not sure", "unclear", "cannot determine", "can't determine",
	"hard to tell", "possibly", "might be", "unable to determine",
}

// ParseVerdict extracts a Result from a raw classifier response. It never
// returns an unparseable error paired with a populated Result.
func ParseVerdict(response string) (Result, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return Result{}, &Error{Sentinel: ErrClassifierUnparseable, Operation: "parse", Err: errors.New("empty response")}
	}

	normalized := normalize.Token(trimmed)
	for _, hedge := range hedgeWords {
		if strings.Contains(normalized, hedge) {
			return Result{Safe: false, Reason: truncateReason(trimmed)}, nil
		}
	}

	match := verdictPattern.FindString(trimmed)
	if match == "" {
		return Result{}, &Error{Sentinel: ErrClassifierUnparseable, Operation: "parse", Err: fmt.Errorf("no SAFE/UNSAFE token found")}
	}

	safe := strings.EqualFold(match, "SAFE")
	return Result{Safe: safe, Reason: truncateReason(trimmed)}, nil
}

func truncateReason(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxReasonLength {
		return s
	}
	return s[:maxReasonLength]
}
