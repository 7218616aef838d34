// Package videoid extracts a canonical YouTube video identifier from a
// user-supplied URL. It performs no I/O: parsing only.
package videoid

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/BrooCode/happy-scroll-ai/internal/core/normalize"
)

// ID is the canonical, opaque video identifier. Two inputs referring to
// the same underlying video yield byte-identical IDs.
type ID string

// Sentinel errors for errors.Is checks at the HTTP boundary.
var (
	ErrInvalidURL      = errors.New("videoid: host not recognized")
	ErrUnextractableID = errors.New("videoid: id not found or malformed")
)

// Error wraps a sentinel with the offending input for logging/diagnostics.
type Error struct {
	Sentinel error
	Input    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("videoid: %v: %q", e.Sentinel, e.Input)
}

func (e *Error) Unwrap() error { return e.Sentinel }

const (
	minLen = 10
	maxLen = 12
)

// recognizedHosts holds the canonical host set with any "www."/"m."/"music."
// prefix already stripped.
var recognizedHosts = map[string]bool{
	"youtube.com": true,
	"youtu.be":    true,
}

// Extract parses rawURL and returns the canonical video ID.
func Extract(rawURL string) (ID, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", &Error{Sentinel: ErrInvalidURL, Input: rawURL}
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return "", &Error{Sentinel: ErrInvalidURL, Input: rawURL}
	}

	host := canonicalHost(u.Hostname())
	if !recognizedHosts[host] {
		return "", &Error{Sentinel: ErrInvalidURL, Input: rawURL}
	}

	if host == "youtu.be" {
		return extractFromShortLink(u, rawURL)
	}

	if id := u.Query().Get("v"); id != "" {
		return validate(id, rawURL)
	}

	segments := splitPath(u.Path)
	switch {
	case len(segments) >= 2 && segments[0] == "shorts":
		return validate(segments[1], rawURL)
	case len(segments) >= 2 && segments[0] == "embed":
		return validate(segments[1], rawURL)
	}

	return "", &Error{Sentinel: ErrUnextractableID, Input: rawURL}
}

// canonicalHost normalizes a hostname for host-set matching: lowercased,
// with the "www.", "m.", and "music." YouTube subdomain prefixes stripped.
func canonicalHost(host string) string {
	host = normalize.Token(host)
	for _, prefix := range []string{"www.", "m.", "music."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return host
}

func extractFromShortLink(u *url.URL, rawURL string) (ID, error) {
	segments := splitPath(u.Path)
	if len(segments) == 0 || segments[0] == "" {
		return "", &Error{Sentinel: ErrUnextractableID, Input: rawURL}
	}
	return validate(segments[0], rawURL)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func validate(id, rawURL string) (ID, error) {
	id = strings.TrimSpace(id)
	if len(id) < minLen || len(id) > maxLen {
		return "", &Error{Sentinel: ErrUnextractableID, Input: rawURL}
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return "", &Error{Sentinel: ErrUnextractableID, Input: rawURL}
		}
	}
	return ID(id), nil
}
