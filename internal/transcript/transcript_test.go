package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseVerdictCleanSafe(t *testing.T) {
	res, err := ParseVerdict("SAFE. The video is a cartoon about counting numbers.")
	if err != nil {
		t.Fatalf("ParseVerdict() error = %v", err)
	}
	if !res.Safe {
		t.Fatal("expected safe=true")
	}
}

func TestParseVerdictCleanUnsafe(t *testing.T) {
	res, err := ParseVerdict("UNSAFE. The transcript contains graphic violence.")
	if err != nil {
		t.Fatalf("ParseVerdict() error = %v", err)
	}
	if res.Safe {
		t.Fatal("expected safe=false")
	}
	if !strings.Contains(res.Reason, "violence") {
		t.Errorf("reason = %q, want to mention violence", res.Reason)
	}
}

func TestParseVerdictHedgingIsUnsafe(t *testing.T) {
	res, err := ParseVerdict("SAFE, although I am not sure about one segment of the audio.")
	if err != nil {
		t.Fatalf("ParseVerdict() error = %v", err)
	}
	if res.Safe {
		t.Fatal("expected hedged response to fail closed to safe=false")
	}
}

func TestParseVerdictUnparseable(t *testing.T) {
	_, err := ParseVerdict("The weather today is pleasant.")
	if !errors.Is(err, ErrClassifierUnparseable) {
		t.Fatalf("expected ErrClassifierUnparseable, got %v", err)
	}
}

func TestParseVerdictEmpty(t *testing.T) {
	_, err := ParseVerdict("   ")
	if !errors.Is(err, ErrClassifierUnparseable) {
		t.Fatalf("expected ErrClassifierUnparseable, got %v", err)
	}
}

func TestParseVerdictTruncatesLongReason(t *testing.T) {
	long := "UNSAFE " + strings.Repeat("x", maxReasonLength+100)
	res, err := ParseVerdict(long)
	if err != nil {
		t.Fatalf("ParseVerdict() error = %v", err)
	}
	if len(res.Reason) != maxReasonLength {
		t.Errorf("len(Reason) = %d, want %d", len(res.Reason), maxReasonLength)
	}
}

func TestBuildPromptIncludesInputs(t *testing.T) {
	prompt := BuildPrompt("caption text", "My Title", "My Channel")
	for _, want := range []string{"caption text", "My Title", "My Channel"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestClientAnalyzeParsesCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResponse{Completion: "SAFE. Nothing concerning."})
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	res, err := c.Analyze(context.Background(), "caption", "title", "channel")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !res.Safe {
		t.Fatal("expected safe=true")
	}
}

func TestClientAnalyzeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	_, err := c.Analyze(context.Background(), "caption", "title", "channel")
	if !errors.Is(err, ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
	}
}

func TestClientAnalyzeUnparseableCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResponse{Completion: "no idea what you mean"})
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	_, err := c.Analyze(context.Background(), "caption", "title", "channel")
	if !errors.Is(err, ErrClassifierUnparseable) {
		t.Fatalf("expected ErrClassifierUnparseable, got %v", err)
	}
}
