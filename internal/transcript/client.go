package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Config configures a Client.
type Config struct {
	Endpoint   string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// Client is an Analyzer backed by a chat-completion-shaped text classifier
// (the contract mirrors a single-message completion call: a prompt in, a
// single text response out).
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient builds a Client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: httpClient,
	}
}

type completionRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Completion string `json:"completion"`
}

// Analyze implements Analyzer. The analyzer does not retry on its own; any
// retries are the transport layer's concern.
func (c *Client) Analyze(ctx context.Context, caption, title, channel string) (Result, error) {
	prompt := BuildPrompt(caption, title, channel)

	body, err := json.Marshal(completionRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return Result{}, &Error{Sentinel: ErrClassifierUnavailable, Operation: "marshal_request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, &Error{Sentinel: ErrClassifierUnavailable, Operation: "build_request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, &Error{Sentinel: ErrClassifierUnavailable, Operation: "do_request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return Result{}, &Error{Sentinel: ErrClassifierUnavailable, Operation: "completion", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return Result{}, &Error{Sentinel: ErrClassifierUnparseable, Operation: "completion", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, &Error{Sentinel: ErrClassifierUnavailable, Operation: "read_response", Err: err}
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, &Error{Sentinel: ErrClassifierUnparseable, Operation: "parse_response", Err: err}
	}

	return ParseVerdict(parsed.Completion)
}
