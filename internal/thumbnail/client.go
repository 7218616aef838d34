package thumbnail

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
	Threshold  Likelihood
	HTTPClient *http.Client
}

// Client is an Analyzer backed by an HTTP image-safety classifier whose
// wire contract mirrors Google Cloud Vision's SafeSearch annotation
// response: a flat object with one likelihood string per category.
type Client struct {
	endpoint   string
	apiKey     string
	threshold  Likelihood
	httpClient *http.Client
}

// NewClient builds a Client. threshold defaults to Possible when zero.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	threshold := cfg.Threshold
	if threshold == Unknown {
		threshold = Possible
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		threshold:  threshold,
		httpClient: httpClient,
	}
}

type classifyRequest struct {
	ImageURL string `json:"image_url"`
}

type classifyResponse struct {
	Adult    string `json:"adult"`
	Violence string `json:"violence"`
	Racy     string `json:"racy"`
	Medical  string `json:"medical"`
	Spoof    string `json:"spoof"`
}

// Analyze implements Analyzer.
func (c *Client) Analyze(ctx context.Context, thumbnailURL string) (Result, error) {
	if thumbnailURL == "" {
		return Result{}, &Error{Sentinel: ErrImageFetchFailed, Operation: "analyze", Err: fmt.Errorf("empty thumbnail url")}
	}

	body, err := json.Marshal(classifyRequest{ImageURL: thumbnailURL})
	if err != nil {
		return Result{}, &Error{Sentinel: ErrClassifierRejected, Operation: "marshal_request", Err: err}
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

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity {
		return Result{}, &Error{Sentinel: ErrImageFetchFailed, Operation: "classify", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 500 {
		return Result{}, &Error{Sentinel: ErrClassifierUnavailable, Operation: "classify", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return Result{}, &Error{Sentinel: ErrClassifierRejected, Operation: "classify", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, &Error{Sentinel: ErrClassifierUnavailable, Operation: "read_response", Err: err}
	}

	var parsed classifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, &Error{Sentinel: ErrClassifierRejected, Operation: "parse_response", Err: err}
	}

	scores := Scores{
		CategoryAdult:    ParseLikelihood(parsed.Adult),
		CategoryViolence: ParseLikelihood(parsed.Violence),
		CategoryRacy:     ParseLikelihood(parsed.Racy),
		CategoryMedical:  ParseLikelihood(parsed.Medical),
		CategorySpoof:    ParseLikelihood(parsed.Spoof),
	}
	return Evaluate(scores, c.threshold), nil
}
