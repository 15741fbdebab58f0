package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kreator/internal/domain"
	"kreator/internal/payload"
)

// Options configures the fal.ai client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client submits generation requests to fal.ai's synchronous endpoint. One
// attempt per call, no retry; the caller decides whether to resubmit.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
}

// NewClient builds a fal.ai client with sane defaults.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://fal.run"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		key:        strings.TrimSpace(opts.APIKey),
	}
}

type falResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Detail any `json:"detail,omitempty"`
}

// EmptyResultError reports a call the provider accepted but that produced no
// usable image (e.g. a safety-filter rejection). It carries the raw response
// body so the caller can surface it for diagnosis.
type EmptyResultError struct {
	Raw []byte
}

func (e *EmptyResultError) Error() string { return domain.ErrEmptyResult.Error() }

func (e *EmptyResultError) Unwrap() error { return domain.ErrEmptyResult }

// Generate posts the argument payload to the model's synchronous endpoint
// and returns the output image URLs. Failures are classified: transport and
// HTTP errors unwrap to ErrProviderFailure, an accepted-but-empty response
// unwraps to ErrEmptyResult.
func (c *Client) Generate(ctx context.Context, modelID string, args payload.Arguments) ([]string, error) {
	if c.key == "" {
		return nil, fmt.Errorf("%w: fal API key is missing", domain.ErrConfiguration)
	}
	modelID = strings.Trim(strings.TrimSpace(modelID), "/")
	if modelID == "" {
		return nil, fmt.Errorf("%w: model id required", domain.ErrValidation)
	}

	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: encode arguments: %v", domain.ErrProviderFailure, err)
	}

	endpoint := c.baseURL + "/" + modelID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrProviderFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrProviderFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(raw))
		if len(detail) > 512 {
			detail = detail[:512]
		}
		return nil, fmt.Errorf("%w: http %d: %s", domain.ErrProviderFailure, resp.StatusCode, detail)
	}

	var out falResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: malformed response body: %v", domain.ErrProviderFailure, err)
	}

	urls := make([]string, 0, len(out.Images))
	for _, img := range out.Images {
		if u := strings.TrimSpace(img.URL); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return nil, &EmptyResultError{Raw: raw}
	}
	return urls, nil
}
