package subtitleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// GeneratePath is resolved against the caller's base URL.
	GeneratePath = "generate-subtitles"

	defaultUserAgent = "subgen/dev"

	maxErrorBodyBytes    = 64 << 10
	maxResponseBodyBytes = 64 << 20
)

// Config describes the client configuration. Timeout is ignored when
// HTTPClient is set; zero disables the client-side deadline.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues subtitle generation requests.
type Client struct {
	userAgent string
	http      *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) *Client {
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{userAgent: userAgent, http: client}
}

// Endpoint resolves the generation endpoint against baseURL. A base without a
// trailing slash loses its last path segment, matching RFC 3986 resolution.
func Endpoint(baseURL string) (*url.URL, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("subtitleapi: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("subtitleapi: base url %q must be absolute", baseURL)
	}
	return base.ResolveReference(&url.URL{Path: GeneratePath}), nil
}

// GenerateSubtitles posts req to the generation endpoint under baseURL.
//
// A 2xx response with an empty or null body returns (nil, nil). Non-2xx
// responses return *StatusError; undecodable payloads return *DecodeError.
// Network failures, timeouts and cancellations are returned unchanged from
// the HTTP client.
func (c *Client) GenerateSubtitles(ctx context.Context, baseURL string, req VideoRequest) (*SubtitleResponse, error) {
	if c == nil {
		return nil, errors.New("subtitleapi: client is nil")
	}
	endpoint, err := Endpoint(baseURL)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("subtitleapi: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("subtitleapi: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &StatusError{
			Code:    resp.StatusCode,
			Message: reasonPhrase(resp),
			Body:    string(errBody),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("subtitleapi: read response: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var payload SubtitleResponse
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &payload, nil
}

// reasonPhrase strips the numeric code from resp.Status, falling back to the
// canonical text when the server sent none.
func reasonPhrase(resp *http.Response) string {
	status := strings.TrimSpace(resp.Status)
	status = strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(resp.StatusCode)))
	if status == "" {
		status = http.StatusText(resp.StatusCode)
	}
	return status
}
