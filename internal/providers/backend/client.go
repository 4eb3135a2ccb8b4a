package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxSummaryBody = 1 << 20

// Config controls backend endpoints.
type Config struct {
	BaseURL        string
	SummaryPath    string
	ChannelPath    string
	RequestTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = "https://voice-ai-ck2m.onrender.com"
	}
	if c.SummaryPath == "" {
		c.SummaryPath = "/get-call-summary"
	}
	if c.ChannelPath == "" {
		c.ChannelPath = "/ws"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
	return c
}

// StatusError is returned for non-2xx summary responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	text := http.StatusText(e.Code)
	if text == "" {
		text = "Unknown Status"
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, text)
}

// Client implements ports.SummarySource over HTTP.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = newDefaultHTTPClient()
	}
	return &Client{cfg: cfg.withDefaults(), http: httpClient}
}

// FetchSummary returns the inner summary string. The backend double-encodes
// it, so callers still need to decode the returned text.
func (c *Client) FetchSummary(ctx context.Context) (string, error) {
	endpoint, err := buildURL(c.cfg.BaseURL, c.cfg.SummaryPath)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build summary request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSummaryBody))
		return "", &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSummaryBody))
	if err != nil {
		return "", fmt.Errorf("failed to read summary response: %w", err)
	}

	var envelope struct {
		Summary json.RawMessage `json:"summary"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("failed to decode summary response: %w", err)
	}
	return summaryText(envelope.Summary)
}

// summaryText unwraps the JSON string held in the summary field. A summary
// that is already an object is passed through as its JSON text.
func summaryText(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", fmt.Errorf("failed to decode summary field: %w", err)
		}
		return text, nil
	}
	return trimmed, nil
}

func buildURL(base string, path string) (string, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "", errors.New("backend base URL is not configured")
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	parsed, err := url.Parse(base + path)
	if err != nil {
		return "", fmt.Errorf("invalid backend URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid backend URL %q", base)
	}
	return parsed.String(), nil
}

// channelURL rewrites the backend base onto the websocket scheme.
func channelURL(base string, path string) (string, error) {
	base = strings.TrimSpace(base)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return buildURL(base, path)
}

func newDefaultHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
	return &http.Client{Transport: transport}
}
