// Package client is the Go API client for the metrics portal. It keeps the
// session cookie in a jar, exposes the portal operations, and provides the
// view-side refresh coordination and row filtering the portal UI is built on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"mayaportal/pkg/platform/sentinel"
)

// ErrUnauthorized is returned when the portal rejects the request with the
// uniform 401. The server never says why.
var ErrUnauthorized = errors.New("client: not authenticated")

// CategoryCount is one labeled bucket of a report breakdown.
type CategoryCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// SubjectRow carries the per-subject flags of one subject in the window.
type SubjectRow struct {
	SubjectID   string    `json:"subject_id"`
	Visited     bool      `json:"visited"`
	PDF         bool      `json:"pdf"`
	EPUB        bool      `json:"epub"`
	EventCount  int64     `json:"event_count"`
	LastEventAt time.Time `json:"last_event_at"`
}

// Report is one snapshot as served by the portal.
type Report struct {
	OK           bool             `json:"ok"`
	Kind         string           `json:"kind"`
	WindowDays   int              `json:"window_days"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Summary      map[string]int64 `json:"summary"`
	ByFormat     []CategoryCount  `json:"by_format"`
	ByEventType  []CategoryCount  `json:"by_event_type"`
	TopCountries []CategoryCount  `json:"top_countries"`
	Rows         []SubjectRow     `json:"rows"`
}

// VerifyResult is the minimal claim set returned by the verify endpoint.
type VerifyResult struct {
	OK  bool   `json:"ok"`
	Sub string `json:"sub"`
	Exp int64  `json:"exp"`
}

// Client calls the metrics portal. The session cookie set by Login lives in
// the client's jar, so one Client is one session.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New creates a Client for the portal at baseURL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		baseURL: baseURL,
		logger:  logger,
	}, nil
}

// Login authenticates with the shared password. On success the session
// cookie lands in the jar and subsequent calls are authenticated.
func (c *Client) Login(ctx context.Context, password string) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{"password": password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp)
}

// Verify asks the portal whether the current session is valid.
func (c *Client) Verify(ctx context.Context) (*VerifyResult, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/verify", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var result VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return &result, nil
}

// Logout clears the session. The expired cookie replaces the live one in the
// jar.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp)
}

// Stats fetches the cached report for kind. days <= 0 leaves the window to
// the server default.
func (c *Client) Stats(ctx context.Context, kind string, days int) (*Report, error) {
	return c.report(ctx, http.MethodGet, "/api/"+kind+"/stats", days)
}

// Sync forces a refresh of the report for kind and returns the fresh copy.
func (c *Client) Sync(ctx context.Context, kind string, days int) (*Report, error) {
	return c.report(ctx, http.MethodPost, "/api/"+kind+"/sync", days)
}

func (c *Client) report(ctx context.Context, method, path string, days int) (*Report, error) {
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	resp, err := c.do(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "portal request", "method", method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "portal request failed", "method", method, "url", url, "error", err)
		return nil, fmt.Errorf("portal request: %v: %w", err, sentinel.ErrUnavailable)
	}

	c.logger.DebugContext(ctx, "portal response", "method", method, "url", url, "status", resp.StatusCode)
	return resp, nil
}

// checkStatus maps non-2xx responses to errors. The body's error code is
// carried in the message; 401 maps to the dedicated sentinel since it is the
// one outcome callers branch on.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var body struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return fmt.Errorf("portal: %s: %w", body.Error, sentinel.ErrNotFound)
	case http.StatusBadRequest:
		return fmt.Errorf("portal: %s: %w", body.Description, sentinel.ErrInvalidInput)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("portal: %s: %w", body.Error, sentinel.ErrUnavailable)
	default:
		return fmt.Errorf("portal: unexpected status %d: %s", resp.StatusCode, body.Error)
	}
}
