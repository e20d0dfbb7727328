// Package backend is the REST/JSON client for the playbook backend.
//
// Every playbook read fetches the whole collection; there is no single-resource
// endpoint, so lookups by id happen client side with FindPlaybook.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leapstack-labs/pbconsole/pkg/core"
)

// StatusError is returned for any non-2xx response.
// 4xx and 5xx are treated alike.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP error, status %d", e.Method, e.URL, e.StatusCode)
}

// Client talks to the playbook backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithClock overrides the clock used to stamp normalized log entries.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for the backend rooted at baseURL.
// The default HTTP client has no timeout: a hung request stays pending until its
// context is cancelled.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Playbooks fetches the full playbook collection.
func (c *Client) Playbooks(ctx context.Context) ([]core.Playbook, error) {
	var playbooks []core.Playbook
	if err := c.getJSON(ctx, "/playbooks", &playbooks); err != nil {
		return nil, fmt.Errorf("failed to fetch playbooks: %w", err)
	}
	return playbooks, nil
}

// Playbook fetches the full collection and returns the playbook with the given id.
// A miss returns nil without an error.
func (c *Client) Playbook(ctx context.Context, id string) (*core.Playbook, error) {
	playbooks, err := c.Playbooks(ctx)
	if err != nil {
		return nil, err
	}
	return FindPlaybook(playbooks, id), nil
}

// Steps fetches the full step collection of a playbook.
func (c *Client) Steps(ctx context.Context, playbookID string) ([]core.Step, error) {
	var steps []core.Step
	if err := c.getJSON(ctx, "/playbooks/"+url.PathEscape(playbookID)+"/steps", &steps); err != nil {
		return nil, fmt.Errorf("failed to fetch steps for playbook %s: %w", playbookID, err)
	}
	return steps, nil
}

// Logs fetches the log records of a playbook and normalizes them to LogEntry.
func (c *Client) Logs(ctx context.Context, playbookID string) ([]core.LogEntry, error) {
	var raw []any
	if err := c.getJSON(ctx, "/playbooks/"+url.PathEscape(playbookID)+"/logs", &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch logs for playbook %s: %w", playbookID, err)
	}
	return NormalizeLogs(raw, c.now()), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("backend request", "url", endpoint, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: http.MethodGet, URL: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed response from %s: %w", endpoint, err)
	}
	return nil
}

// FindPlaybook returns the playbook with the given id, or nil when absent.
func FindPlaybook(playbooks []core.Playbook, id string) *core.Playbook {
	for i := range playbooks {
		if playbooks[i].ID == id {
			pb := playbooks[i]
			return &pb
		}
	}
	return nil
}
