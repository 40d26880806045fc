package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smileynet/campaignmgr/internal/campaign"
)

// Default call limits used when no option is provided.
const (
	defaultTimeout      = 2 * time.Minute
	defaultProbeTimeout = 10 * time.Second
	maxBodyBytes        = 8 << 20
)

// ErrInvalidBaseURL indicates the service base URL is not an absolute http(s) URL.
var ErrInvalidBaseURL = errors.New("api: invalid base url")

// Verify Client satisfies campaign.Generator at compile time.
var _ campaign.Generator = (*Client)(nil)

// Client talks to the campaign generation service over HTTP.
type Client struct {
	baseURL      *url.URL
	http         *http.Client
	timeout      time.Duration
	probeTimeout time.Duration
	logger       *slog.Logger
	newID        func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the time limit for campaign generation calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithProbeTimeout sets the time limit for the status call.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) { c.probeTimeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidBaseURL, baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:      u,
		http:         http.DefaultClient,
		timeout:      defaultTimeout,
		probeTimeout: defaultProbeTimeout,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// BaseURL returns the service root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Hello reads the service status message from GET /api/hello.
func (c *Client) Hello(ctx context.Context) (string, error) {
	var body struct {
		Message *string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, HelloPath, nil, c.probeTimeout, &body); err != nil {
		return "", err
	}
	if body.Message == nil {
		return "", &DecodeError{Endpoint: HelloPath, Err: errors.New("missing message field")}
	}
	return *body.Message, nil
}

// RunCampaign posts the brief to POST /api/run-campaign and returns the
// decoded result. The body's internal shape is not validated.
func (c *Client) RunCampaign(ctx context.Context, brief string) (campaign.Result, error) {
	payload, err := json.Marshal(RunCampaignRequest{IntentBrief: brief})
	if err != nil {
		return campaign.Result{}, fmt.Errorf("api: encoding request: %w", err)
	}
	var body RunCampaignResponse
	if err := c.do(ctx, http.MethodPost, RunCampaignPath, payload, c.timeout, &body); err != nil {
		return campaign.Result{}, err
	}
	return body.ToResult(), nil
}

// do performs one request and decodes a 2xx JSON object body into out.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, timeout time.Duration, out any) error {
	start := time.Now()
	parent := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reqBody)
	if err != nil {
		return &RequestError{Endpoint: path, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := c.newID()
	req.Header.Set(RequestIDHeader, reqID)

	log := c.logger.With("method", method, "path", path, "request_id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		// Only the per-call deadline is a TimeoutError; a caller's own
		// deadline or cancellation is reported as a RequestError.
		if timeout > 0 && parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("request timed out", "timeout", timeout)
			return &TimeoutError{Endpoint: path, Duration: timeout}
		}
		log.Warn("request failed", "error", err)
		return &RequestError{Endpoint: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		log.Warn("unexpected status", "status", resp.StatusCode)
		return &StatusError{Endpoint: path, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &RequestError{Endpoint: path, Err: err}
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &DecodeError{Endpoint: path, Err: errors.New("body is not a JSON object")}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return &DecodeError{Endpoint: path, Err: err}
	}

	log.Debug("request complete", "status", resp.StatusCode, "duration", time.Since(start))
	return nil
}
