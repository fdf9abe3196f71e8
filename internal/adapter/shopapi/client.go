package shopapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/storefront/internal/domain"
)

const (
	// AuthHeader carries the session token on requests and on the sign-in response
	AuthHeader = "x-auth-token"

	defaultTimeout    = 15 * time.Second
	defaultRetryCount = 3
	baseRetryDelay    = 250 * time.Millisecond
	maxRetryDelay     = 2 * time.Second
	maxErrorBody      = 200
)

// Options configures a Client
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
}

// Client implements domain.StoreClient against the storefront REST API
type Client struct {
	http   *resty.Client
	token  string
	logger *slog.Logger
}

var _ domain.StoreClient = (*Client)(nil)

// NewClient creates a new store API client
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("server URL must start with http:// or https://, got: %s", baseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := opts.RetryCount
	if retries < 0 {
		retries = 0
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(retries).
		SetRetryWaitTime(baseRetryDelay).
		SetRetryMaxWaitTime(maxRetryDelay)

	httpClient.AddRetryCondition(retryCondition)

	return &Client{
		http:   httpClient,
		token:  opts.Token,
		logger: logger,
	}, nil
}

// DefaultOptions returns options with the package defaults for a base URL
func DefaultOptions(baseURL string) Options {
	return Options{BaseURL: baseURL, Timeout: defaultTimeout, RetryCount: defaultRetryCount}
}

// WithToken returns a copy of the client that authenticates with token.
// The underlying HTTP client is shared.
func (c *Client) WithToken(token string) *Client {
	return &Client{http: c.http, token: token, logger: c.logger}
}

// retryCondition retries idempotent reads on network errors, 5xx and 429.
// Mutations are never retried.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests
}

// request builds an authenticated request. Protected calls without a token
// fail before touching the network.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if c.token == "" {
		return nil, domain.ErrUnauthenticated
	}
	return c.http.R().SetContext(ctx).SetHeader(AuthHeader, c.token), nil
}

// publicRequest builds a request for endpoints that do not need a session
func (c *Client) publicRequest(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// check maps transport errors and status codes to domain errors
func (c *Client) check(resp *resty.Response, err error, method, path string) error {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("store request timed out", "method", method, "path", path)
			return fmt.Errorf("%w: request timed out", domain.ErrServerOffline)
		}
		c.logger.Error("store request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}

	c.logger.Debug("store response",
		"method", method,
		"path", path,
		"status", resp.StatusCode(),
		"duration", resp.Time(),
	)

	if !resp.IsError() {
		return nil
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthenticated
	case http.StatusNotFound:
		return domain.ErrNotFound
	}

	body := strings.TrimSpace(resp.String())
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	c.logger.Error("store request error", "method", method, "path", path, "status", resp.StatusCode(), "body", body)
	if body == "" {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}
	return fmt.Errorf("unexpected status code: %d - %s", resp.StatusCode(), body)
}
