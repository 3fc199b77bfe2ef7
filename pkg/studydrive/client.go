package studydrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"studysnatcher/pkg/config"
	"studysnatcher/pkg/errors"
	"studysnatcher/pkg/logger"
)

// Client talks to the Studydrive mobile-app gateway. It owns the
// session state: protocol headers, cookies, the derived client secret
// and (after Login) the bearer token. A Client is built once per run
// and is not safe for concurrent pipelines.
type Client struct {
	httpClient   *http.Client // API calls, follows redirects
	noRedirect   *http.Client // download-link resolution, redirects disabled
	streamClient *http.Client // file streaming, no overall timeout
	headers      map[string]string
	baseURL      string
	warmupURL    string

	defaultRetryAfter time.Duration
	now               func() time.Time
	logger            logger.Logger
}

// NewClient creates a Studydrive client from configuration
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	// One jar shared by every transport so warm-up cookies reach all
	// subsequent requests.
	jar, _ := cookiejar.New(nil)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Download.APITimeout,
			Jar:     jar,
		},
		noRedirect: &http.Client{
			Timeout: cfg.Download.APITimeout,
			Jar:     jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		streamClient: &http.Client{
			Jar: jar,
		},
		headers: map[string]string{
			"X-SD-Platform": cfg.Studydrive.Platform,
			"X-SD-Build":    cfg.Studydrive.Build,
			"User-Agent":    cfg.Studydrive.UserAgent,
		},
		baseURL:           cfg.Studydrive.BaseURL,
		warmupURL:         cfg.Studydrive.WarmupURL,
		defaultRetryAfter: cfg.RateLimit.DefaultRetryAfter,
		now:               time.Now,
		logger:            log,
	}
}

// SetHeader sets a session header sent on every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHeaders sets multiple session headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// BaseURL returns the gateway base URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET with the session headers, transparently retrying on
// HTTP 429 for as long as the server keeps rate limiting. The delay
// comes from the retry-after header; the wait honors ctx. Every other
// status, including errors, is returned as-is for the caller to
// interpret.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) (*http.Response, error) {
	return c.getRateLimited(ctx, c.httpClient, rawURL, query)
}

// GetNoRedirect behaves like Get but does not follow redirects, so the
// caller can read the Location header itself.
func (c *Client) GetNoRedirect(ctx context.Context, rawURL string, query url.Values) (*http.Response, error) {
	return c.getRateLimited(ctx, c.noRedirect, rawURL, query)
}

func (c *Client) getRateLimited(ctx context.Context, client *http.Client, rawURL string, query url.Values) (*http.Response, error) {
	for {
		resp, err := c.do(ctx, client, http.MethodGet, rawURL, query, nil)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		delay := c.retryAfter(resp)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		c.logger.WarnWithFields("rate limit reached, waiting before retry", map[string]interface{}{
			"url":         rawURL,
			"retry_after": delay,
		})

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// GetJSON performs a rate-limited GET and decodes the JSON response
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, target interface{}) error {
	resp, err := c.Get(ctx, rawURL, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          rawURL,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// Download streams a resolved file URL. The response body is the file
// content; the caller owns closing it. Uses a transport without an
// overall timeout so large files are not cut off mid-stream.
func (c *Client) Download(ctx context.Context, rawURL string) (*http.Response, error) {
	resp, err := c.do(ctx, c.streamClient, http.MethodGet, rawURL, nil, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &errors.Error{
			Type:    errors.ErrorTypeDownload,
			Message: fmt.Sprintf("download request returned status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	return resp, nil
}

// postForm issues a form-encoded POST with the session headers. No
// rate-limit retry applies here; login failures are terminal.
func (c *Client) postForm(ctx context.Context, rawURL string, data url.Values) (*http.Response, error) {
	return c.do(ctx, c.httpClient, http.MethodPost, rawURL, nil, data)
}

// do builds and performs one request with the session headers applied
func (c *Client) do(ctx context.Context, client *http.Client, method, rawURL string, query url.Values, form url.Values) (*http.Response, error) {
	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}

	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": method,
		"url":    req.URL.String(),
	})

	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// retryAfter reads the server-supplied retry delay from a 429 response,
// falling back to the configured default when absent or malformed
func (c *Client) retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("retry-after")
	if header == "" {
		return c.defaultRetryAfter
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return c.defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// wait sleeps for the given delay or until the context is cancelled
func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
