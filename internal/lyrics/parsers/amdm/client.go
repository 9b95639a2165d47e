package amdm

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sukalov/lyricforge/internal/logger"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultMaxBytes  = 2 << 20
	defaultRetries   = 2
)

var errPageTooLarge = errors.New("page is too large")

// mirrorHosts are rewritten to the canonical host before fetching
var mirrorHosts = map[string]string{
	"123.amdm.ru": "amdm.ru",
	"m.amdm.ru":   "amdm.ru",
}

// Client fetches chord pages over HTTP
type Client struct {
	httpClient   *http.Client
	userAgent    string
	maxBytes     int64
	retries      uint64
	retryBackoff time.Duration
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithRetries sets how many times a transient failure is retried and the
// initial wait between attempts.
func WithRetries(n uint64, initial time.Duration) ClientOption {
	return func(c *Client) {
		c.retries = n
		c.retryBackoff = initial
	}
}

// WithMaxBytes caps the size of a fetched page
func WithMaxBytes(n int64) ClientOption {
	return func(c *Client) { c.maxBytes = n }
}

// NewClient creates a chord page client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		userAgent:    defaultUserAgent,
		maxBytes:     defaultMaxBytes,
		retries:      defaultRetries,
		retryBackoff: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// canonicalURL maps mirror hosts onto the main site
func canonicalURL(url string) string {
	for mirror, host := range mirrorHosts {
		if strings.Contains(url, "//"+mirror+"/") {
			return strings.Replace(url, "//"+mirror+"/", "//"+host+"/", 1)
		}
	}
	return url
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.code)
}

// FetchPage returns the HTML at url. Server errors and transport failures are
// retried; client errors and cancellation are not.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	fetchURL := canonicalURL(url)

	var body string
	operation := func() error {
		page, err := c.fetchOnce(ctx, fetchURL)
		if err == nil {
			body = page
			return nil
		}
		var se *statusError
		if ctx.Err() != nil || errors.Is(err, errPageTooLarge) || (errors.As(err, &se) && se.code < 500) {
			return backoff.Permanent(err)
		}
		logger.Debug(fmt.Sprintf("retrying %s: %v", fetchURL, err))
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBackoff
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.retries), ctx))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to fetch page\nURL: %s\nError: %v", fetchURL, err))
		return "", err
	}
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, fetchURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru,en-US;q=0.7,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	// Setting Accept-Encoding ourselves turns off transparent decompression.
	if strings.Contains(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	page, err := io.ReadAll(io.LimitReader(reader, c.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(page)) > c.maxBytes {
		return "", fmt.Errorf("%w: over %d bytes", errPageTooLarge, c.maxBytes)
	}
	return string(page), nil
}
