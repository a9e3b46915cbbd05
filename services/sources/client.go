package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	defaultTimeout    = 20 * time.Second
	defaultMaxRetries = 2
	defaultRetryDelay = 350 * time.Millisecond
)

// ClientConfig holds shared HTTP configuration for feed adapters
type ClientConfig struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string
}

// Client is the shared HTTP client used by every feed adapter. Retries
// apply to transport failures and 5xx responses only; auth and rate
// limit responses surface immediately so the status board shows the
// real cause instead of a timeout.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
}

// NewClient creates a new feed client
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = defaultRetryDelay
	}
	if config.UserAgent == "" {
		config.UserAgent = "sentinel/1.0"
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Get fetches a URL and returns the response body, retrying transient failures.
func (c *Client) Get(ctx context.Context, source, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, NewFeedError(source, "TIMEOUT", "request cancelled", 0, false, ctx.Err())
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
		}

		body, err := c.getOnce(ctx, source, url)
		if err == nil {
			return body, nil
		}

		var feedErr *FeedError
		if errors.As(err, &feedErr) && !feedErr.Retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, source, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewFeedError(source, "REQUEST_ERROR", "failed to create request", 0, false, err)
	}
	req.Header.Set("Accept", "application/json, application/geo+json, application/xml, text/xml")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, NewFeedError(source, "TIMEOUT", "request timed out", 0, true, err)
		}
		return nil, NewFeedError(source, "CONNECTION_ERROR", "connection failed", 0, true, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		retryable := resp.StatusCode >= 500
		return nil, NewFeedError(source, "HTTP_ERROR", http.StatusText(resp.StatusCode), resp.StatusCode, retryable, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewFeedError(source, "READ_ERROR", "failed to read response", resp.StatusCode, true, err)
	}

	return body, nil
}

// GetJSON fetches a URL and unmarshals the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, source, url string, out interface{}) error {
	body, err := c.Get(ctx, source, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return NewFeedError(source, "PARSE_ERROR", "failed to parse JSON response", 0, false, err)
	}
	return nil
}

// GetXML fetches a URL and unmarshals the XML response into out.
func (c *Client) GetXML(ctx context.Context, source, url string, out interface{}) error {
	body, err := c.Get(ctx, source, url)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, out); err != nil {
		return NewFeedError(source, "PARSE_ERROR", "failed to parse XML response", 0, false, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
