package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/exp/rand"
)

const (
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = time.Millisecond * 500
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryPolicy decides which responses are worth retrying. The default treats
// throttling and server errors as transient; everything else is returned to
// the caller untouched, in particular auth failures and other 4xx.
type RetryPolicy func(resp *http.Response) bool

func DefaultRetryPolicy(resp *http.Response) bool {
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}

// RetryingClient wraps an HTTPClient with bounded retries and exponential
// backoff on transient failures: connection errors, 429s, and 5xx responses.
type RetryingClient struct {
	client      HTTPClient
	retryable   RetryPolicy
	baseBackoff time.Duration
	maxRetries  int
}

// ClientOption is a function that can be used to configure a RetryingClient
type ClientOption func(*RetryingClient)

// NewRetryingClient creates a client that retries transient failures.
// The client can be used concurrently.
func NewRetryingClient(opts ...ClientOption) *RetryingClient {
	c := &RetryingClient{
		client:      http.DefaultClient,
		retryable:   DefaultRetryPolicy,
		maxRetries:  DefaultMaxRetries,
		baseBackoff: DefaultBaseBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithMaxRetries sets the maximum number of attempts for the client
func WithMaxRetries(maxRetries int) ClientOption {
	return func(c *RetryingClient) {
		c.maxRetries = maxRetries
	}
}

// WithBaseBackoff sets the base backoff time for the client
func WithBaseBackoff(baseBackoff time.Duration) ClientOption {
	return func(c *RetryingClient) {
		c.baseBackoff = baseBackoff
	}
}

// WithHTTPClient sets the http client to use for the client
func WithHTTPClient(client HTTPClient) ClientOption {
	return func(c *RetryingClient) {
		c.client = client
	}
}

// WithRetryPolicy overrides which responses count as transient
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *RetryingClient) {
		c.retryable = p
	}
}

// Do executes the HTTP request, retrying transient failures with backoff.
// This is a blocking call until the request completes or retries are
// exhausted, in which case the last response (or last transport error) is
// returned along with an error.
func (c *RetryingClient) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 && req.Body != nil {
			if req.GetBody == nil {
				// can't replay the body; surface whatever we have
				break
			}
			req.Body, err = req.GetBody()
			if err != nil {
				return nil, err
			}
		}

		resp, err = c.client.Do(req)
		if err != nil {
			// connection-level failure; back off and try again
			wait(c.backoff(attempt))
			continue
		}

		if !c.retryable(resp) {
			return resp, nil
		}

		retryAfter := c.getRetryAfter(resp, attempt)
		resp.Body.Close()
		wait(retryAfter)
	}

	if err != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries, err)
	}

	return resp, fmt.Errorf("retries exhausted after %d attempts: %s", c.maxRetries, resp.Status)
}

func wait(d time.Duration) {
	if d <= 0 {
		return
	}
	ticker := time.NewTicker(d)
	<-ticker.C
	ticker.Stop()
}

// getRetryAfter calculates the appropriate retry delay
func (c *RetryingClient) getRetryAfter(resp *http.Response, attempt int) time.Duration {
	retryAfterHeader := resp.Header.Get("Retry-After")

	if retryAfterHeader != "" {
		seconds, err := strconv.Atoi(retryAfterHeader)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	return c.backoff(attempt)
}

func (c *RetryingClient) backoff(attempt int) time.Duration {
	// 2^n backoff
	expBackoff := time.Duration(1<<attempt) * c.baseBackoff

	// staggers the backoff to avoid a thundering herd
	jitter := time.Duration(rand.Int63n(int64(c.baseBackoff)))

	return expBackoff + jitter
}
