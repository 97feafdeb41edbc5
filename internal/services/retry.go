package services

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// RequestFactory builds a fresh request for each attempt so the body can
// be replayed on retry.
type RequestFactory func(ctx context.Context) (*http.Request, error)

type RequestClient interface {
	Do(ctx context.Context, newRequest RequestFactory) (*http.Response, error)
}

type retryClient struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
}

// NewRetryClient wraps an HTTP client with exponential-backoff retry on
// transient failures (503/429 responses and transport errors). When
// retries are exhausted the last non-2xx response is returned as-is; the
// caller interprets its status code.
func NewRetryClient(httpClient *http.Client, maxRetries int, initialBackoff time.Duration) RequestClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if initialBackoff <= 0 {
		initialBackoff = time.Second
	}
	return &retryClient{
		httpClient:     httpClient,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
	}
}

// Do implements RequestClient.
func (c *retryClient) Do(ctx context.Context, newRequest RequestFactory) (*http.Response, error) {
	return c.attempt(ctx, newRequest, c.maxRetries, c.initialBackoff)
}

// attempt owns its remaining-retry count and backoff value; each retry
// recurses with fresh values rather than sharing mutable state.
func (c *retryClient) attempt(ctx context.Context, newRequest RequestFactory, retries int, backoff time.Duration) (*http.Response, error) {
	req, err := newRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if retries > 0 {
			if waitErr := sleepWithContext(ctx, backoff); waitErr != nil {
				return nil, waitErr
			}
			return c.attempt(ctx, newRequest, retries-1, backoff*2)
		}
		return nil, err
	}

	if (resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests) && retries > 0 {
		resp.Body.Close()
		if waitErr := sleepWithContext(ctx, backoff); waitErr != nil {
			return nil, waitErr
		}
		return c.attempt(ctx, newRequest, retries-1, backoff*2)
	}

	return resp, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("request cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
