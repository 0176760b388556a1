package cliclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Default retry configuration
const (
	defaultMaxRetries         = 3
	defaultInitialRetryDelay  = 500 * time.Millisecond
	defaultMaxRetryDelay      = 5 * time.Second
	defaultRetryDelayMultiple = 2.0
)

// retryPolicy is exponential backoff for transient failures.
type retryPolicy struct {
	maxRetries         int
	initialRetryDelay  time.Duration
	maxRetryDelay      time.Duration
	retryDelayMultiple float64
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		maxRetries:         defaultMaxRetries,
		initialRetryDelay:  defaultInitialRetryDelay,
		maxRetryDelay:      defaultMaxRetryDelay,
		retryDelayMultiple: defaultRetryDelayMultiple,
	}
}

func (p retryPolicy) next(delay time.Duration) time.Duration {
	delay = time.Duration(float64(delay) * p.retryDelayMultiple)
	return min(delay, p.maxRetryDelay)
}

// retryable reports whether a round trip is worth repeating: network errors
// and 5xx responses. 429 and other 4xx answers are final because repeating
// them only burns the caller's budget.
func retryable(err error, resp *http.Response) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil {
		return false
	}
	return resp.StatusCode >= http.StatusInternalServerError
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// doWithRetry sends the request built by newReq, rebuilding it for every
// attempt so request bodies are never reused.
func (c *Client) doWithRetry(
	ctx context.Context,
	newReq func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	var (
		lastErr error
		resp    *http.Response
	)
	delay := c.retry.initialRetryDelay

	for attempt := 0; attempt <= c.retry.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, delay); err != nil {
				if lastErr != nil {
					return nil, fmt.Errorf("context cancelled after %d attempts: %w", attempt, lastErr)
				}
				return nil, err
			}
			delay = c.retry.next(delay)
		}

		req, err := newReq(ctx)
		if err != nil {
			return nil, err
		}

		resp, lastErr = c.http.Do(req)
		if !retryable(lastErr, resp) {
			return resp, lastErr
		}

		// Last attempt: hand the 5xx back to the caller
		if attempt == c.retry.maxRetries {
			break
		}
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("request failed after %d retries: %w", c.retry.maxRetries, lastErr)
	}
	return resp, nil
}
