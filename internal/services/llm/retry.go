package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryPolicy doubles the delay from base on every attempt, capped at
// ceiling. attempts counts requests, not retries.
type retryPolicy struct {
	attempts int
	base     time.Duration
	ceiling  time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{attempts: 5, base: time.Second, ceiling: 10 * time.Second}
}

func (p retryPolicy) maxAttempts() int {
	return max(p.attempts, 1)
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.base <= 0 {
		return 0
	}
	delay := p.base
	for i := 1; i < attempt; i++ {
		if p.ceiling > 0 && delay >= p.ceiling {
			break
		}
		delay *= 2
	}
	return p.clamp(delay)
}

func (p retryPolicy) clamp(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if p.ceiling > 0 && delay > p.ceiling {
		return p.ceiling
	}
	return delay
}

// next reports whether attempt should be followed by another one and how
// long to wait first.
func (p retryPolicy) next(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if err == nil || attempt >= p.maxAttempts() || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var empty *emptyContentError
	if errors.As(err, &empty) {
		return p.backoff(attempt), true
	}

	var status *statusError
	if errors.As(err, &status) {
		if !retryableStatus(status.StatusCode) {
			return 0, false
		}
		if status.RetryAfter > 0 {
			return p.clamp(status.RetryAfter), true
		}
		return p.backoff(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.backoff(attempt), true
	}
	return 0, false
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// complete runs payload through the retry policy and returns the first
// non-empty completion body.
func (c *Client) complete(ctx context.Context, op string, payload chatCompletionRequest) (string, error) {
	var lastErr error
	attempts := c.retry.maxAttempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, body, err := c.post(ctx, payload)
		if err == nil {
			if content := resp.content(); content != "" {
				return content, nil
			}
			if len(resp.Choices) == 0 {
				err = fmt.Errorf("%s: empty choices", op)
			} else {
				err = &emptyContentError{
					Op:           op,
					FinishReason: resp.finishReason(),
					Refusal:      resp.refusal(),
					Snippet:      snippet(string(body)),
				}
			}
		}

		delay, again := c.retry.next(ctx, err, attempt)
		if !again {
			return "", err
		}
		if err := c.wait(ctx, delay); err != nil {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleep != nil {
		c.sleep(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}
