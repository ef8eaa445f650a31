package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"pdf-extract-api/internal/domain"
)

const (
	// GroupMaxAttempts is the retry budget for group and per-page
	// extraction calls.
	GroupMaxAttempts = 5
	// HeaderMaxAttempts is the retry budget for table header detection.
	HeaderMaxAttempts = 3

	// DefaultGroupBackoff is the flat delay between group/page attempts.
	DefaultGroupBackoff = 15 * time.Second
	// DefaultHeaderBackoffUnit scales the linear header-detection backoff:
	// attempt n waits n * unit.
	DefaultHeaderBackoffUnit = 3 * time.Second
)

// RetryPolicy bounds an operation's attempts and computes the delay before
// each re-attempt. Backoff receives the 1-based number of the attempt that
// just failed.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// GroupRetryPolicy is the flat-backoff policy used for group and page
// extraction.
func GroupRetryPolicy(delay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: GroupMaxAttempts,
		Backoff:     func(int) time.Duration { return delay },
	}
}

// HeaderRetryPolicy is the linear-backoff policy used for table header
// detection.
func HeaderRetryPolicy(unit time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: HeaderMaxAttempts,
		Backoff:     func(attempt int) time.Duration { return time.Duration(attempt) * unit },
	}
}

// RetryingTransport wraps an operation in a bounded-retry loop. Transport
// failures and malformed model responses consume the same budget; the two
// are only distinguished in the terminal error message.
type RetryingTransport struct {
	logger domain.Logger
}

// NewRetryingTransport creates a new retrying transport
func NewRetryingTransport(logger domain.Logger) *RetryingTransport {
	return &RetryingTransport{logger: logger}
}

// Do runs op until it succeeds or the policy's attempt budget is spent.
// Backoff waits honor ctx cancellation. The terminal error wraps both
// domain.ErrRetriesExhausted and the last underlying error.
func (t *RetryingTransport) Do(ctx context.Context, opName string, policy RetryPolicy, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		backoff := policy.Backoff(attempt)
		t.logger.Warn("Operation failed, will retry",
			"operation", opName,
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			t.logger.Error("Context cancelled during backoff", ctx.Err(), "operation", opName)
			return ctx.Err()
		}
	}

	t.logger.Error("Operation failed after all retries", lastErr,
		"operation", opName, "attempts", policy.MaxAttempts)

	if isUnreachable(lastErr) {
		return fmt.Errorf("%w: %s failed after %d attempts, inference backend unreachable: %w",
			domain.ErrRetriesExhausted, opName, policy.MaxAttempts, lastErr)
	}
	return fmt.Errorf("%w: %s failed after %d attempts: %w",
		domain.ErrRetriesExhausted, opName, policy.MaxAttempts, lastErr)
}

// isUnreachable reports whether err looks like a network-level failure
// rather than an application-level one.
func isUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
