package llm

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

const maxAttempts = 3

// Overridden in tests to avoid real backoff waits.
var initialInterval = 2 * time.Second

// retryClient retries transient backend failures with exponential backoff.
// Auth and malformed-request failures are surfaced immediately.
type retryClient struct {
	inner interfaces.LLMClient
}

func withRetry(inner interfaces.LLMClient) interfaces.LLMClient {
	return &retryClient{inner: inner}
}

func (c *retryClient) Name() string {
	return c.inner.Name()
}

func (c *retryClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	logger := ctxlog.From(ctx)
	attempt := 0

	op := func() (string, error) {
		attempt++
		out, err := c.inner.Generate(ctx, systemPrompt, userPrompt)
		if err == nil {
			return out, nil
		}
		if !isTransient(err) {
			return "", backoff.Permanent(err)
		}
		logger.Warn("transient LLM failure, will retry",
			slog.String("provider", c.inner.Name()),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
		return "", err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(maxAttempts),
	)
}

// isTransient decides whether a backend failure is worth retrying. Provider
// SDKs do not expose a shared error type, so HTTP status classification
// falls back to message inspection.
func isTransient(err error) bool {
	if types.IsTransient(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := err.Error()
	for _, marker := range []string{
		"429", "500", "502", "503", "504",
		"rate limit", "overloaded", "timeout", "connection reset",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
