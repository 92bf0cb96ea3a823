package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"reportai-backend/internal/shared/telemetry"
)

const defaultRetryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	base      Client
	attempts  int
	baseDelay time.Duration
}

// WithRetry wraps base so transient failures are retried up to attempts
// total calls, doubling the delay after each failure.
func WithRetry(base Client, attempts int, baseDelay time.Duration) Client {
	if base == nil {
		return nil
	}
	if attempts < 1 {
		attempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}
	return retryingClient{base: base, attempts: attempts, baseDelay: baseDelay}
}

func (r retryingClient) AnalyzeDataset(ctx context.Context, input AnalyzeInput) (json.RawMessage, error) {
	delay := r.baseDelay
	var err error
	for attempt := 1; ; attempt++ {
		var resp json.RawMessage
		resp, err = r.base.AnalyzeDataset(ctx, input)
		if err == nil || !ShouldRetry(err) || attempt >= r.attempts {
			return resp, err
		}

		telemetry.Warn("llm_retry", map[string]any{
			"attempt":  attempt,
			"language": input.Language,
			"error":    err.Error(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
	}
}

// ShouldRetry reports whether err looks transient: timeouts, 5xx responses
// and dropped connections.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") || strings.Contains(msg, "http status 429") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
