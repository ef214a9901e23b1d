// Package retry decides whether a classified failure is retried and runs bounded,
// cancellable retry loops around client operations.
package retry

import (
	"time"

	"github.com/vietddude/authkit/internal/core/apperr"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
)

// Policy defines retry behavior.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration

	// Retryable replaces the default retryability table when set.
	Retryable func(apperr.ClassifiedError) bool
}

// DefaultPolicy retries transient failures three times with a linear 2s step.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
	}
}

var retryableKinds = map[apperr.Kind]bool{
	apperr.KindNetwork:      true,
	apperr.KindTimeout:      true,
	apperr.KindConnectivity: true,
	apperr.KindServer:       true,
	apperr.KindRateLimited:  true,
}

// ShouldRetry reports whether ce is worth another attempt.
func (p Policy) ShouldRetry(ce apperr.ClassifiedError) bool {
	if ce == nil {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(ce)
	}
	return retryableKinds[ce.Kind()]
}

// NextDelay returns the wait before the given retry attempt (1-based).
// A server-supplied retryAfter always wins over the backoff step.
func (p Policy) NextDelay(ce apperr.ClassifiedError, attempt int) time.Duration {
	if rl, ok := ce.(apperr.RateLimitedError); ok && rl.RetryAfter != nil {
		return *rl.RetryAfter
	}
	if attempt < 1 {
		attempt = 1
	}
	return p.baseDelay() * time.Duration(attempt)
}

func (p Policy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return DefaultBaseDelay
	}
	return p.BaseDelay
}

func (p Policy) maxRetries() int {
	if p.MaxRetries < 0 {
		return 0
	}
	return p.MaxRetries
}
