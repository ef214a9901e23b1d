package retry

import (
	"context"
	"time"

	goretry "github.com/sethvargo/go-retry"

	"github.com/vietddude/authkit/internal/core/apperr"
	"github.com/vietddude/authkit/internal/core/classify"
	"github.com/vietddude/authkit/internal/core/errlog"
)

// Executor runs operations under a Policy, classifying every failure.
// It holds no per-call state and is safe for concurrent use.
type Executor struct {
	policy     Policy
	classifier *classify.Classifier
	logger     errlog.Logger
}

// NewExecutor creates an executor. A nil classifier uses classify.Default and a
// nil logger discards retry events.
func NewExecutor(policy Policy, classifier *classify.Classifier, logger errlog.Logger) *Executor {
	if classifier == nil {
		classifier = classify.Default
	}
	return &Executor{
		policy:     policy,
		classifier: classifier,
		logger:     errlog.OrNop(logger),
	}
}

// Policy returns the executor's policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Execute runs op until it succeeds, fails with a non-retryable error or the
// retry budget is spent. Failures are returned as apperr.ClassifiedError;
// cancellation of ctx is returned as ctx.Err().
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := Do(ctx, e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Do is Execute for operations that produce a value.
func Do[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	var (
		last    apperr.ClassifiedError
		attempt int
	)

	maxRetries := e.policy.maxRetries()
	backoff := goretry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		delay := e.policy.NextDelay(last, attempt)
		e.logger.LogRetryAttempt(last, attempt, maxRetries, delay)
		return delay, false
	})

	return goretry.DoValue(ctx, goretry.WithMaxRetries(uint64(maxRetries), backoff), func(ctx context.Context) (T, error) {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		var zero T
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		last = e.classifier.Classify(err)
		if !e.policy.ShouldRetry(last) {
			return zero, last
		}
		return zero, goretry.RetryableError(last)
	})
}
