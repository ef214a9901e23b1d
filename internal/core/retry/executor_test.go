package retry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/authkit/internal/core/apperr"
	"github.com/vietddude/authkit/internal/core/classify"
	"github.com/vietddude/authkit/internal/core/errlog"
)

type attemptRecord struct {
	kind       apperr.Kind
	attempt    int
	maxRetries int
	delay      time.Duration
}

type recordingLogger struct {
	errlog.Nop

	mu       sync.Mutex
	attempts []attemptRecord
}

func (r *recordingLogger) LogRetryAttempt(ce apperr.ClassifiedError, attempt, maxRetries int, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attemptRecord{ce.Kind(), attempt, maxRetries, delay})
}

func (r *recordingLogger) records() []attemptRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]attemptRecord(nil), r.attempts...)
}

func fastPolicy(maxRetries int) Policy {
	return Policy{MaxRetries: maxRetries, BaseDelay: time.Millisecond}
}

func TestExecute_ExhaustsRetries(t *testing.T) {
	logger := &recordingLogger{}
	ex := NewExecutor(fastPolicy(3), nil, logger)

	calls := 0
	err := ex.Execute(context.Background(), func(context.Context) error {
		calls++
		return classify.HTTPResponse{StatusCode: 503, Body: []byte(`{}`)}
	})

	assert.Equal(t, 4, calls)
	require.Error(t, err)

	var server apperr.ServerError
	require.True(t, errors.As(err, &server))
	assert.Equal(t, 503, server.StatusCode)

	recs := logger.records()
	require.Len(t, recs, 3)
	for i, r := range recs {
		assert.Equal(t, apperr.KindServer, r.kind)
		assert.Equal(t, i+1, r.attempt)
		assert.Equal(t, 3, r.maxRetries)
		assert.Equal(t, time.Duration(i+1)*time.Millisecond, r.delay)
	}
}

func TestExecute_SucceedsAfterTransientFailures(t *testing.T) {
	ex := NewExecutor(fastPolicy(3), nil, nil)

	calls := 0
	got, err := Do(context.Background(), ex, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", classify.ConnectivityFailure{Type: "socket", Message: "connection reset"}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestExecute_NonRetryableShortCircuits(t *testing.T) {
	statuses := []int{400, 401, 403, 404}

	for _, status := range statuses {
		logger := &recordingLogger{}
		ex := NewExecutor(fastPolicy(3), nil, logger)

		calls := 0
		err := ex.Execute(context.Background(), func(context.Context) error {
			calls++
			return classify.HTTPResponse{StatusCode: status}
		})

		assert.Equal(t, 1, calls, "status %d", status)
		assert.Empty(t, logger.records(), "status %d", status)

		ce, ok := apperr.As(err)
		require.True(t, ok, "status %d", status)
		assert.False(t, ex.Policy().ShouldRetry(ce))
	}
}

func TestExecute_UsesServerRetryAfter(t *testing.T) {
	logger := &recordingLogger{}
	ex := NewExecutor(fastPolicy(1), nil, logger)

	calls := 0
	err := ex.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return apperr.RateLimitedError{RetryAfter: apperr.Ptr(5 * time.Millisecond)}
		}
		return nil
	})

	require.NoError(t, err)
	recs := logger.records()
	require.Len(t, recs, 1)
	assert.Equal(t, apperr.KindRateLimited, recs[0].kind)
	assert.Equal(t, 5*time.Millisecond, recs[0].delay)
}

func TestExecute_ZeroRetries(t *testing.T) {
	ex := NewExecutor(fastPolicy(0), nil, nil)

	calls := 0
	err := ex.Execute(context.Background(), func(context.Context) error {
		calls++
		return apperr.TimeoutError{}
	})

	assert.Equal(t, 1, calls)
	assert.True(t, apperr.IsKind(err, apperr.KindTimeout))
}

func TestExecute_CancelDuringDelay(t *testing.T) {
	ex := NewExecutor(Policy{MaxRetries: 3, BaseDelay: time.Hour}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- ex.Execute(ctx, func(context.Context) error {
			mu.Lock()
			calls++
			mu.Unlock()
			return apperr.NetworkError{}
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		_, classified := apperr.As(err)
		assert.False(t, classified)
	case <-time.After(time.Second):
		t.Fatal("retry loop did not stop after cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestExecute_OperationSeesCancellation(t *testing.T) {
	ex := NewExecutor(fastPolicy(3), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := ex.Execute(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return ctx.Err()
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}
