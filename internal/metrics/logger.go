package metrics

import (
	"time"

	"github.com/vietddude/authkit/internal/core/apperr"
	"github.com/vietddude/authkit/internal/core/errlog"
)

// Logger counts every event before forwarding it to the wrapped logger.
type Logger struct {
	next errlog.Logger
}

// NewLogger wraps next. A nil next only records metrics.
func NewLogger(next errlog.Logger) *Logger {
	return &Logger{next: errlog.OrNop(next)}
}

func (l *Logger) LogException(ce apperr.ClassifiedError, stack []byte) {
	ErrorsReported.WithLabelValues(kindLabel(ce), "exception").Inc()
	l.next.LogException(ce, stack)
}

func (l *Logger) LogRetryAttempt(ce apperr.ClassifiedError, attempt, maxRetries int, delay time.Duration) {
	kind := kindLabel(ce)
	RetryAttempts.WithLabelValues(kind).Inc()
	RetryDelay.WithLabelValues(kind).Observe(delay.Seconds())
	l.next.LogRetryAttempt(ce, attempt, maxRetries, delay)
}

func (l *Logger) LogContextualError(ce apperr.ClassifiedError, context string) {
	ErrorsReported.WithLabelValues(kindLabel(ce), "contextual").Inc()
	l.next.LogContextualError(ce, context)
}

func (l *Logger) LogCriticalError(ce apperr.ClassifiedError, stack []byte) {
	ErrorsReported.WithLabelValues(kindLabel(ce), "critical").Inc()
	l.next.LogCriticalError(ce, stack)
}

func kindLabel(ce apperr.ClassifiedError) string {
	if ce == nil {
		return "none"
	}
	return ce.Kind().String()
}
