// Package errlog defines the logging collaborator that receives classified errors.
//
// Implementations must be safe for concurrent use by independent retry loops and
// must never panic or return an error to the caller.
package errlog

import (
	"time"

	"github.com/vietddude/authkit/internal/core/apperr"
)

// Logger receives classified errors from retry loops and presentation dispatchers.
type Logger interface {
	// LogException records a failure that reached the caller. stack may be nil.
	LogException(ce apperr.ClassifiedError, stack []byte)

	// LogRetryAttempt is called before each inter-attempt sleep.
	LogRetryAttempt(ce apperr.ClassifiedError, attempt, maxRetries int, delay time.Duration)

	// LogContextualError records a failure together with a short description of
	// what the caller was doing.
	LogContextualError(ce apperr.ClassifiedError, context string)

	// LogCriticalError records a failure that could not be surfaced any other way.
	LogCriticalError(ce apperr.ClassifiedError, stack []byte)
}

// Nop discards everything.
type Nop struct{}

func (Nop) LogException(apperr.ClassifiedError, []byte)                     {}
func (Nop) LogRetryAttempt(apperr.ClassifiedError, int, int, time.Duration) {}
func (Nop) LogContextualError(apperr.ClassifiedError, string)               {}
func (Nop) LogCriticalError(apperr.ClassifiedError, []byte)                 {}

// multi fans every call out to several loggers.
type multi []Logger

// Multi returns a Logger that forwards to every non-nil logger in order.
func Multi(loggers ...Logger) Logger {
	out := make(multi, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

func (m multi) LogException(ce apperr.ClassifiedError, stack []byte) {
	for _, l := range m {
		l.LogException(ce, stack)
	}
}

func (m multi) LogRetryAttempt(ce apperr.ClassifiedError, attempt, maxRetries int, delay time.Duration) {
	for _, l := range m {
		l.LogRetryAttempt(ce, attempt, maxRetries, delay)
	}
}

func (m multi) LogContextualError(ce apperr.ClassifiedError, context string) {
	for _, l := range m {
		l.LogContextualError(ce, context)
	}
}

func (m multi) LogCriticalError(ce apperr.ClassifiedError, stack []byte) {
	for _, l := range m {
		l.LogCriticalError(ce, stack)
	}
}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return l
}
