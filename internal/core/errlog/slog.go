package errlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/authkit/internal/core/apperr"
)

// LevelCritical sits above slog.LevelError.
const LevelCritical = slog.LevelError + 4

// SlogLogger writes classified errors as structured slog records.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger on top of l, or slog.Default() when l is nil.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{log: l.With("component", "errors")}
}

func (s *SlogLogger) LogException(ce apperr.ClassifiedError, stack []byte) {
	attrs := Attrs(ce)
	if len(stack) > 0 {
		attrs = append(attrs, slog.String("stack", string(stack)))
	}
	s.emit(slog.LevelError, "Request failed", attrs)
}

func (s *SlogLogger) LogRetryAttempt(ce apperr.ClassifiedError, attempt, maxRetries int, delay time.Duration) {
	attrs := append(Attrs(ce),
		slog.Int("attempt", attempt),
		slog.Int("max_retries", maxRetries),
		slog.Duration("delay", delay),
	)
	s.emit(slog.LevelWarn, "Retrying request", attrs)
}

func (s *SlogLogger) LogContextualError(ce apperr.ClassifiedError, context string) {
	attrs := append(Attrs(ce), slog.String("context", context))
	s.emit(slog.LevelError, "Operation failed", attrs)
}

func (s *SlogLogger) LogCriticalError(ce apperr.ClassifiedError, stack []byte) {
	attrs := Attrs(ce)
	if len(stack) > 0 {
		attrs = append(attrs, slog.String("stack", string(stack)))
	}
	s.emit(LevelCritical, "Unhandled error", attrs)
}

func (s *SlogLogger) emit(level slog.Level, msg string, attrs []slog.Attr) {
	defer func() { _ = recover() }()
	s.log.LogAttrs(context.Background(), level, msg, attrs...)
}

// Attrs renders the kind-specific fields of ce as slog attributes.
func Attrs(ce apperr.ClassifiedError) []slog.Attr {
	if ce == nil {
		return []slog.Attr{slog.String("kind", "nil")}
	}
	attrs := []slog.Attr{
		slog.String("kind", ce.Kind().String()),
		slog.String("message", ce.Message()),
	}

	switch e := ce.(type) {
	case apperr.NetworkError:
		if e.StatusCode != 0 {
			attrs = append(attrs, slog.Int("status", e.StatusCode))
		}
		if e.Endpoint != "" {
			attrs = append(attrs, slog.String("endpoint", e.Endpoint))
		}
	case apperr.AuthenticationError:
		if e.Reason != "" {
			attrs = append(attrs, slog.String("reason", e.Reason))
		}
	case apperr.AuthorizationError:
		if e.RequiredPermission != "" {
			attrs = append(attrs, slog.String("required_permission", e.RequiredPermission))
		}
	case apperr.ValidationError:
		if len(e.FieldErrors) > 0 {
			attrs = append(attrs, slog.Any("field_errors", e.FieldErrors))
		}
	case apperr.NotFoundError:
		if e.Resource != "" {
			attrs = append(attrs, slog.String("resource", e.Resource))
		}
	case apperr.ServerError:
		attrs = append(attrs, slog.Int("status", e.StatusCode))
		if e.ErrorCode != "" {
			attrs = append(attrs, slog.String("error_code", e.ErrorCode))
		}
	case apperr.TimeoutError:
		if e.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *e.Duration))
		}
	case apperr.ConnectivityError:
		if e.Type != "" {
			attrs = append(attrs, slog.String("type", e.Type))
		}
	case apperr.StorageError:
		if e.Operation != "" {
			attrs = append(attrs, slog.String("operation", e.Operation))
		}
	case apperr.PermissionError:
		if e.Permission != "" {
			attrs = append(attrs, slog.String("permission", e.Permission))
		}
	case apperr.RateLimitedError:
		if e.RetryAfter != nil {
			attrs = append(attrs, slog.Duration("retry_after", *e.RetryAfter))
		}
		if e.Limit != nil {
			attrs = append(attrs, slog.Int("limit", *e.Limit))
		}
	case apperr.BusinessError:
		if e.Code != "" {
			attrs = append(attrs, slog.String("code", e.Code))
		}
	case apperr.UnknownError:
		if err := e.Unwrap(); err != nil {
			attrs = append(attrs, slog.String("original", err.Error()))
		}
	}
	return attrs
}
