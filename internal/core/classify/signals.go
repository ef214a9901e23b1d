package classify

import (
	"errors"
	"time"

	"github.com/vietddude/authkit/internal/core/apperr"
)

// ConnectivityFailure signals that the backend is unreachable.
// Type is a short platform tag such as "socket", "dns" or "tls".
type ConnectivityFailure struct {
	Type    string
	Message string
	Err     error
}

func (f ConnectivityFailure) Error() string {
	if f.Err != nil {
		return "connectivity (" + f.Type + "): " + f.Err.Error()
	}
	return "connectivity (" + f.Type + "): " + f.Message
}

func (f ConnectivityFailure) Unwrap() error { return f.Err }

// DeadlineExceeded signals a timeout. Duration is the configured or elapsed time, zero if unknown.
type DeadlineExceeded struct {
	Duration time.Duration
	Err      error
}

func (d DeadlineExceeded) Error() string {
	if d.Duration > 0 {
		return "deadline exceeded after " + d.Duration.String()
	}
	return "deadline exceeded"
}

func (d DeadlineExceeded) Unwrap() error { return d.Err }

// MalformedPayload signals that a response could not be decoded.
type MalformedPayload struct {
	Err error
}

func (m MalformedPayload) Error() string {
	if m.Err == nil {
		return "malformed payload"
	}
	return "malformed payload: " + m.Err.Error()
}

func (m MalformedPayload) Unwrap() error { return m.Err }

// StorageFailure signals that a local persistence operation failed.
type StorageFailure struct {
	Operation string
	Err       error
}

func (s StorageFailure) Error() string {
	if s.Err == nil {
		return "storage " + s.Operation + " failed"
	}
	return "storage " + s.Operation + ": " + s.Err.Error()
}

func (s StorageFailure) Unwrap() error { return s.Err }

// PermissionDenied signals a local platform permission denial.
type PermissionDenied struct {
	Permission string
	Message    string
}

func (p PermissionDenied) Error() string {
	return "permission denied: " + p.Permission
}

// asSignal finds a signal of type T in err's chain, whether it was returned by value
// or by pointer.
func asSignal[T error](err error) (T, bool) {
	var v T
	if errors.As(err, &v) {
		return v, true
	}
	var p *T
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

func (c *Classifier) fromSignal(err error) (apperr.ClassifiedError, bool) {
	if r, ok := asSignal[HTTPResponse](err); ok {
		return c.fromHTTP(r), true
	}
	if f, ok := asSignal[ConnectivityFailure](err); ok {
		original := f.Message
		if original == "" && f.Err != nil {
			original = f.Err.Error()
		}
		return apperr.ConnectivityError{
			Base: apperr.NewBase(c.messages[apperr.KindConnectivity], map[string]any{
				"originalMessage": original,
			}),
			Type: f.Type,
		}, true
	}
	if d, ok := asSignal[DeadlineExceeded](err); ok {
		var dur *time.Duration
		if d.Duration > 0 {
			dur = apperr.Ptr(d.Duration)
		}
		return apperr.TimeoutError{
			Base:     apperr.NewBase(c.messages[apperr.KindTimeout], nil),
			Duration: dur,
		}, true
	}
	if m, ok := asSignal[MalformedPayload](err); ok {
		return c.malformed(m.Err), true
	}
	if s, ok := asSignal[StorageFailure](err); ok {
		return c.storage(s.Operation, s.Err), true
	}
	if p, ok := asSignal[PermissionDenied](err); ok {
		return apperr.PermissionError{
			Base:       apperr.NewBase(c.message(apperr.KindPermission, p.Message), nil),
			Permission: p.Permission,
		}, true
	}
	return nil, false
}

func (c *Classifier) malformed(cause error) apperr.ClassifiedError {
	var details map[string]any
	if cause != nil {
		details = map[string]any{"originalMessage": cause.Error()}
	}
	return apperr.ValidationError{
		Base: apperr.NewBase(c.messages[apperr.KindValidation], details),
	}
}

func (c *Classifier) storage(operation string, cause error) apperr.ClassifiedError {
	var details map[string]any
	if cause != nil {
		details = map[string]any{"originalMessage": cause.Error()}
		if code := sqlState(cause); code != "" {
			details["sqlState"] = code
		}
	}
	return apperr.StorageError{
		Base:      apperr.NewBase(c.messages[apperr.KindStorage], details),
		Operation: operation,
	}
}
