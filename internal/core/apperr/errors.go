package apperr

import (
	"errors"
	"fmt"
	"time"
)

// ClassifiedError is the normalized representation of a failure.
type ClassifiedError interface {
	error

	// Kind returns the active variant tag.
	Kind() Kind

	// Message returns the human-readable message, possibly server-supplied.
	Message() string

	// Details returns a copy of the raw diagnostic payload, or nil.
	Details() map[string]any

	classified()
}

// Base holds the fields common to every variant.
type Base struct {
	message string
	details map[string]any
}

// NewBase builds the common part of a variant. The details map is copied.
func NewBase(message string, details map[string]any) Base {
	return Base{message: message, details: copyDetails(details)}
}

// Message returns the error message.
func (b Base) Message() string {
	return b.message
}

// Details returns a defensive copy of the details map.
// Returns nil if no details were attached.
func (b Base) Details() map[string]any {
	return copyDetails(b.details)
}

func (b Base) classified() {}

func copyDetails(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func format(k Kind, msg string) string {
	return fmt.Sprintf("[%s] %s", k, msg)
}

// NetworkError is an HTTP failure that no other variant claims.
type NetworkError struct {
	Base
	StatusCode int
	Endpoint   string
}

func (e NetworkError) Kind() Kind    { return KindNetwork }
func (e NetworkError) Error() string { return format(KindNetwork, e.message) }

// AuthenticationError means the caller is not (or no longer) authenticated.
type AuthenticationError struct {
	Base
	Reason string
}

func (e AuthenticationError) Kind() Kind    { return KindAuthentication }
func (e AuthenticationError) Error() string { return format(KindAuthentication, e.message) }

// AuthorizationError means the caller lacks a permission on the backend.
type AuthorizationError struct {
	Base
	RequiredPermission string
}

func (e AuthorizationError) Kind() Kind    { return KindAuthorization }
func (e AuthorizationError) Error() string { return format(KindAuthorization, e.message) }

// ValidationError carries per-field messages, keyed by field name.
type ValidationError struct {
	Base
	FieldErrors map[string][]string
}

func (e ValidationError) Kind() Kind    { return KindValidation }
func (e ValidationError) Error() string { return format(KindValidation, e.message) }

// HasFieldErrors reports whether at least one field carries a message.
func (e ValidationError) HasFieldErrors() bool {
	for _, msgs := range e.FieldErrors {
		if len(msgs) > 0 {
			return true
		}
	}
	return false
}

// NotFoundError means the addressed resource does not exist.
type NotFoundError struct {
	Base
	Resource string
}

func (e NotFoundError) Kind() Kind    { return KindNotFound }
func (e NotFoundError) Error() string { return format(KindNotFound, e.message) }

// ServerError is a 5xx-class failure.
type ServerError struct {
	Base
	StatusCode int
	ErrorCode  string
}

func (e ServerError) Kind() Kind    { return KindServer }
func (e ServerError) Error() string { return format(KindServer, e.message) }

// TimeoutError means a deadline elapsed. Duration is nil when unknown.
type TimeoutError struct {
	Base
	Duration *time.Duration
}

func (e TimeoutError) Kind() Kind    { return KindTimeout }
func (e TimeoutError) Error() string { return format(KindTimeout, e.message) }

// ConnectivityError means the backend could not be reached at all.
type ConnectivityError struct {
	Base
	Type string
}

func (e ConnectivityError) Kind() Kind    { return KindConnectivity }
func (e ConnectivityError) Error() string { return format(KindConnectivity, e.message) }

// StorageError is a local persistence failure.
type StorageError struct {
	Base
	Operation string
}

func (e StorageError) Kind() Kind    { return KindStorage }
func (e StorageError) Error() string { return format(KindStorage, e.message) }

// PermissionError is a local (platform) permission denial.
type PermissionError struct {
	Base
	Permission string
}

func (e PermissionError) Kind() Kind    { return KindPermission }
func (e PermissionError) Error() string { return format(KindPermission, e.message) }

// RateLimitedError means the backend throttled the caller.
// RetryAfter and Limit are nil when the server did not supply them.
type RateLimitedError struct {
	Base
	RetryAfter *time.Duration
	Limit      *int
}

func (e RateLimitedError) Kind() Kind    { return KindRateLimited }
func (e RateLimitedError) Error() string { return format(KindRateLimited, e.message) }

// BusinessError is a domain rule rejection.
type BusinessError struct {
	Base
	Code string
}

func (e BusinessError) Kind() Kind    { return KindBusiness }
func (e BusinessError) Error() string { return format(KindBusiness, e.message) }

// UnknownError wraps anything that could not be interpreted.
type UnknownError struct {
	Base
	OriginalError any
	Stack         []byte
}

func (e UnknownError) Kind() Kind    { return KindUnknown }
func (e UnknownError) Error() string { return format(KindUnknown, e.message) }

// Unwrap exposes the original error for errors.Is and errors.As.
func (e UnknownError) Unwrap() error {
	if err, ok := e.OriginalError.(error); ok {
		return err
	}
	return nil
}

// Normalize returns the value form of ce. Pointer variants are dereferenced.
// A nil pointer, or a type outside the thirteen variants, reports false.
func Normalize(ce ClassifiedError) (ClassifiedError, bool) {
	switch e := ce.(type) {
	case NetworkError, AuthenticationError, AuthorizationError, ValidationError,
		NotFoundError, ServerError, TimeoutError, ConnectivityError, StorageError,
		PermissionError, RateLimitedError, BusinessError, UnknownError:
		return ce, true
	case *NetworkError:
		return deref(e)
	case *AuthenticationError:
		return deref(e)
	case *AuthorizationError:
		return deref(e)
	case *ValidationError:
		return deref(e)
	case *NotFoundError:
		return deref(e)
	case *ServerError:
		return deref(e)
	case *TimeoutError:
		return deref(e)
	case *ConnectivityError:
		return deref(e)
	case *StorageError:
		return deref(e)
	case *PermissionError:
		return deref(e)
	case *RateLimitedError:
		return deref(e)
	case *BusinessError:
		return deref(e)
	case *UnknownError:
		return deref(e)
	}
	return nil, false
}

func deref[T ClassifiedError](p *T) (ClassifiedError, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

// As extracts the first ClassifiedError in err's chain, in value form.
func As(err error) (ClassifiedError, bool) {
	var ce ClassifiedError
	if errors.As(err, &ce) {
		return Normalize(ce)
	}
	return nil, false
}

// IsKind reports whether err carries a ClassifiedError of the given kind.
func IsKind(err error, kind Kind) bool {
	ce, ok := As(err)
	return ok && ce.Kind() == kind
}

// Ptr returns a pointer to v. Handy for the optional variant fields.
func Ptr[T any](v T) *T {
	return &v
}
