// Package classify converts raw failures into apperr.ClassifiedError values.
//
// Classification is a total, side-effect-free function: every input, including nil,
// yields exactly one variant of the taxonomy and nothing is logged or written.
// Accepted inputs are:
//   - an apperr.ClassifiedError, anywhere in an error chain (returned in value form)
//   - HTTPResponse (status code, body, headers)
//   - the platform signals declared in signals.go
//   - native Go errors: context deadlines, net errors, JSON decode errors, fs permission
//     errors, gRPC status errors and Postgres/Redis driver errors
//
// Anything else becomes apperr.UnknownError.
package classify

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/vietddude/authkit/internal/core/apperr"
)

// Classifier maps raw failures to the taxonomy.
type Classifier struct {
	messages     map[apperr.Kind]string
	captureStack bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithMessages overrides the default messages used for variants the classifier
// synthesizes itself (connectivity, timeout, malformed payload, ...).
func WithMessages(messages map[apperr.Kind]string) Option {
	return func(c *Classifier) {
		for k, v := range messages {
			c.messages[k] = v
		}
	}
}

// WithStackCapture makes unknown errors carry the goroutine stack at classification time
// when the input does not provide its own.
func WithStackCapture(enabled bool) Option {
	return func(c *Classifier) {
		c.captureStack = enabled
	}
}

// New creates a Classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{messages: make(map[apperr.Kind]string, len(defaultMessages))}
	for k, v := range defaultMessages {
		c.messages[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default is the zero-configuration classifier.
var Default = New()

// Classify classifies input with the Default classifier.
func Classify(input any) apperr.ClassifiedError {
	return Default.Classify(input)
}

// Classify returns exactly one ClassifiedError for input. It never panics.
func (c *Classifier) Classify(input any) (ce apperr.ClassifiedError) {
	defer func() {
		if r := recover(); r != nil {
			ce = c.unknown(input, fmt.Sprintf("classification failed: %v", r), debug.Stack())
		}
	}()

	switch v := input.(type) {
	case nil:
		return c.unknown(nil, c.messages[apperr.KindUnknown], nil)
	case apperr.ClassifiedError:
		if ce, ok := apperr.Normalize(v); ok {
			return ce
		}
		return c.unknown(nil, c.messages[apperr.KindUnknown], nil)
	case HTTPResponse:
		return c.fromHTTP(v)
	case *HTTPResponse:
		if v == nil {
			return c.unknown(input, c.messages[apperr.KindUnknown], nil)
		}
		return c.fromHTTP(*v)
	case error:
		return c.fromError(v)
	case string:
		return c.unknown(input, v, nil)
	default:
		return c.unknown(input, c.messages[apperr.KindUnknown], nil)
	}
}

func (c *Classifier) fromError(err error) apperr.ClassifiedError {
	var raw apperr.ClassifiedError
	if errors.As(err, &raw) {
		if ce, ok := apperr.Normalize(raw); ok {
			return ce
		}
		return c.unknown(nil, c.messages[apperr.KindUnknown], nil)
	}
	if ce, ok := c.fromSignal(err); ok {
		return ce
	}
	if ce, ok := c.fromGRPC(err); ok {
		return ce
	}
	if ce, ok := c.fromStorageDriver(err); ok {
		return ce
	}
	if ce, ok := c.fromNative(err); ok {
		return ce
	}
	return c.unknown(err, err.Error(), nil)
}

type stacker interface {
	Stack() []byte
}

func (c *Classifier) unknown(input any, msg string, stack []byte) apperr.ClassifiedError {
	if stack == nil {
		var s stacker
		if err, ok := input.(error); ok && errors.As(err, &s) {
			stack = s.Stack()
		} else if s, ok := input.(stacker); ok {
			stack = s.Stack()
		} else if c.captureStack {
			stack = debug.Stack()
		}
	}
	if msg == "" {
		msg = c.messages[apperr.KindUnknown]
	}
	return apperr.UnknownError{
		Base:          apperr.NewBase(msg, nil),
		OriginalError: input,
		Stack:         stack,
	}
}

func (c *Classifier) message(k apperr.Kind, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return c.messages[k]
}
