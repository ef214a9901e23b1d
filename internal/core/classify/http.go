package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/authkit/internal/core/apperr"
)

// HTTPResponse is a non-successful HTTP response as seen by the transport.
// It implements error so transports can return it from retried operations.
type HTTPResponse struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	Endpoint   string
}

func (r HTTPResponse) Error() string {
	if r.Endpoint != "" {
		return fmt.Sprintf("http %d from %s", r.StatusCode, r.Endpoint)
	}
	return fmt.Sprintf("http %d", r.StatusCode)
}

// ContentType returns the response media type, if any.
func (r HTTPResponse) ContentType() string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// errorBody is the typed view of the fields the classifier reads from an error payload.
type errorBody struct {
	message            string
	fieldErrors        map[string][]string
	reason             string
	requiredPermission string
	resource           string
	errorCode          string
	retryAfter         *time.Duration
	limit              *int
}

// fieldErrorKeys are looked up in order; the first JSON object wins.
var fieldErrorKeys = []string{"errors", "field_errors", "validation_errors"}

// messageKeys are looked up in order; the first non-empty string wins.
var messageKeys = []string{"message", "error"}

// decodeBody parses raw as a JSON object. Anything else yields a nil map.
func decodeBody(raw []byte) map[string]any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

func parseErrorBody(obj map[string]any) errorBody {
	var b errorBody
	if obj == nil {
		return b
	}
	for _, k := range messageKeys {
		if s, ok := stringField(obj, k); ok {
			b.message = s
			break
		}
	}
	for _, k := range fieldErrorKeys {
		if m, ok := obj[k].(map[string]any); ok {
			b.fieldErrors = normalizeFieldErrors(m)
			break
		}
	}
	b.reason, _ = stringField(obj, "reason")
	b.requiredPermission, _ = stringField(obj, "required_permission")
	b.resource, _ = stringField(obj, "resource")
	b.errorCode, _ = stringField(obj, "error_code")
	if n, ok := obj["retry_after"].(json.Number); ok {
		if secs, err := n.Int64(); err == nil {
			b.retryAfter = retryAfterSeconds(secs)
		}
	}
	if limit, ok := intField(obj, "limit"); ok {
		b.limit = apperr.Ptr(limit)
	}
	return b
}

func stringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// intField accepts JSON integers only: strings and fractional numbers are ignored.
func intField(obj map[string]any, key string) (int, bool) {
	n, ok := obj[key].(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

func normalizeFieldErrors(m map[string]any) map[string][]string {
	out := make(map[string][]string, len(m))
	for field, v := range m {
		switch val := v.(type) {
		case string:
			out[field] = []string{val}
		case []any:
			msgs := make([]string, 0, len(val))
			for _, item := range val {
				msgs = append(msgs, stringify(item))
			}
			out[field] = msgs
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

func retryAfterHeader(h http.Header) *time.Duration {
	if h == nil {
		return nil
	}
	raw := strings.TrimSpace(h.Get("Retry-After"))
	if raw == "" {
		return nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return retryAfterSeconds(secs)
}

// MaxRetryAfter caps server-supplied retry hints.
const MaxRetryAfter = 24 * time.Hour

// retryAfterSeconds converts a retry hint, clamping it to MaxRetryAfter before
// the multiplication can overflow. Negative hints are absent.
func retryAfterSeconds(secs int64) *time.Duration {
	if secs < 0 {
		return nil
	}
	if secs > int64(MaxRetryAfter/time.Second) {
		return apperr.Ptr(MaxRetryAfter)
	}
	return apperr.Ptr(time.Duration(secs) * time.Second)
}

func (c *Classifier) fromHTTP(r HTTPResponse) apperr.ClassifiedError {
	obj := decodeBody(r.Body)
	body := parseErrorBody(obj)

	msg := body.message
	if msg == "" {
		msg = fmt.Sprintf("HTTP Error %d", r.StatusCode)
	}
	base := apperr.NewBase(msg, obj)

	switch status := r.StatusCode; {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperr.ValidationError{Base: base, FieldErrors: body.fieldErrors}
	case status == http.StatusUnauthorized:
		return apperr.AuthenticationError{Base: base, Reason: body.reason}
	case status == http.StatusForbidden:
		return apperr.AuthorizationError{Base: base, RequiredPermission: body.requiredPermission}
	case status == http.StatusNotFound:
		return apperr.NotFoundError{Base: base, Resource: body.resource}
	case status == http.StatusRequestTimeout:
		return apperr.TimeoutError{Base: base}
	case status == http.StatusTooManyRequests:
		retryAfter := body.retryAfter
		if retryAfter == nil {
			retryAfter = retryAfterHeader(r.Header)
		}
		return apperr.RateLimitedError{Base: base, RetryAfter: retryAfter, Limit: body.limit}
	case status >= 500:
		return apperr.ServerError{Base: base, StatusCode: status, ErrorCode: body.errorCode}
	default:
		return apperr.NetworkError{Base: base, StatusCode: status, Endpoint: r.Endpoint}
	}
}
