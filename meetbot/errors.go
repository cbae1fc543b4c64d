package meetbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorKind is the machine-readable classification of an Error
type ErrorKind string

const (
	// KindAPI is the base kind for failures that fit no narrower kind
	KindAPI ErrorKind = "API_ERROR"
	// KindValidation indicates invalid input, either caught locally or reported by the service
	KindValidation ErrorKind = "VALIDATION_ERROR"
	// KindAuthentication indicates a missing, invalid or insufficient API key
	KindAuthentication ErrorKind = "AUTHENTICATION_ERROR"
	// KindNotFound indicates the requested resource does not exist
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindRateLimit indicates the service rejected the call for exceeding its rate limit
	KindRateLimit ErrorKind = "RATE_LIMIT_EXCEEDED"
)

// noResponseMessage is used when the request never produced an HTTP response
const noResponseMessage = "no response received from meeting bot service"

// Sentinel errors for use with errors.Is. They match any *Error of the same kind.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrUnauthorized = &Error{Kind: KindAuthentication}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrRateLimited  = &Error{Kind: KindRateLimit}
	ErrAPI          = &Error{Kind: KindAPI}
)

// Error is the single error type returned by every Client operation
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int // 0 when no HTTP response was received
	Details    map[string]any
	// RetryAfter is the server's Retry-After hint, only set for KindRateLimit
	RetryAfter time.Duration
	// Op is the client operation that failed, e.g. "create bot"
	Op  string
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("meetbot")
	if e.Op != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Op)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": status %d", e.StatusCode)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsNotFound checks if the error indicates a not found response
func (e *Error) IsNotFound() bool {
	return e.Kind == KindNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *Error) IsUnauthorized() bool {
	return e.Kind == KindAuthentication
}

// IsRateLimited checks if the error indicates the rate limit was exceeded
func (e *Error) IsRateLimited() bool {
	return e.Kind == KindRateLimit
}

// IsValidation checks if the error indicates invalid input
func (e *Error) IsValidation() bool {
	return e.Kind == KindValidation
}

// IsKind reports whether err is, or wraps, an *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsNotFound reports whether err is a NOT_FOUND error
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsUnauthorized reports whether err is an AUTHENTICATION_ERROR
func IsUnauthorized(err error) bool { return IsKind(err, KindAuthentication) }

// IsRateLimited reports whether err is a RATE_LIMIT_EXCEEDED error
func IsRateLimited(err error) bool { return IsKind(err, KindRateLimit) }

// IsValidation reports whether err is a VALIDATION_ERROR
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// validationError builds a local pre-flight failure
func validationError(op, field, message string) *Error {
	e := &Error{
		Kind:       KindValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Op:         op,
	}
	if field != "" {
		e.Details = map[string]any{"field": field}
	}
	return e
}

// kindForStatus maps an HTTP status to an error kind
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthentication
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindAPI
	}
}

// errorBody is the error envelope the service returns on non-2xx responses.
// Message may be a string or, from validation pipes, a list of strings.
type errorBody struct {
	Message any `json:"message"`
	Error   any `json:"error"`
	Code    any `json:"code"`
	Details any `json:"details"`
}

// newResponseError normalizes a non-2xx response into an *Error
func newResponseError(op string, resp *http.Response, body []byte) *Error {
	e := &Error{
		Kind:       kindForStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Op:         op,
	}

	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		e.Message = messageText(eb.Message)
		if e.Message == "" {
			e.Message = messageText(eb.Error)
		}
		switch d := eb.Details.(type) {
		case nil:
		case map[string]any:
			e.Details = d
		default:
			e.Details = map[string]any{"details": d}
		}
		if list, ok := eb.Message.([]any); ok && len(list) > 1 {
			if e.Details == nil {
				e.Details = make(map[string]any, 1)
			}
			e.Details["messages"] = list
		}
		if code := messageText(eb.Code); code != "" {
			if e.Details == nil {
				e.Details = make(map[string]any, 1)
			}
			e.Details["code"] = code
		}
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("request failed with status %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if e.Kind == KindRateLimit {
		e.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}

	return e
}

// messageText flattens a message field into a single line
func messageText(v any) string {
	switch m := v.(type) {
	case string:
		return strings.TrimSpace(m)
	case float64:
		return strconv.FormatFloat(m, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(m))
		for _, item := range m {
			if text := messageText(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		return messageText(m["message"])
	default:
		return ""
	}
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// newTransportError normalizes a failure where no response was received
func newTransportError(op string, err error) *Error {
	return &Error{
		Kind:    KindAPI,
		Message: noResponseMessage,
		Op:      op,
		Err:     err,
	}
}

// normalizeError is the last step of every operation: typed errors pass through,
// everything else becomes an operation-specific API_ERROR with status 500.
func normalizeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newTransportError(op, err)
	}
	return &Error{
		Kind:       KindAPI,
		Message:    "failed to " + op,
		StatusCode: http.StatusInternalServerError,
		Op:         op,
		Err:        err,
	}
}
