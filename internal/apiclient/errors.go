package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

// UnauthorizedError is returned for HTTP 401. The session of Namespace
// has already been expired when the caller sees it.
type UnauthorizedError struct {
	Namespace Namespace
	Payload   map[string]any
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized (%s)", e.Namespace)
}

// APIError is any other non-2xx answer of the remote API.
type APIError struct {
	Status  int
	Payload map[string]any
	Body    string
}

func (e *APIError) Error() string {
	if msg := e.message(); msg != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

func (e *APIError) message() string {
	for _, k := range []string{"detail", "message", "error"} {
		if s := firstString(e.Payload[k]); s != "" {
			return s
		}
	}
	return strings.TrimSpace(e.Body)
}

// IsUnauthorized reports whether err carries a 401 of any namespace.
func IsUnauthorized(err error) bool {
	var ue *UnauthorizedError
	return errors.As(err, &ue)
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == 404
}

// MessageFrom extracts a human-readable message from an API error in
// priority order: detail, each named field, message, error. Anything
// else yields fallback.
func MessageFrom(err error, fallback string, fields ...string) string {
	payload := payloadOf(err)
	if payload == nil {
		return fallback
	}
	if s := firstString(payload["detail"]); s != "" {
		return s
	}
	for _, f := range fields {
		if s := firstString(payload[f]); s != "" {
			return s
		}
	}
	for _, k := range []string{"message", "error"} {
		if s := firstString(payload[k]); s != "" {
			return s
		}
	}
	return fallback
}

// FieldMessage prefers the named fields over detail and ignores the
// generic message keys.
func FieldMessage(err error, fallback string, fields ...string) string {
	payload := payloadOf(err)
	for _, f := range fields {
		if s := firstString(payload[f]); s != "" {
			return s
		}
	}
	if s := firstString(payload["detail"]); s != "" {
		return s
	}
	return fallback
}

func payloadOf(err error) map[string]any {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Payload
	}
	var ue *UnauthorizedError
	if errors.As(err, &ue) {
		return ue.Payload
	}
	return nil
}

// firstString unwraps DRF style values: "x" or ["x", ...].
func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		if len(t) > 0 {
			return firstString(t[0])
		}
	}
	return ""
}

// OpError is a failed page operation with the message to show. The
// cause stays reachable for IsUnauthorized and IsNotFound.
type OpError struct {
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Fail wraps err with the message MessageFrom extracts from it.
func Fail(err error, fallback string, fields ...string) error {
	if err == nil {
		return nil
	}
	return &OpError{Message: MessageFrom(err, fallback, fields...), Err: err}
}

// Invalid is an OpError for input rejected before any backend call.
func Invalid(message string) error {
	return &OpError{Message: message, Err: ErrInvalidInput}
}

var ErrInvalidInput = errors.New("invalid input")

// Display returns the message of an OpError, or fallback.
func Display(err error, fallback string) string {
	var op *OpError
	if errors.As(err, &op) && op.Message != "" {
		return op.Message
	}
	return MessageFrom(err, fallback)
}
