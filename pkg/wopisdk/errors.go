package wopisdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/immor75/MeetingsDecisions/pkg/httpx"
)

const (
	ErrorCodeInvalidRequest  = "invalid_request"
	ErrorCodeInvalidToken    = "invalid_token"
	ErrorCodeNotFound        = "not_found"
	ErrorCodeConflict        = "conflict"
	ErrorCodeTooLarge        = "payload_too_large"
	ErrorCodeCapacity        = "capacity_exceeded"
	ErrorCodeNotImplemented  = "not_implemented"
	ErrorCodeServerError     = "server_error"
	ErrorCodeBadGateway      = "bad_gateway"
	ErrorCodeRateLimited     = "rate_limit_exceeded"
	ErrorCodeUnknownResponse = "unknown_error"
)

// APIError is the management API error body. It implements error on the
// client side and can write itself on the server side.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches another *APIError with the same code, so callers can write
// errors.Is(err, wopisdk.ErrNotFound).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// WithDescription returns a copy with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	c := *e
	c.Description = desc
	return &c
}

var (
	ErrInvalidRequest = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeInvalidRequest, Description: "the request is malformed or missing required parameters"}
	ErrInvalidToken   = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeInvalidToken, Description: "invalid or expired credentials"}
	ErrNotFound       = &APIError{StatusCode: http.StatusNotFound, Code: ErrorCodeNotFound, Description: "not found"}
	ErrConflict       = &APIError{StatusCode: http.StatusConflict, Code: ErrorCodeConflict, Description: "conflict"}
	ErrTooLarge       = &APIError{StatusCode: http.StatusRequestEntityTooLarge, Code: ErrorCodeTooLarge, Description: "request body too large"}
	ErrCapacity       = &APIError{StatusCode: http.StatusServiceUnavailable, Code: ErrorCodeCapacity, Description: "too many open sessions"}
	ErrNotImplemented = &APIError{StatusCode: http.StatusNotImplemented, Code: ErrorCodeNotImplemented, Description: "operation not supported"}
	ErrServerError    = &APIError{StatusCode: http.StatusInternalServerError, Code: ErrorCodeServerError, Description: "internal server error"}
)

// LockConflictError is returned by File operations answered with 409.
// Held is the lock the host reported, empty when the file is unlocked.
type LockConflictError struct {
	Held   string
	Reason string
}

func (e *LockConflictError) Error() string {
	return fmt.Sprintf("wopi lock conflict (held %q)", e.Held)
}

// StatusError is returned by File operations for non-2xx answers other
// than 409.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wopi: unexpected status %d", e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = ErrorCodeUnknownResponse
		apiErr.Description = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return apiErr
}
