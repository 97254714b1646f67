package httpclient

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType classifies client failures. Transport-level failures (network,
// timeout, cancelled) carry Status 0; HTTP failures carry the response status.
type ErrorType string

const (
	// NetworkError covers DNS, connection and other transport failures
	NetworkError ErrorType = "network"
	// TimeoutError covers attempts aborted by the configured timeout or a caller deadline
	TimeoutError ErrorType = "timeout"
	// CancelledError covers attempts aborted by caller-side cancellation
	CancelledError ErrorType = "cancelled"
	// HTTPError covers responses outside the success status range
	HTTPError ErrorType = "http"
	// ValidationError covers malformed requests rejected before any network attempt
	ValidationError ErrorType = "validation"
	// InterceptorError covers failures raised by interceptor hooks
	InterceptorError ErrorType = "interceptor"
)

// ClientError is the normalized failure record for any unsuccessful call:
// a status (0 for transport-level failures), a message, an optional provider
// code, the originating request, the response for non-2xx HTTP failures, and
// the underlying cause for chained diagnostics.
type ClientError struct {
	ErrorType ErrorType
	Status    int
	Message   string
	Code      string
	// Field names the offending input for validation errors
	Field string
	// Stage names the interceptor chain ("request", "response", "error") that raised the error
	Stage string
	// Timeout is the duration after which a timeout error fired
	Timeout  time.Duration
	Request  *Request
	Response *Response
	Err      error
}

// NewNetworkError creates a transport-level failure record
func NewNetworkError(message string, cause error) *ClientError {
	return &ClientError{ErrorType: NetworkError, Message: message, Err: cause}
}

// NewTimeoutError creates a failure record for an attempt aborted by timeout
func NewTimeoutError(message string, timeout time.Duration) *ClientError {
	return &ClientError{ErrorType: TimeoutError, Message: message, Timeout: timeout, Code: "timeout"}
}

// NewCancelledError creates a failure record for a caller-cancelled attempt
func NewCancelledError(message string, cause error) *ClientError {
	return &ClientError{ErrorType: CancelledError, Message: message, Code: "cancelled", Err: cause}
}

// NewHTTPError creates a failure record for a non-success HTTP response
func NewHTTPError(message string, status int, body []byte) *ClientError {
	return &ClientError{
		ErrorType: HTTPError,
		Status:    status,
		Message:   message,
		Response:  &Response{StatusCode: status, Body: body},
	}
}

// NewValidationError creates a failure record for a request rejected before execution
func NewValidationError(message, field string) *ClientError {
	return &ClientError{ErrorType: ValidationError, Message: message, Field: field}
}

// NewInterceptorError creates a failure record for an interceptor hook failure
func NewInterceptorError(message, stage string, cause error) *ClientError {
	return &ClientError{ErrorType: InterceptorError, Message: message, Stage: stage, Err: cause}
}

// Type returns the error classification
func (e *ClientError) Type() ErrorType {
	return e.ErrorType
}

func (e *ClientError) Error() string {
	var msg string
	switch e.ErrorType {
	case TimeoutError:
		msg = fmt.Sprintf("timeout error: %s (after %s)", e.Message, e.Timeout)
	case CancelledError:
		msg = fmt.Sprintf("cancelled error: %s", e.Message)
	case HTTPError:
		msg = fmt.Sprintf("HTTP error %d: %s", e.Status, e.Message)
	case ValidationError:
		msg = fmt.Sprintf("validation error: %s", e.Message)
		if e.Field != "" {
			msg += fmt.Sprintf(" (field %s)", e.Field)
		}
	case InterceptorError:
		msg = fmt.Sprintf("interceptor error in %s stage: %s", e.Stage, e.Message)
	default:
		msg = fmt.Sprintf("network error: %s", e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains
func (e *ClientError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of the failure, 0 for transport failures
func (e *ClientError) StatusCode() int {
	return e.Status
}

// Body returns the raw response body of an HTTP failure, nil otherwise
func (e *ClientError) Body() []byte {
	if e.Response == nil {
		return nil
	}
	return e.Response.Body
}

// AsClientError extracts a *ClientError from an error chain
func AsClientError(err error) (*ClientError, bool) {
	var cerr *ClientError
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}

// IsErrorType reports whether err is a client error of the given type
func IsErrorType(err error, errorType ErrorType) bool {
	cerr, ok := AsClientError(err)
	return ok && cerr.Type() == errorType
}

// IsHTTPStatusError reports whether err is an HTTP failure with the given status
func IsHTTPStatusError(err error, statusCode int) bool {
	cerr, ok := AsClientError(err)
	return ok && cerr.Type() == HTTPError && cerr.Status == statusCode
}

// IsSuccessStatus reports whether the status code is in the 2xx success range
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}
