package fetchgate

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure scenarios
var (
	// ErrNoConnectivity is returned when the connectivity oracle reports no
	// usable network. No lock, cache or transport work has been done.
	ErrNoConnectivity = errors.New("fetchgate: no connectivity, check your network connection and try again")

	// ErrEmptyResponse is returned when a response body decodes to nothing.
	ErrEmptyResponse = errors.New("fetchgate: empty response")

	// ErrCancelled is returned when the caller's context ends while waiting
	// on a resource lock or on the transport.
	ErrCancelled = errors.New("fetchgate: cancelled")

	// ErrInvalidURL is returned for URLs that cannot be parsed or resolved.
	ErrInvalidURL = errors.New("fetchgate: invalid url")

	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("fetchgate: unexpected status")
)

// Error types carried by ClientError.Type.
const (
	ErrorTypeNoConnectivity = "NoConnectivityError"
	ErrorTypeEmptyResponse  = "EmptyResponseError"
	ErrorTypeCancelled      = "CancelledError"
	ErrorTypeInvalidURL     = "InvalidURLError"
	ErrorTypeStatus         = "StatusError"
	ErrorTypeValidation     = "ValidationError"
)

var sentinelByType = map[string]error{
	ErrorTypeNoConnectivity: ErrNoConnectivity,
	ErrorTypeEmptyResponse:  ErrEmptyResponse,
	ErrorTypeCancelled:      ErrCancelled,
	ErrorTypeInvalidURL:     ErrInvalidURL,
	ErrorTypeStatus:         ErrUnexpectedStatus,
}

// ClientError represents an error produced by the coordinator itself.
// Transport and decode failures are not wrapped in it.
type ClientError struct {
	Type       string
	Message    string
	Cause      error
	RequestID  string
	Method     string
	URL        string
	Endpoint   string
	StatusCode int
	Timestamp  time.Time
	Duration   time.Duration
}

// Error implements error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *ClientError of the same Type, or the sentinel for
// e.Type, so errors.Is(err, ErrNoConnectivity) works on a *ClientError.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	if sentinel, ok := sentinelByType[e.Type]; ok {
		return target == sentinel
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.Endpoint != "" {
		info += fmt.Sprintf("Endpoint: %s\n", e.Endpoint)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

// errorType classifies err for metrics labels.
func errorType(err error) string {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type
	}
	return "TransportError"
}
