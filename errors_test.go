package fetchgate

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestClientError(t *testing.T) {
	err := &ClientError{
		Type:    ErrorTypeStatus,
		Message: "GET /users/1 returned 404",
	}

	expectedMsg := "StatusError: GET /users/1 returned 404"
	if err.Error() != expectedMsg {
		t.Errorf("Expected '%s', got '%s'", expectedMsg, err.Error())
	}

	cause := context.Canceled
	errWithCause := &ClientError{
		Type:      ErrorTypeCancelled,
		Message:   "cancelled while waiting for resource lock",
		Cause:     cause,
		RequestID: "req-1",
	}

	expectedMsgWithCause := "[req-1] CancelledError: cancelled while waiting for resource lock (context canceled)"
	if errWithCause.Error() != expectedMsgWithCause {
		t.Errorf("Expected '%s', got '%s'", expectedMsgWithCause, errWithCause.Error())
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("original error")
	err := &ClientError{Type: ErrorTypeInvalidURL, Message: "bad", Cause: cause}

	if err.Unwrap() != cause {
		t.Errorf("Expected unwrapped error to be %v, got %v", cause, err.Unwrap())
	}

	var nilErr *ClientError
	if nilErr.Unwrap() != nil {
		t.Error("nil ClientError should unwrap to nil")
	}
	if nilErr.Error() != "<nil>" {
		t.Errorf("Expected '<nil>', got %q", nilErr.Error())
	}
}

func TestClientErrorMatchesSentinels(t *testing.T) {
	testCases := []struct {
		errorType string
		sentinel  error
	}{
		{ErrorTypeNoConnectivity, ErrNoConnectivity},
		{ErrorTypeEmptyResponse, ErrEmptyResponse},
		{ErrorTypeCancelled, ErrCancelled},
		{ErrorTypeInvalidURL, ErrInvalidURL},
		{ErrorTypeStatus, ErrUnexpectedStatus},
	}

	for _, tc := range testCases {
		t.Run(tc.errorType, func(t *testing.T) {
			err := error(&ClientError{Type: tc.errorType, Message: "m"})
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("Expected %s to match %v", tc.errorType, tc.sentinel)
			}
			if !errors.Is(err, &ClientError{Type: tc.errorType}) {
				t.Errorf("Expected %s to match a ClientError of the same type", tc.errorType)
			}
			if errors.Is(err, ErrInvalidURL) && tc.sentinel != ErrInvalidURL {
				t.Errorf("%s must not match ErrInvalidURL", tc.errorType)
			}
		})
	}
}

func TestValidationErrorHasNoSentinel(t *testing.T) {
	err := &ClientError{Type: ErrorTypeValidation, Message: "configuration validation failed"}
	for _, sentinel := range []error{ErrNoConnectivity, ErrEmptyResponse, ErrCancelled, ErrInvalidURL, ErrUnexpectedStatus} {
		if errors.Is(err, sentinel) {
			t.Errorf("validation error should not match %v", sentinel)
		}
	}
}

func TestClientErrorDebugInfo(t *testing.T) {
	err := &ClientError{
		Type:       ErrorTypeStatus,
		Message:    "unexpected status",
		RequestID:  "req-123",
		Method:     "GET",
		URL:        "http://localhost:7201/users/1",
		Endpoint:   "localhost:7201/users/1",
		StatusCode: 503,
		Cause:      errors.New("upstream"),
	}

	info := err.DebugInfo()
	for _, want := range []string{
		"Error Type: StatusError",
		"Request ID: req-123",
		"Method: GET",
		"URL: http://localhost:7201/users/1",
		"Status Code: 503",
		"Cause: upstream",
	} {
		if !strings.Contains(info, want) {
			t.Errorf("DebugInfo() missing %q:\n%s", want, info)
		}
	}

	var nilErr *ClientError
	if nilErr.DebugInfo() != "Error: <nil>" {
		t.Errorf("Unexpected nil DebugInfo: %q", nilErr.DebugInfo())
	}
}

func TestErrorTypeLabel(t *testing.T) {
	if got := errorType(&ClientError{Type: ErrorTypeCancelled}); got != ErrorTypeCancelled {
		t.Errorf("Expected %s, got %s", ErrorTypeCancelled, got)
	}
	if got := errorType(errors.New("dial tcp: refused")); got != "TransportError" {
		t.Errorf("Expected TransportError, got %s", got)
	}
}
