package helpers

import (
	"errors"
	"fmt"
	"net/http"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type FinchartsError struct {
	Message string
	Cause   error
}

func (e *FinchartsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *FinchartsError) Unwrap() error {
	return e.Cause
}

// Distinct error types for the failure taxonomy.
type AuthError struct{ FinchartsError }       // credential exchange rejected, never auto-retried
type TransportError struct{ FinchartsError }  // network/HTTP failure other than 401
type ChannelError struct{ FinchartsError }    // websocket transport error
type StreamEndedError struct{ FinchartsError } // server closed the realtime stream

// -----------------------------------------------------------------------------
// HTTP status errors
// -----------------------------------------------------------------------------

// HTTPStatusError carries a non-2xx response so callers can branch on the code.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// -----------------------------------------------------------------------------

// IsUnauthorized reports whether err is an HTTP 401 response.
func IsUnauthorized(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized
}

// -----------------------------------------------------------------------------

// NewAuthError wraps a failed token exchange.
func NewAuthError(cause error) *AuthError {
	return &AuthError{FinchartsError{Message: "token exchange failed", Cause: cause}}
}

// -----------------------------------------------------------------------------

// NewTransportError wraps a failed provider request.
func NewTransportError(operation string, cause error) *TransportError {
	return &TransportError{FinchartsError{Message: fmt.Sprintf("%s failed", operation), Cause: cause}}
}

// -----------------------------------------------------------------------------

// NewChannelError wraps a websocket transport failure.
func NewChannelError(cause error) *ChannelError {
	return &ChannelError{FinchartsError{Message: "realtime channel error", Cause: cause}}
}

// -----------------------------------------------------------------------------

// NewStreamEndedError marks a server-initiated stream completion.
func NewStreamEndedError(cause error) *StreamEndedError {
	return &StreamEndedError{FinchartsError{Message: "realtime stream ended by server", Cause: cause}}
}
