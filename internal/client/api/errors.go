package api

import "errors"

var (
	// ErrUnavailable is returned for transport-level failures: the server
	// cannot be reached, the connection drops, or the request times out.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized is returned when the server rejects the credential
	// (HTTP 401/403). Callers escalate it to the shared forced-logout path.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRequestFailed is returned for any other non-2xx response.
	ErrRequestFailed = errors.New("request failed")
)

// StreamError is an application error delivered inside the chat stream as an
// error frame. It terminates the current send; content already streamed
// before it stays on screen.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}
